package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sankalpiq/voice-agent/internal/models"
	"github.com/sankalpiq/voice-agent/internal/storage"
)

// Notifier sends the thank-you message for a saved registration
type Notifier interface {
	Notify(ctx context.Context, rec models.Record) error
}

// PersistenceSink records completed registrations. The local store decides
// the outcome; mirrors and the notification run afterwards in the background
// and never change it.
type PersistenceSink struct {
	local    storage.Store
	mirrors  []storage.Store
	notifier Notifier
	timeout  time.Duration
	now      func() time.Time

	wg sync.WaitGroup
}

// NewPersistenceSink creates a sink. notifier may be nil; timeout bounds the background side effects.
func NewPersistenceSink(local storage.Store, notifier Notifier, timeout time.Duration, mirrors ...storage.Store) *PersistenceSink {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &PersistenceSink{
		local:    local,
		mirrors:  mirrors,
		notifier: notifier,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Persist appends the registration to the local store and reports whether that succeeded
func (s *PersistenceSink) Persist(ctx context.Context, name, email, bloodGroup string) bool {
	rec := models.Record{
		Name:       name,
		Email:      email,
		BloodGroup: bloodGroup,
		Timestamp:  s.now(),
	}

	err := attempt(s.local.Name(), func() error { return s.local.Append(ctx, rec) })
	if err != nil {
		log.Printf("❌ Failed to save registration for %s: %v", name, err)
	} else {
		log.Printf("💾 Registration saved: %s, %s, %s", rec.Name, rec.Email, rec.BloodGroup)
	}

	s.sideEffects(ctx, rec)
	return err == nil
}

func (s *PersistenceSink) sideEffects(ctx context.Context, rec models.Record) {
	notify := s.notifier != nil && strings.Contains(rec.Email, "@")
	if len(s.mirrors) == 0 && !notify {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		var g errgroup.Group
		for _, m := range s.mirrors {
			m := m
			g.Go(func() error {
				if err := attempt(m.Name(), func() error { return m.Append(bg, rec) }); err != nil {
					log.Printf("⚠️  Mirror %s failed: %v", m.Name(), err)
					return err
				}
				log.Printf("📄 Registration mirrored to %s", m.Name())
				return nil
			})
		}
		if notify {
			g.Go(func() error {
				if err := attempt("notification", func() error { return s.notifier.Notify(bg, rec) }); err != nil {
					log.Printf("⚠️  Thank-you email to %s failed: %v", rec.Email, err)
					return err
				}
				log.Printf("📧 Thank-you email sent to %s", rec.Email)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			log.Printf("⚠️  Registration for %s is only partially mirrored", rec.Name)
		}
	}()
}

// Wait blocks until background side effects finish or ctx is done
func (s *PersistenceSink) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// attempt runs fn, turning a panic into an error
func attempt(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", name, r)
		}
	}()
	return fn()
}
