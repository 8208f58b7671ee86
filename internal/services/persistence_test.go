package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sankalpiq/voice-agent/internal/models"
	"github.com/sankalpiq/voice-agent/internal/storage"
)

type recordingNotifier struct {
	mu   sync.Mutex
	err  error
	sent []models.Record
}

func (n *recordingNotifier) Notify(ctx context.Context, rec models.Record) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, rec)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type panickingStore struct{}

func (panickingStore) Name() string { return "panicking" }
func (panickingStore) Append(ctx context.Context, rec models.Record) error {
	panic("index out of range")
}

func waitSink(t *testing.T, s *PersistenceSink) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("side effects did not finish: %v", err)
	}
}

func TestPersist_MirrorFailureKeepsLocalRow(t *testing.T) {
	local := storage.NewCSVStore(filepath.Join(t.TempDir(), "user_data.csv"))
	mirror := storage.NewFailingStore("sheets", errors.New("403 forbidden"))
	notifier := &recordingNotifier{}
	sink := NewPersistenceSink(local, notifier, time.Second, mirror, panickingStore{})

	if !sink.Persist(context.Background(), "Ramesh", "ramesh@gmail.com", "B+") {
		t.Fatal("Persist should succeed when only the mirror fails")
	}
	waitSink(t, sink)

	rows, err := local.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
	if rows[1][0] != "Ramesh" || rows[1][1] != "ramesh@gmail.com" || rows[1][2] != "B+" {
		t.Fatalf("unexpected row %v", rows[1])
	}
	if notifier.count() != 1 {
		t.Fatalf("notification should still be attempted, got %d", notifier.count())
	}
}

func TestPersist_LocalFailureReported(t *testing.T) {
	local := storage.NewFailingStore("local", errors.New("disk full"))
	mirror := storage.NewMemoryStore("mirror")
	sink := NewPersistenceSink(local, nil, time.Second, mirror)

	if sink.Persist(context.Background(), "Sita", "sita@yahoo.com", "") {
		t.Fatal("Persist should report the local failure")
	}
	waitSink(t, sink)
	if len(mirror.Records()) != 1 {
		t.Fatal("mirror is independent of the local store outcome")
	}
}

func TestPersist_NotifiesOnlyWellFormedEmail(t *testing.T) {
	local := storage.NewMemoryStore("local")
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	sink := NewPersistenceSink(local, notifier, time.Second)

	if !sink.Persist(context.Background(), "Amit", "amit gmail", "O-") {
		t.Fatal("Persist failed")
	}
	waitSink(t, sink)
	if notifier.count() != 0 {
		t.Fatal("no notification expected for an address without @")
	}

	if !sink.Persist(context.Background(), "Amit", "amit@gmail.com", "O-") {
		t.Fatal("notifier failure must not change the outcome")
	}
	waitSink(t, sink)
	if notifier.count() != 1 {
		t.Fatalf("expected one notification, got %d", notifier.count())
	}
}

func TestPersist_EmptyBloodGroupStillPersisted(t *testing.T) {
	local := storage.NewMemoryStore("local")
	sink := NewPersistenceSink(local, nil, time.Second)
	fixed := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	sink.now = func() time.Time { return fixed }

	sink.Persist(context.Background(), "Ravi", "ravi@outlook.com", "")
	recs := local.Records()
	if len(recs) != 1 || recs[0].BloodGroup != "" || !recs[0].Timestamp.Equal(fixed) {
		t.Fatalf("unexpected records %+v", recs)
	}
	if got := recs[0].Row()[3]; got != "2025-03-01 10:30:00" {
		t.Fatalf("timestamp column = %q", got)
	}
}

func TestPersist_SideEffectsSurviveCanceledRequest(t *testing.T) {
	local := storage.NewMemoryStore("local")
	mirror := storage.NewMemoryStore("mirror")
	sink := NewPersistenceSink(local, nil, time.Second, mirror)

	ctx, cancel := context.WithCancel(context.Background())
	sink.Persist(ctx, "Kiran", "kiran@gmail.com", "A+")
	cancel()
	waitSink(t, sink)
	if len(mirror.Records()) != 1 {
		t.Fatal("mirror write should not inherit the request cancellation")
	}
}
