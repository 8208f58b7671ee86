package jobs

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/tidwall/gjson"
)

// WebhookDiscovery keeps track of the public base URL Twilio must call back.
// With an ngrok API configured it polls the tunnel list; otherwise it serves
// the static fallback URL.
type WebhookDiscovery struct {
	apiURL   string
	fallback string
	client   *http.Client

	tries    uint64
	delay    time.Duration
	interval time.Duration

	mu      sync.RWMutex
	current string

	runMu     sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	isRunning bool
}

// NewWebhookDiscovery creates a discovery job for the ngrok API at apiURL
func NewWebhookDiscovery(apiURL, fallback string) *WebhookDiscovery {
	return &WebhookDiscovery{
		apiURL:   strings.TrimRight(apiURL, "/"),
		fallback: strings.TrimRight(fallback, "/"),
		client:   &http.Client{Timeout: 5 * time.Second},
		tries:    30,
		delay:    2 * time.Second,
		interval: time.Minute,
	}
}

// URL returns the active public base URL, or "" before anything is known
func (w *WebhookDiscovery) URL() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.current != "" {
		return w.current
	}
	return w.fallback
}

// Dynamic reports whether the URL comes from tunnel discovery
func (w *WebhookDiscovery) Dynamic() bool { return w.apiURL != "" }

// Refresh re-discovers the tunnel URL. On failure the previous URL stays active.
func (w *WebhookDiscovery) Refresh(ctx context.Context) (string, error) {
	if !w.Dynamic() {
		return w.URL(), nil
	}

	u, err := w.Discover(ctx)
	if err != nil {
		if cur := w.URL(); cur != "" {
			log.Printf("⚠️  Webhook discovery failed, keeping %s: %v", cur, err)
		}
		return w.URL(), err
	}

	w.mu.Lock()
	changed := w.current != u
	w.current = u
	w.mu.Unlock()
	if changed {
		log.Printf("🌐 Webhook URL set to %s", u)
	}
	return u, nil
}

// Discover polls the ngrok API until it reports an https tunnel
func (w *WebhookDiscovery) Discover(ctx context.Context) (string, error) {
	var found string
	attempt := 0

	backoff := retry.WithMaxRetries(w.tries-1, retry.NewConstant(w.delay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		u, err := w.fetch(ctx)
		if err != nil {
			log.Printf("⏳ Attempt %d: %v", attempt, err)
			return retry.RetryableError(err)
		}
		found = u
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("get ngrok URL after %d attempts: %w", attempt, err)
	}
	return found, nil
}

func (w *WebhookDiscovery) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.apiURL+"/api/tunnels", nil)
	if err != nil {
		return "", err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("connect to ngrok API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read ngrok API: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ngrok API returned %d", resp.StatusCode)
	}

	u := gjson.GetBytes(body, `tunnels.#(proto=="https").public_url`).String()
	if u == "" {
		return "", fmt.Errorf("no HTTPS tunnel found")
	}
	return strings.TrimRight(u, "/"), nil
}

// Start discovers the URL in the background and refreshes it periodically
func (w *WebhookDiscovery) Start(ctx context.Context) {
	if !w.Dynamic() {
		if w.fallback != "" {
			log.Printf("🌐 Using static webhook URL %s", w.fallback)
		} else {
			log.Println("⚠️  No WEBHOOK_URL or NGROK_API_URL - outbound calls are disabled")
		}
		return
	}
	w.runMu.Lock()
	defer w.runMu.Unlock()
	if w.isRunning {
		log.Println("Webhook discovery already running")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	w.cancel, w.done, w.isRunning = cancel, done, true
	log.Printf("Starting webhook discovery against %s...", w.apiURL)

	go func() {
		defer close(done)
		_, _ = w.Refresh(ctx)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_, _ = w.Refresh(ctx)
			}
		}
	}()
}

// Stop halts the refresh loop and waits for it to exit. Safe to call from
// any goroutine and more than once.
func (w *WebhookDiscovery) Stop() {
	w.runMu.Lock()
	if !w.isRunning {
		w.runMu.Unlock()
		return
	}
	cancel, done := w.cancel, w.done
	w.isRunning = false
	w.runMu.Unlock()

	log.Println("Stopping webhook discovery...")
	cancel()
	<-done
}
