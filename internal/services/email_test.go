package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/sankalpiq/voice-agent/internal/models"
)

func TestEmailNotifier_RenderBody(t *testing.T) {
	n := NewEmailNotifier(SMTPConfig{OrgName: "Sankalpiq Foundation", Website: "https://sankalpiq.co.in"})
	body, err := n.renderBody(models.Record{
		Name: "Ramesh <script>", Email: "ramesh@gmail.com", BloodGroup: "B+",
		Timestamp: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("renderBody: %v", err)
	}
	for _, want := range []string{
		"Dear Ramesh &lt;script&gt;",
		"Email: ramesh@gmail.com",
		"Blood Group: B+",
		"Thank you for connecting with Sankalpiq Foundation!",
		`href="https://sankalpiq.co.in"`,
		"2025 Sankalpiq Foundation",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}

	body, _ = n.renderBody(models.Record{Name: "Sita", Email: "sita@yahoo.com"})
	if !strings.Contains(body, "Blood Group: Not provided") {
		t.Error("missing blood group should render as Not provided")
	}
}

func TestEmailNotifier_Notify(t *testing.T) {
	n := NewEmailNotifier(SMTPConfig{OrgName: "Org"})
	if err := n.Notify(context.Background(), models.Record{Email: "a@b.com"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	n = NewEmailNotifier(SMTPConfig{Username: "org@gmail.com", Password: "app-pass", OrgName: "Org"})
	var sent *mail.Msg
	n.send = func(ctx context.Context, msg *mail.Msg) error {
		sent = msg
		return nil
	}
	if err := n.Notify(context.Background(), models.Record{Name: "Ramesh", Email: "ramesh@gmail.com"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if sent == nil {
		t.Fatal("message not sent")
	}
	var raw bytes.Buffer
	if _, err := sent.WriteTo(&raw); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	for _, want := range []string{"ramesh@gmail.com", "Thank You for Connecting with Org", "text/html"} {
		if !strings.Contains(raw.String(), want) {
			t.Errorf("message missing %q", want)
		}
	}

	n.send = func(ctx context.Context, msg *mail.Msg) error { return errors.New("535 auth failed") }
	if err := n.Notify(context.Background(), models.Record{Email: "ramesh@gmail.com"}); err == nil {
		t.Fatal("expected send error")
	}
	if err := n.Notify(context.Background(), models.Record{Email: "not an address"}); err == nil {
		t.Fatal("expected invalid address error")
	}
}

func TestEmailNotifier_Defaults(t *testing.T) {
	n := NewEmailNotifier(SMTPConfig{})
	if n.cfg.Host != "smtp.gmail.com" || n.cfg.Port != 587 {
		t.Fatalf("unexpected defaults %+v", n.cfg)
	}
}
