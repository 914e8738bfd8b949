package sender

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/btouchard/beacon/internal/hub"
)

var (
	demoTypes   = []string{"info", "success", "warning", "error"}
	demoSenders = []string{"Payment Service", "Shipping Service", "Customer Support", "System"}

	demoMessages = []string{
		"Your item has been purchased!",
		"A buyer has a question about your listing.",
		"Your payment has been processed.",
		"Your shipping label is ready.",
		"A new offer has been made on your item.",
		"Your account has been verified.",
		"Reminder: You have pending actions.",
		"Security alert: New login detected.",
	}
)

// Test is the first submission of a demo run.
var Test = hub.Submission{
	Title:   "Test Notification",
	Message: "This is a test notification from a third-party service.",
	Type:    "info",
	Sender:  "Test Service",
}

// Random builds a marketplace-style submission from the demo pools.
func Random(r *rand.Rand) hub.Submission {
	sender := demoSenders[r.IntN(len(demoSenders))]
	return hub.Submission{
		Title:   sender + " Notification",
		Message: demoMessages[r.IntN(len(demoMessages))],
		Type:    demoTypes[r.IntN(len(demoTypes))],
		Sender:  sender,
	}
}

// DemoOptions controls a demo run.
type DemoOptions struct {
	Every time.Duration // interval between random notifications
	For   time.Duration // total run time; zero runs until ctx ends
	Rand  *rand.Rand
}

// RunDemo sends Test immediately, then a random submission every
// opts.Every until opts.For elapses or ctx is cancelled. Failed sends are
// logged and do not stop the run. It returns the number of notifications
// accepted.
func RunDemo(ctx context.Context, c *Client, opts DemoOptions) int {
	if opts.Every <= 0 {
		opts.Every = 10 * time.Second
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.For > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.For)
		defer cancel()
	}

	sent := 0
	send := func(s hub.Submission) {
		n, err := c.Send(ctx, s)
		if err != nil {
			slog.Error("failed to send notification", "error", err)
			return
		}
		sent++
		slog.Info("sent notification", "notification_id", n.ID, "type", string(n.Type), "sender", n.Sender)
	}

	send(Test)

	ticker := time.NewTicker(opts.Every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			send(Random(opts.Rand))
		case <-ctx.Done():
			slog.Info("demo completed", "sent", sent)
			return sent
		}
	}
}
