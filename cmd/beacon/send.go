package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/btouchard/beacon/internal/hub"
	"github.com/btouchard/beacon/internal/sender"
)

type sendFlags struct {
	url       string
	title     string
	message   string
	typ       string
	from      string
	timestamp string
	demo      bool
	every     time.Duration
	duration  time.Duration
}

func sendCommand() *cli.Command {
	f := &sendFlags{}

	return &cli.Command{
		Name:      "send",
		Usage:     "Post a notification to a running beacon",
		UsageText: "beacon send --title T --message M [options]\n   beacon send --demo [--every 10s] [--for 2m]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "url",
				Usage:       "base URL of the beacon server",
				Sources:     cli.EnvVars("BEACON_URL"),
				Value:       "http://localhost:5001",
				Destination: &f.url,
			},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "notification title", Destination: &f.title},
			&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Usage: "notification message", Destination: &f.message},
			&cli.StringFlag{Name: "type", Usage: "notification type (info, success, warning, error)", Destination: &f.typ},
			&cli.StringFlag{Name: "sender", Usage: "sender label", Destination: &f.from},
			&cli.StringFlag{Name: "timestamp", Usage: "RFC 3339 creation time", Destination: &f.timestamp},
			&cli.BoolFlag{
				Name:        "demo",
				Usage:       "send a test notification, then random marketplace notifications",
				Destination: &f.demo,
			},
			&cli.DurationFlag{
				Name:        "every",
				Usage:       "interval between demo notifications",
				Value:       10 * time.Second,
				Destination: &f.every,
			},
			&cli.DurationFlag{
				Name:        "for",
				Usage:       "stop the demo after this long (0 runs until interrupted)",
				Value:       2 * time.Minute,
				Destination: &f.duration,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			client := sender.NewClient(f.url, nil)

			if f.demo {
				sent := sender.RunDemo(ctx, client, sender.DemoOptions{Every: f.every, For: f.duration})
				_, _ = fmt.Fprintf(c.Root().Writer, "demo completed, %d notifications sent\n", sent)
				return nil
			}

			if f.title == "" || f.message == "" {
				return fmt.Errorf("--title and --message are required (or use --demo)")
			}

			n, err := client.Send(ctx, hub.Submission{
				Title:     f.title,
				Message:   f.message,
				Type:      f.typ,
				Sender:    f.from,
				Timestamp: f.timestamp,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(c.Root().Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(n)
		},
	}
}
