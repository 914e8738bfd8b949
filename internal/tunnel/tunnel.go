// Package tunnel publishes the local webhook endpoint on a public HTTPS URL
// so remote senders can reach a beacon running behind NAT.
package tunnel

import (
	"context"
	"errors"
	"net"
	"strings"
)

// WebhookPath is the ingestion route exposed through the tunnel.
const WebhookPath = "/webhook/notifications"

// ErrMissingAuthToken is returned by Start when no auth token is configured.
var ErrMissingAuthToken = errors.New("ngrok auth token is required (set tunnel.authtoken in config or BEACON_NGROK_AUTHTOKEN)")

// Tunnel exposes a local address via a public HTTPS URL.
type Tunnel interface {
	Start(ctx context.Context, localAddr string) (publicURL string, err error)
	Close() error
	PublicURL() string
	Listener() net.Listener
}

// WebhookURL returns the public URL senders should post notifications to,
// or "" when the tunnel is not started.
func WebhookURL(t Tunnel) string {
	base := t.PublicURL()
	if base == "" {
		return ""
	}
	return strings.TrimSuffix(base, "/") + WebhookPath
}

// normalizeURL makes sure a listener address carries a scheme.
func normalizeURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	return "https://" + addr
}
