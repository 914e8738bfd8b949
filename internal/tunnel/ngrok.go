package tunnel

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	ngroklib "golang.ngrok.com/ngrok"
	ngrokconfig "golang.ngrok.com/ngrok/config"
)

// NgrokTunnel implements Tunnel using ngrok. The listener it returns is
// served directly by the HTTP server; no local port is forwarded.
type NgrokTunnel struct {
	authToken string
	domain    string

	listen   func(ctx context.Context, localAddr string) (net.Listener, error)
	listener net.Listener
	url      string
}

// NewNgrok creates a new ngrok tunnel with the given auth token and optional domain.
func NewNgrok(authToken, domain string) *NgrokTunnel {
	n := &NgrokTunnel{
		authToken: authToken,
		domain:    domain,
	}
	n.listen = n.listenNgrok
	return n
}

func (n *NgrokTunnel) listenNgrok(ctx context.Context, localAddr string) (net.Listener, error) {
	opts := []ngrokconfig.HTTPEndpointOption{
		ngrokconfig.WithForwardsTo(localAddr),
	}
	if n.domain != "" {
		// Fixed domain (paid plans)
		opts = append(opts, ngrokconfig.WithDomain(n.domain))
	}

	return ngroklib.Listen(ctx,
		ngrokconfig.HTTPEndpoint(opts...),
		ngroklib.WithAuthtoken(n.authToken),
	)
}

// Start opens the ngrok listener and returns the public URL. localAddr is
// only reported to ngrok as metadata.
func (n *NgrokTunnel) Start(ctx context.Context, localAddr string) (string, error) {
	if n.authToken == "" {
		return "", ErrMissingAuthToken
	}
	if n.listener != nil {
		return n.url, nil
	}

	slog.Info("starting ngrok tunnel", "local_addr", localAddr, "domain", n.domain)

	listener, err := n.listen(ctx, localAddr)
	if err != nil {
		return "", fmt.Errorf("failed to create ngrok tunnel: %w", err)
	}

	n.listener = listener
	n.url = normalizeURL(listener.Addr().String())

	slog.Info("ngrok tunnel established",
		"public_url", n.url,
		"webhook_url", WebhookURL(n))

	return n.url, nil
}

// Close closes the ngrok tunnel.
func (n *NgrokTunnel) Close() error {
	if n.listener == nil {
		return nil
	}

	slog.Info("closing ngrok tunnel", "public_url", n.url)

	err := n.listener.Close()
	n.listener = nil
	n.url = ""
	if err != nil {
		return fmt.Errorf("failed to close ngrok tunnel: %w", err)
	}
	return nil
}

// PublicURL returns the public URL of the tunnel.
func (n *NgrokTunnel) PublicURL() string {
	return n.url
}

// Listener returns the underlying net.Listener for serving HTTP requests.
func (n *NgrokTunnel) Listener() net.Listener {
	return n.listener
}
