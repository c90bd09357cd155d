package client

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file avoids cluttering
// client.go and makes it easy to discover all available knobs at a glance.

import (
	"fmt"
	"net/http"

	"github.com/unihub/unihub-client/persist"
)

// Option mutates the Client during New().
type Option func(*Client) error

// WithHTTPClient injects a custom *http.Client. Useful for setting transport
// timeouts, tracing, custom TLS settings, etc.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("nil http client")
		}
		c.http = hc
		return nil
	}
}

// WithDebugLogging wraps the client's transport such that every
// request/response is logged when `enabled` is true.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			transport := c.http.Transport
			if transport == nil {
				transport = http.DefaultTransport
			}
			c.http.Transport = &debugTransport{base: transport}
		}
		return nil
	}
}

// WithStorage injects the durable store backing the session. Defaults to an
// in-memory store, i.e. the session lives only as long as the process.
func WithStorage(kv persist.KV) Option {
	return func(c *Client) error {
		if kv == nil {
			return fmt.Errorf("nil storage")
		}
		c.storage = kv
		return nil
	}
}

// WithNavigator installs the route-change hook used by Logout. Without it the
// client never navigates.
func WithNavigator(fn func(route string)) Option {
	return func(c *Client) error {
		c.navigate = fn
		return nil
	}
}
