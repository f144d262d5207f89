package util

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"
)

var (
	sharedClient     *http.Client
	sharedClientOnce sync.Once
)

// httpClientConfig holds the transport limits of a client
type httpClientConfig struct {
	timeout             time.Duration
	maxIdleConns        int
	maxIdleConnsPerHost int
	idleConnTimeout     time.Duration
	tlsHandshakeTimeout time.Duration
	keepAlive           time.Duration
	dialTimeout         time.Duration
}

func defaultConfig() httpClientConfig {
	return httpClientConfig{
		timeout:             30 * time.Second,
		maxIdleConns:        64,
		maxIdleConnsPerHost: 8,
		idleConnTimeout:     90 * time.Second,
		tlsHandshakeTimeout: 5 * time.Second,
		keepAlive:           30 * time.Second,
		dialTimeout:         5 * time.Second,
	}
}

func createTransport(cfg httpClientConfig) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.dialTimeout,
			KeepAlive: cfg.keepAlive,
		}).DialContext,
		MaxIdleConns:        cfg.maxIdleConns,
		MaxIdleConnsPerHost: cfg.maxIdleConnsPerHost,
		IdleConnTimeout:     cfg.idleConnTimeout,
		TLSHandshakeTimeout: cfg.tlsHandshakeTimeout,
		ForceAttemptHTTP2:   true,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
}

// GetSharedClient returns the process wide HTTP client. Per request bounds
// are applied by the caller's context.
func GetSharedClient() *http.Client {
	sharedClientOnce.Do(func() {
		sharedClient = NewHTTPClient(0)
	})
	return sharedClient
}

// NewHTTPClient returns a client with its own transport. A non-positive
// timeout keeps the default.
func NewHTTPClient(timeout time.Duration) *http.Client {
	cfg := defaultConfig()
	if timeout > 0 {
		cfg.timeout = timeout
	}
	return &http.Client{
		Transport: createTransport(cfg),
		Timeout:   cfg.timeout,
	}
}
