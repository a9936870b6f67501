// File: internal/network/httpclient.go
package network

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"

	"github.com/xkilldash9x/honeybadger-loader/internal/config"
	"github.com/xkilldash9x/honeybadger-loader/internal/observability"
)

// Default timeouts and pool sizes. The loader makes at most two requests per
// lookup, so the pool is kept small.
const (
	DefaultDialTimeout           = 5 * time.Second
	DefaultKeepAliveInterval     = 15 * time.Second
	DefaultTLSHandshakeTimeout   = 5 * time.Second
	DefaultResponseHeaderTimeout = 10 * time.Second
	DefaultRequestTimeout        = 30 * time.Second

	DefaultMaxIdleConns        = 16
	DefaultMaxIdleConnsPerHost = 4
	DefaultIdleConnTimeout     = 30 * time.Second
)

// requiredMinTLSVersion is the floor applied to every TLS config we build.
const requiredMinTLSVersion = tls.VersionTLS12

// ClientConfig holds the configuration for the HTTP client and transport layers.
type ClientConfig struct {
	IgnoreTLSErrors bool
	TLSConfig       *tls.Config

	// Timeout settings
	RequestTimeout        time.Duration
	DialTimeout           time.Duration
	KeepAlive             time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration

	// Connection pool settings
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration

	// Protocol settings
	ForceHTTP2        bool
	DisableKeepAlives bool
	// DisableCompression skips the decompression middleware entirely.
	DisableCompression bool

	// FollowRedirects lets the client chase Location headers. When false the
	// first response is returned as-is, which is what a redirect probe needs.
	FollowRedirects bool

	ProxyURL *url.URL

	Logger *zap.Logger
}

// Client wraps http.Client so it can be passed around as a unit with its
// configuration applied. Safe for concurrent use.
//
// The caller must close Response.Body after consuming it.
type Client struct {
	*http.Client
}

// NewDefaultClientConfig returns a configuration with the package defaults.
func NewDefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		RequestTimeout:        DefaultRequestTimeout,
		DialTimeout:           DefaultDialTimeout,
		KeepAlive:             DefaultKeepAliveInterval,
		TLSHandshakeTimeout:   DefaultTLSHandshakeTimeout,
		ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
		MaxIdleConns:          DefaultMaxIdleConns,
		MaxIdleConnsPerHost:   DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		ForceHTTP2:            true,
		FollowRedirects:       true,
		Logger:                observability.GetLogger().Named("httpclient"),
	}
}

// NewClientConfigFromNetwork maps the application's network settings onto a
// client configuration. Zero durations keep the package defaults.
func NewClientConfigFromNetwork(nc config.NetworkConfig, logger *zap.Logger) *ClientConfig {
	cfg := NewDefaultClientConfig()
	if logger != nil {
		cfg.Logger = logger.Named("httpclient")
	}
	if nc.Timeout > 0 {
		cfg.RequestTimeout = nc.Timeout
	}
	if nc.ConnectTimeout > 0 {
		cfg.DialTimeout = nc.ConnectTimeout
	}
	if nc.TLSHandshakeTimeout > 0 {
		cfg.TLSHandshakeTimeout = nc.TLSHandshakeTimeout
	}
	if nc.ResponseHeaderTimeout > 0 {
		cfg.ResponseHeaderTimeout = nc.ResponseHeaderTimeout
	}
	cfg.ForceHTTP2 = nc.ForceHTTP2
	cfg.IgnoreTLSErrors = nc.IgnoreTLSErrors
	return cfg
}

// NewHTTPTransport creates an http.Transport from config.
func NewHTTPTransport(config *ClientConfig) *http.Transport {
	if config == nil {
		config = NewDefaultClientConfig()
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	dialer := &net.Dialer{
		Timeout:   config.DialTimeout,
		KeepAlive: config.KeepAlive,
	}

	tlsConfig := configureTLS(config)

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSClientConfig:       tlsConfig,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		DisableKeepAlives:     config.DisableKeepAlives,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
		ForceAttemptHTTP2:     config.ForceHTTP2,
		// Decompression is owned by CompressionMiddleware.
		DisableCompression: true,
	}

	if config.ProxyURL != nil {
		transport.Proxy = http.ProxyURL(config.ProxyURL)
	}

	if config.ForceHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			config.Logger.Warn("Failed to configure HTTP/2 transport, falling back to HTTP/1.1", zap.Error(err))
		}
	} else if len(tlsConfig.NextProtos) == 0 {
		tlsConfig.NextProtos = []string{"http/1.1"}
	}

	return transport
}

// NewClient creates a client using the configured transport.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = NewDefaultClientConfig()
	}

	var rt http.RoundTripper = NewHTTPTransport(config)
	if !config.DisableCompression {
		rt = NewCompressionMiddleware(rt)
	}

	standardClient := &http.Client{
		Transport: rt,
		Timeout:   config.RequestTimeout,
	}
	if !config.FollowRedirects {
		standardClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return &Client{Client: standardClient}
}

// CloseIdleConnections releases pooled connections held by the transport,
// including when it is wrapped by the compression middleware.
func (c *Client) CloseIdleConnections() {
	type idleCloser interface{ CloseIdleConnections() }
	switch rt := c.Transport.(type) {
	case *CompressionMiddleware:
		if ic, ok := rt.Transport.(idleCloser); ok {
			ic.CloseIdleConnections()
		}
	case idleCloser:
		rt.CloseIdleConnections()
	}
}

var defaultSecureCipherSuites = []uint16{
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
	tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
}

// configureTLS clones any provided TLS config, fills unset fields with secure
// defaults and enforces the minimum TLS version.
func configureTLS(config *ClientConfig) *tls.Config {
	var tlsConfig *tls.Config
	if config.TLSConfig != nil {
		tlsConfig = config.TLSConfig.Clone()
	} else {
		tlsConfig = &tls.Config{}
	}

	if tlsConfig.MinVersion < requiredMinTLSVersion {
		tlsConfig.MinVersion = requiredMinTLSVersion
	}
	if len(tlsConfig.CipherSuites) == 0 {
		tlsConfig.CipherSuites = defaultSecureCipherSuites
	}
	if tlsConfig.ClientSessionCache == nil {
		tlsConfig.ClientSessionCache = tls.NewLRUClientSessionCache(64)
	}

	tlsConfig.InsecureSkipVerify = config.IgnoreTLSErrors
	return tlsConfig
}
