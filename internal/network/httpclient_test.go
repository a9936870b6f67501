// internal/network/httpclient_test.go
package network

import (
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/elazarl/goproxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/honeybadger-loader/internal/config"
)

// -- Test Cases: Configuration and Defaults --

func TestNewDefaultClientConfig(t *testing.T) {
	cfg := NewDefaultClientConfig()

	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, DefaultDialTimeout, cfg.DialTimeout)
	assert.Equal(t, DefaultResponseHeaderTimeout, cfg.ResponseHeaderTimeout)
	assert.True(t, cfg.ForceHTTP2)
	assert.True(t, cfg.FollowRedirects)
	assert.NotNil(t, cfg.Logger)
}

func TestNewClientConfigFromNetwork(t *testing.T) {
	nc := config.NetworkConfig{
		Timeout:               7 * time.Second,
		ConnectTimeout:        2 * time.Second,
		ResponseHeaderTimeout: 3 * time.Second,
		IgnoreTLSErrors:       true,
	}

	cfg := NewClientConfigFromNetwork(nc, zap.NewNop())

	assert.Equal(t, 7*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2*time.Second, cfg.DialTimeout)
	assert.Equal(t, 3*time.Second, cfg.ResponseHeaderTimeout)
	// Unset values keep the defaults.
	assert.Equal(t, DefaultTLSHandshakeTimeout, cfg.TLSHandshakeTimeout)
	assert.False(t, cfg.ForceHTTP2)
	assert.True(t, cfg.IgnoreTLSErrors)
}

func TestConfigureTLS_Defaults(t *testing.T) {
	tlsConfig := configureTLS(NewDefaultClientConfig())

	require.NotNil(t, tlsConfig)
	assert.Equal(t, uint16(requiredMinTLSVersion), tlsConfig.MinVersion)
	assert.Equal(t, defaultSecureCipherSuites, tlsConfig.CipherSuites)
	assert.NotNil(t, tlsConfig.ClientSessionCache)
	assert.False(t, tlsConfig.InsecureSkipVerify)
}

func TestConfigureTLS_CustomConfigIsClonedAndHardened(t *testing.T) {
	custom := &tls.Config{ServerName: "custom.sni", MinVersion: tls.VersionTLS10}
	cfg := NewDefaultClientConfig()
	cfg.TLSConfig = custom
	cfg.IgnoreTLSErrors = true

	tlsConfig := configureTLS(cfg)

	assert.Equal(t, "custom.sni", tlsConfig.ServerName)
	assert.Equal(t, uint16(requiredMinTLSVersion), tlsConfig.MinVersion)
	assert.True(t, tlsConfig.InsecureSkipVerify)
	assert.NotSame(t, custom, tlsConfig)
	assert.False(t, custom.InsecureSkipVerify, "original must not be modified")
	assert.Equal(t, uint16(tls.VersionTLS10), custom.MinVersion)
}

// -- Test Cases: Transport Creation --

func TestNewHTTPTransport_ConfigurationMapping(t *testing.T) {
	cfg := NewDefaultClientConfig()
	cfg.MaxIdleConns = 55
	cfg.IdleConnTimeout = 99 * time.Second
	cfg.ResponseHeaderTimeout = 5 * time.Second
	cfg.DisableKeepAlives = true

	transport := NewHTTPTransport(cfg)

	assert.Equal(t, 55, transport.MaxIdleConns)
	assert.Equal(t, 99*time.Second, transport.IdleConnTimeout)
	assert.Equal(t, 5*time.Second, transport.ResponseHeaderTimeout)
	assert.True(t, transport.DisableKeepAlives)
	assert.True(t, transport.DisableCompression, "decompression belongs to the middleware")
	assert.Nil(t, transport.Proxy, "no proxy unless configured")
}

func TestNewHTTPTransport_NilConfig(t *testing.T) {
	transport := NewHTTPTransport(nil)
	assert.Equal(t, DefaultMaxIdleConns, transport.MaxIdleConns)
	assert.NotNil(t, transport.DialContext)
	assert.NotNil(t, transport.TLSClientConfig)
}

func TestNewHTTPTransport_Proxy(t *testing.T) {
	proxyURL, _ := url.Parse("http://proxy.example.com:8080")
	cfg := NewDefaultClientConfig()
	cfg.ProxyURL = proxyURL

	transport := NewHTTPTransport(cfg)
	require.NotNil(t, transport.Proxy)

	req, _ := http.NewRequest(http.MethodHead, "http://target.example.com", nil)
	got, err := transport.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, proxyURL, got)
}

func TestNewHTTPTransport_HTTP2(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		cfg := NewDefaultClientConfig()
		cfg.ForceHTTP2 = true
		transport := NewHTTPTransport(cfg)
		assert.True(t, transport.ForceAttemptHTTP2)
		assert.Equal(t, []string{"h2", "http/1.1"}, transport.TLSClientConfig.NextProtos)
	})

	t.Run("disabled", func(t *testing.T) {
		cfg := NewDefaultClientConfig()
		cfg.ForceHTTP2 = false
		transport := NewHTTPTransport(cfg)
		assert.False(t, transport.ForceAttemptHTTP2)
		assert.Equal(t, []string{"http/1.1"}, transport.TLSClientConfig.NextProtos)
	})
}

// -- Test Cases: Client Behavior --

func redirectingServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/redirected", http.StatusFound)
			return
		}
		_, _ = io.WriteString(w, "arrived")
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewClient_RedirectsDisabled(t *testing.T) {
	server := redirectingServer(t)
	cfg := NewDefaultClientConfig()
	cfg.FollowRedirects = false
	client := NewClient(cfg)
	defer client.CloseIdleConnections()

	resp, err := client.Head(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/redirected", resp.Header.Get("Location"))
}

func TestNewClient_RedirectsFollowed(t *testing.T) {
	server := redirectingServer(t)
	client := NewClient(nil)
	defer client.CloseIdleConnections()

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "arrived", string(body))
}

func TestNewClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	cfg := NewDefaultClientConfig()
	cfg.RequestTimeout = 50 * time.Millisecond
	client := NewClient(cfg)
	defer client.CloseIdleConnections()

	_, err := client.Get(server.URL)
	require.Error(t, err)
}

func TestNewClient_RoutesThroughForwardProxy(t *testing.T) {
	target := redirectingServer(t)

	var proxied atomic.Int32
	proxy := goproxy.NewProxyHttpServer()
	proxy.OnRequest().DoFunc(func(r *http.Request, ctx *goproxy.ProxyCtx) (*http.Request, *http.Response) {
		proxied.Add(1)
		return r, nil
	})
	proxyServer := httptest.NewServer(proxy)
	defer proxyServer.Close()

	proxyURL, err := url.Parse(proxyServer.URL)
	require.NoError(t, err)

	cfg := NewDefaultClientConfig()
	cfg.FollowRedirects = false
	cfg.ProxyURL = proxyURL
	client := NewClient(cfg)
	defer client.CloseIdleConnections()

	resp, err := client.Head(target.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, int32(1), proxied.Load(), "request should traverse the proxy exactly once")
}
