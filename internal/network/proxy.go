// internal/network/proxy.go
package network

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/xkilldash9x/honeybadger-loader/internal/config"
)

// Property names for a system-level HTTP proxy.
const (
	ProxyHostProperty = "http.proxyHost"
	ProxyPortProperty = "http.proxyPort"
)

// ErrInvalidProxy reports a proxy configuration that cannot be turned into a URL.
var ErrInvalidProxy = errors.New("invalid proxy configuration")

// ProxyFromProvider returns the proxy URL described by the http.proxyHost and
// http.proxyPort properties, or nil when no proxy host is configured. A host
// without a usable port is an error.
func ProxyFromProvider(p config.Provider) (*url.URL, error) {
	if p == nil {
		return nil, nil
	}
	host := strings.TrimSpace(p.Property(ProxyHostProperty))
	if host == "" {
		return nil, nil
	}

	rawPort := strings.TrimSpace(p.Property(ProxyPortProperty))
	port, err := strconv.Atoi(rawPort)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q is not a port number", ErrInvalidProxy, ProxyPortProperty, rawPort)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("%w: %s=%d is out of range", ErrInvalidProxy, ProxyPortProperty, port)
	}

	return &url.URL{Scheme: "http", Host: net.JoinHostPort(host, strconv.Itoa(port))}, nil
}

// ResolveProxy picks the proxy for outbound requests. The http.proxyHost
// property wins over network.proxy; nil means connect directly.
func ResolveProxy(p config.Provider, nc config.NetworkConfig) (*url.URL, error) {
	u, err := ProxyFromProvider(p)
	if err != nil || u != nil {
		return u, err
	}
	if !nc.Proxy.Enabled {
		return nil, nil
	}

	u, err = url.Parse(nc.Proxy.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: network.proxy.address: %v", ErrInvalidProxy, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: network.proxy.address %q has no host", ErrInvalidProxy, nc.Proxy.Address)
	}
	return u, nil
}
