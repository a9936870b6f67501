// internal/network/proxy_test.go
package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/honeybadger-loader/internal/config"
	"github.com/xkilldash9x/honeybadger-loader/internal/mocks"
)

func TestProxyFromProvider(t *testing.T) {
	tests := []struct {
		name    string
		props   map[string]string
		want    string
		wantErr bool
	}{
		{name: "no proxy host", props: nil, want: ""},
		{name: "blank proxy host", props: map[string]string{ProxyHostProperty: "  "}, want: ""},
		{
			name:  "host and port",
			props: map[string]string{ProxyHostProperty: "proxy.internal", ProxyPortProperty: "3128"},
			want:  "http://proxy.internal:3128",
		},
		{
			name:  "ipv6 host",
			props: map[string]string{ProxyHostProperty: "::1", ProxyPortProperty: "8080"},
			want:  "http://[::1]:8080",
		},
		{name: "missing port", props: map[string]string{ProxyHostProperty: "proxy.internal"}, wantErr: true},
		{
			name:    "non numeric port",
			props:   map[string]string{ProxyHostProperty: "proxy.internal", ProxyPortProperty: "http"},
			wantErr: true,
		},
		{
			name:    "port out of range",
			props:   map[string]string{ProxyHostProperty: "proxy.internal", ProxyPortProperty: "70000"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProxyFromProvider(mocks.NewMockProvider(nil, tt.props))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidProxy)
				return
			}
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestProxyFromProvider_NilProvider(t *testing.T) {
	got, err := ProxyFromProvider(nil)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolveProxy(t *testing.T) {
	configured := config.NetworkConfig{Proxy: config.ProxyConfig{Enabled: true, Address: "http://corp-proxy:8080"}}

	t.Run("property wins over network config", func(t *testing.T) {
		p := mocks.NewMockProvider(nil, map[string]string{ProxyHostProperty: "sys-proxy", ProxyPortProperty: "3128"})
		got, err := ResolveProxy(p, configured)
		require.NoError(t, err)
		assert.Equal(t, "http://sys-proxy:3128", got.String())
	})

	t.Run("network config used when no property", func(t *testing.T) {
		got, err := ResolveProxy(mocks.NewMockProvider(nil, nil), configured)
		require.NoError(t, err)
		assert.Equal(t, "http://corp-proxy:8080", got.String())
	})

	t.Run("disabled network proxy", func(t *testing.T) {
		got, err := ResolveProxy(mocks.NewMockProvider(nil, nil), config.NetworkConfig{
			Proxy: config.ProxyConfig{Enabled: false, Address: "http://corp-proxy:8080"},
		})
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("enabled network proxy without host", func(t *testing.T) {
		_, err := ResolveProxy(mocks.NewMockProvider(nil, nil), config.NetworkConfig{
			Proxy: config.ProxyConfig{Enabled: true, Address: "corp-proxy"},
		})
		assert.ErrorIs(t, err, ErrInvalidProxy)
	})
}
