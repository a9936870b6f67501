// Package loader reads error reports back from the Honeybadger Read API.
//
// A lookup runs in three steps. A HEAD probe against the public notice
// lookup URL reveals where the notice lives. The notice JSON is then fetched
// with the read API key. Finally the JSON is reshaped so the web environment
// lands where the report type expects CGI data.
package loader

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/honeybadger-loader/internal/config"
	"github.com/xkilldash9x/honeybadger-loader/internal/dto"
	"github.com/xkilldash9x/honeybadger-loader/internal/network"
)

// Loader retrieves reported errors. It holds no mutable state after
// construction and is safe for concurrent use.
type Loader struct {
	lookupURL string
	apiURL    string

	provider config.Provider
	logger   *zap.Logger

	// probe never follows redirects; fetch does.
	probe *network.Client
	fetch *network.Client
}

// New creates a Loader from the application configuration. provider answers
// environment and property lookups; nil reads the process environment and
// the global viper instance.
func New(cfg config.Interface, provider config.Provider, logger *zap.Logger) (*Loader, error) {
	const op = "new loader"
	if cfg == nil {
		return nil, errorf(KindConfiguration, op, "configuration is required")
	}
	if provider == nil {
		provider = config.NewProvider(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("loader")

	hb := cfg.Honeybadger()
	if err := hb.Validate(); err != nil {
		return nil, newError(KindConfiguration, op, err)
	}

	nc := cfg.Network()
	proxyURL, err := network.ResolveProxy(provider, nc)
	if err != nil {
		return nil, newError(KindConfiguration, op, err)
	}
	if proxyURL != nil {
		logger.Debug("Routing Honeybadger requests through proxy", zap.String("proxy", proxyURL.Redacted()))
	}

	probeCfg := network.NewClientConfigFromNetwork(nc, logger)
	probeCfg.ProxyURL = proxyURL
	probeCfg.FollowRedirects = false
	probeCfg.DisableCompression = true

	fetchCfg := network.NewClientConfigFromNetwork(nc, logger)
	fetchCfg.ProxyURL = proxyURL

	return &Loader{
		lookupURL: hb.LookupURL,
		apiURL:    strings.TrimRight(hb.URL, "/"),
		provider:  provider,
		logger:    logger,
		probe:     network.NewClient(probeCfg),
		fetch:     network.NewClient(fetchCfg),
	}, nil
}

// FindErrorDetails loads the notice with the given id. It returns nil and no
// error when the lookup endpoint does not know the id.
func (l *Loader) FindErrorDetails(ctx context.Context, id uuid.UUID) (*dto.ReportedError, error) {
	const op = "find error details"
	if id == uuid.Nil {
		return nil, errorf(KindInvalidArgument, op, "fault id is not set")
	}
	// Fail before any network traffic when the fetch could never succeed.
	if _, err := l.ReadAPIKey(); err != nil {
		return nil, err
	}

	detailURI, err := l.FindFaultURI(ctx, id)
	if err != nil {
		return nil, err
	}
	if detailURI == nil {
		l.logger.Info("Fault not found", zap.Stringer("fault_id", id))
		return nil, nil
	}
	l.logger.Debug("Resolved fault location",
		zap.Stringer("fault_id", id),
		zap.String("detail_uri", detailURI.String()))

	raw, err := l.PullFaultJSON(ctx, id)
	if err != nil {
		return nil, err
	}

	return Reconcile(raw)
}

// Close releases idle connections held by the underlying clients.
func (l *Loader) Close() {
	l.probe.CloseIdleConnections()
	l.fetch.CloseIdleConnections()
}
