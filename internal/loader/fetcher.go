package loader

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/honeybadger-loader/internal/config"
)

// ReadAPIKey returns the Read API key from the environment, falling back to
// the configuration property. Blank values count as unset.
func (l *Loader) ReadAPIKey() (string, error) {
	if key := strings.TrimSpace(l.provider.Getenv(config.ReadAPIKeyEnv)); key != "" {
		return key, nil
	}
	if key := strings.TrimSpace(l.provider.Property(config.ReadAPIKeyProperty)); key != "" {
		return key, nil
	}
	return "", errorf(KindConfiguration, "read api key",
		"set %s or the %s property", config.ReadAPIKeyEnv, config.ReadAPIKeyProperty)
}

// PullFaultJSON fetches the raw notice JSON for id. The body is returned
// whatever the status code.
func (l *Loader) PullFaultJSON(ctx context.Context, id uuid.UUID) ([]byte, error) {
	const op = "pull fault json"
	if id == uuid.Nil {
		return nil, errorf(KindInvalidArgument, op, "fault id is not set")
	}

	key, err := l.ReadAPIKey()
	if err != nil {
		return nil, err
	}

	// endpoint is safe to log; the token only lives in u.
	endpoint := l.apiURL + "/" + id.String() + "/"
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, newError(KindConfiguration, op, err)
	}
	u.RawQuery = url.Values{"auth_token": {key}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, newError(KindInvalidArgument, op, redact(err, endpoint))
	}
	req.Header.Set("Accept", "application/json")

	l.logger.Debug("Fetching fault details", zap.String("url", endpoint))
	resp, err := l.fetch.Do(req)
	if err != nil {
		return nil, newError(KindNetwork, op, redact(err, endpoint))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindNetwork, op, redact(err, endpoint))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		l.logger.Warn("Read API returned an error status",
			zap.String("url", endpoint),
			zap.Int("status", resp.StatusCode))
	}
	return body, nil
}

// redact replaces the URL recorded in a *url.Error so the token does not leak
// into error messages.
func redact(err error, safeURL string) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return &url.Error{Op: ue.Op, URL: safeURL, Err: ue.Err}
	}
	return err
}
