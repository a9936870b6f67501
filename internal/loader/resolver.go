package loader

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FindFaultURI probes the lookup URL for id and derives the Read API detail
// URI from the redirect it answers with. A response without a Location header
// means the fault is unknown and yields nil, nil.
func (l *Loader) FindFaultURI(ctx context.Context, id uuid.UUID) (*url.URL, error) {
	const op = "find fault uri"
	if id == uuid.Nil {
		return nil, errorf(KindInvalidArgument, op, "fault id is not set")
	}

	lookup, err := url.Parse(l.lookupURL + id.String())
	if err != nil {
		return nil, newError(KindConfiguration, op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, lookup.String(), nil)
	if err != nil {
		return nil, newError(KindInvalidArgument, op, err)
	}

	resp, err := l.probe.Do(req)
	if err != nil {
		return nil, newError(KindNetwork, op, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	location := resp.Header.Get("Location")
	if location == "" {
		l.logger.Debug("Lookup returned no redirect",
			zap.Stringer("fault_id", id),
			zap.Int("status", resp.StatusCode))
		return nil, nil
	}

	target, err := lookup.Parse(location)
	if err != nil {
		return nil, newError(KindMalformedResponse, op, err)
	}

	detail, err := BuildFaultDetailsURI(target)
	if err != nil {
		return nil, newError(KindMalformedResponse, op, err)
	}
	return detail, nil
}
