// File: internal/network/compression.go
package network

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
)

// acceptEncoding is advertised on every request that doesn't set its own.
const acceptEncoding = "br, gzip, deflate, identity"

var brotliReaderPool = sync.Pool{
	New: func() interface{} { return brotli.NewReader(nil) },
}

// CompressionMiddleware is an http.RoundTripper that negotiates compression
// and transparently decodes the response body according to Content-Encoding.
type CompressionMiddleware struct {
	// Transport performs the actual request. Nil means http.DefaultTransport.
	Transport http.RoundTripper
}

// NewCompressionMiddleware wraps transport with response decompression.
func NewCompressionMiddleware(transport http.RoundTripper) *CompressionMiddleware {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &CompressionMiddleware{Transport: transport}
}

// RoundTrip implements http.RoundTripper.
func (cm *CompressionMiddleware) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		// RoundTrippers must not mutate the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}

	resp, err := cm.Transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if err := DecompressResponse(resp); err != nil {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("failed to initialize response decompression: %w", err)
	}
	return resp, nil
}

// decodedBody closes the decoder, hands pooled readers back, and closes the
// body it was reading from.
type decodedBody struct {
	io.Reader
	closeDecoder func() error
	underlying   io.ReadCloser
}

func (d *decodedBody) Close() error {
	var err1 error
	if d.closeDecoder != nil {
		err1 = d.closeDecoder()
		d.closeDecoder = nil
	}
	return errors.Join(err1, d.underlying.Close())
}

// DecompressResponse wraps resp.Body with decoders for each Content-Encoding
// layer, applied in reverse order. On success the encoding and length headers
// are removed and resp.Uncompressed is set. On error the body may have been
// partially read; the caller must close and discard the response.
func DecompressResponse(resp *http.Response) error {
	if resp == nil || resp.Body == nil {
		return nil
	}

	encodings := contentEncodings(resp.Header)
	if len(encodings) == 0 {
		return nil
	}

	for i := len(encodings) - 1; i >= 0; i-- {
		var (
			reader       io.Reader
			closeDecoder func() error
		)

		switch encodings[i] {
		case "gzip", "x-gzip":
			zr, err := gzip.NewReader(resp.Body)
			if err != nil {
				return fmt.Errorf("gzip initialization error: %w", err)
			}
			reader, closeDecoder = zr, zr.Close

		case "deflate":
			rc, err := newDeflateReader(resp.Body)
			if err != nil {
				return fmt.Errorf("deflate initialization error: %w", err)
			}
			reader, closeDecoder = rc, rc.Close

		case "br":
			br := brotliReaderPool.Get().(*brotli.Reader)
			if err := br.Reset(resp.Body); err != nil {
				brotliReaderPool.Put(br)
				return fmt.Errorf("brotli initialization error: %w", err)
			}
			reader = br
			closeDecoder = func() error {
				_ = br.Reset(strings.NewReader(""))
				brotliReaderPool.Put(br)
				return nil
			}

		case "identity":
			continue

		default:
			return fmt.Errorf("unsupported Content-Encoding layer: %s", encodings[i])
		}

		resp.Body = &decodedBody{Reader: reader, closeDecoder: closeDecoder, underlying: resp.Body}
	}

	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return nil
}

// contentEncodings flattens possibly comma-joined Content-Encoding values.
func contentEncodings(h http.Header) []string {
	var out []string
	for _, v := range h.Values("Content-Encoding") {
		for _, part := range strings.Split(v, ",") {
			if enc := strings.ToLower(strings.TrimSpace(part)); enc != "" {
				out = append(out, enc)
			}
		}
	}
	return out
}

// newDeflateReader accepts both zlib-wrapped and raw deflate streams; servers
// disagree about what "deflate" means.
func newDeflateReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if len(header) == 2 && isZlibHeader(header[0], header[1]) {
		return zlib.NewReader(br)
	}
	return flate.NewReader(br), nil
}

// isZlibHeader reports whether the two bytes form a valid zlib CMF/FLG pair.
func isZlibHeader(cmf, flg byte) bool {
	return cmf&0x0f == 8 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}
