package network

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{"web_environment":{"SERVER_NAME":"app-1"},"request":{"url":"/checkout"}}`

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func brotliBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zlibBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func rawDeflateBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func responseWith(body []byte, encodings ...string) *http.Response {
	resp := &http.Response{
		Header:        make(http.Header),
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
	}
	for _, enc := range encodings {
		resp.Header.Add("Content-Encoding", enc)
	}
	resp.Header.Set("Content-Length", "123")
	return resp
}

func TestDecompressResponse(t *testing.T) {
	payload := []byte(samplePayload)

	tests := []struct {
		name      string
		body      []byte
		encodings []string
	}{
		{"gzip", gzipBytes(t, payload), []string{"gzip"}},
		{"brotli", brotliBytes(t, payload), []string{"br"}},
		{"zlib deflate", zlibBytes(t, payload), []string{"deflate"}},
		{"raw deflate", rawDeflateBytes(t, payload), []string{"deflate"}},
		{"identity", payload, []string{"identity"}},
		{"layered gzip over brotli", gzipBytes(t, brotliBytes(t, payload)), []string{"br", "gzip"}},
		{"comma joined layers", gzipBytes(t, brotliBytes(t, payload)), []string{"br, gzip"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := responseWith(tt.body, tt.encodings...)
			require.NoError(t, DecompressResponse(resp))

			got, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.NoError(t, resp.Body.Close())

			assert.Equal(t, samplePayload, string(got))
			assert.Empty(t, resp.Header.Get("Content-Encoding"))
			assert.Empty(t, resp.Header.Get("Content-Length"))
			assert.Equal(t, int64(-1), resp.ContentLength)
			assert.True(t, resp.Uncompressed)
		})
	}
}

func TestDecompressResponse_NoEncodingUntouched(t *testing.T) {
	resp := responseWith([]byte(samplePayload))
	require.NoError(t, DecompressResponse(resp))
	assert.False(t, resp.Uncompressed)
	assert.Equal(t, "123", resp.Header.Get("Content-Length"))
}

func TestDecompressResponse_Errors(t *testing.T) {
	t.Run("unsupported encoding", func(t *testing.T) {
		err := DecompressResponse(responseWith([]byte("x"), "compress"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported Content-Encoding layer: compress")
	})

	t.Run("corrupt gzip header", func(t *testing.T) {
		err := DecompressResponse(responseWith([]byte("definitely not gzip"), "gzip"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gzip initialization error")
	})

	t.Run("nil response", func(t *testing.T) {
		assert.NoError(t, DecompressResponse(nil))
	})
}

func TestCompressionMiddleware_RoundTrip(t *testing.T) {
	var gotAcceptEncoding string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAcceptEncoding = r.Header.Get("Accept-Encoding")
		w.Header().Set("Content-Encoding", "br")
		_, _ = w.Write(brotliBytes(t, []byte(samplePayload)))
	}))
	defer server.Close()

	client := &http.Client{Transport: NewCompressionMiddleware(nil)}
	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, samplePayload, string(body))
	assert.True(t, strings.HasPrefix(gotAcceptEncoding, "br"))
	assert.Empty(t, req.Header.Get("Accept-Encoding"), "caller's request must not be mutated")
}

func TestCompressionMiddleware_RespectsCallerAcceptEncoding(t *testing.T) {
	var gotAcceptEncoding string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAcceptEncoding = r.Header.Get("Accept-Encoding")
		_, _ = io.WriteString(w, "plain")
	}))
	defer server.Close()

	client := &http.Client{Transport: NewCompressionMiddleware(http.DefaultTransport)}
	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "identity", gotAcceptEncoding)
}
