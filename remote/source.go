// Package remote serves BRK archives over HTTP range requests.
//
// A Source satisfies brk.Source, so an archive published on a static file
// server or CDN can be listed and read without downloading it first:
//
//	src, err := remote.NewSource(ctx, "https://cdn.example.com/game.brk")
//	if err != nil {
//		return err
//	}
//	archive, err := brk.New(src)
//
// Each ReadAt issues one GET with a Range header. Requests after the first
// carry If-Match or If-Unmodified-Since, so a file replaced on the server
// fails with ErrChanged instead of mixing bytes from two archives.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

var (
	// ErrRangeUnsupported is returned when the server ignores Range headers.
	ErrRangeUnsupported = errors.New("remote: range requests not supported")

	// ErrChanged is returned when the remote file changed after the source
	// was opened.
	ErrChanged = errors.New("remote: content changed")
)

// Source implements random access reads of a remote archive.
// It is safe for concurrent use.
type Source struct {
	url          string
	client       *http.Client
	headers      http.Header
	logger       *slog.Logger
	size         int64
	etag         string
	lastModified string
}

// Option configures a Source.
type Option func(*Source)

// WithClient sets the HTTP client used for requests.
// The default is http.DefaultClient.
func WithClient(client *http.Client) Option {
	return func(s *Source) {
		s.client = client
	}
}

// WithHeader sets a header sent with every request, such as Authorization.
func WithHeader(key, value string) Option {
	return func(s *Source) {
		if s.headers == nil {
			s.headers = make(http.Header)
		}
		s.headers.Set(key, value)
	}
}

// WithLogger sets the logger for request tracing.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// NewSource probes url for its size and validators and returns a Source.
func NewSource(ctx context.Context, url string, opts ...Option) (*Source, error) {
	s := &Source{url: url}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = http.DefaultClient
	}

	if err := s.probe(ctx); err != nil {
		return nil, fmt.Errorf("open %s: %w", url, err)
	}
	s.log().Debug("remote source opened", "url", url, "size", s.size, "etag", s.etag)
	return s, nil
}

func (s *Source) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// Size returns the size of the remote file.
func (s *Source) Size() int64 {
	return s.size
}

// URL returns the remote location.
func (s *Source) URL() string {
	return s.url
}

// ReadAt reads len(p) bytes at off with a single range request.
// A read ending past the remote size returns the available bytes and io.EOF.
func (s *Source) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 {
		return 0, fmt.Errorf("read at %d: negative offset", off)
	}
	if off >= s.size {
		return 0, io.EOF
	}

	want := min(int64(len(p)), s.size-off)
	resp, err := s.get(context.Background(), off, off+want-1)
	if err != nil {
		return 0, err
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusPartialContent:
	case http.StatusRequestedRangeNotSatisfiable:
		return 0, io.EOF
	case http.StatusPreconditionFailed:
		return 0, ErrChanged
	case http.StatusOK:
		return 0, ErrRangeUnsupported
	default:
		return 0, fmt.Errorf("range request: %s", resp.Status)
	}

	n, err := io.ReadFull(resp.Body, p[:want])
	if err != nil {
		return n, fmt.Errorf("range request body: %w", err)
	}
	if want < int64(len(p)) {
		return n, io.EOF
	}
	return n, nil
}

// probe learns the size from a one-byte range request. A HEAD response,
// when available, must agree with it.
func (s *Source) probe(ctx context.Context) error {
	headSize := int64(-1)
	if req, err := s.newRequest(ctx, http.MethodHead); err == nil {
		if resp, err := s.client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				headSize = resp.ContentLength
				s.etag = resp.Header.Get("ETag")
				s.lastModified = resp.Header.Get("Last-Modified")
			}
			drain(resp)
		}
	}

	resp, err := s.get(ctx, 0, 0)
	if err != nil {
		return err
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusPartialContent:
	case http.StatusOK:
		return ErrRangeUnsupported
	default:
		return fmt.Errorf("range probe: %s", resp.Status)
	}

	size, err := parseContentRange(resp.Header.Get("Content-Range"))
	if err != nil {
		return err
	}
	if headSize > 0 && headSize != size {
		return fmt.Errorf("content size mismatch: head=%d range=%d", headSize, size)
	}
	s.size = size
	if s.etag == "" {
		s.etag = resp.Header.Get("ETag")
	}
	if s.lastModified == "" {
		s.lastModified = resp.Header.Get("Last-Modified")
	}
	return nil
}

func (s *Source) get(ctx context.Context, first, last int64) (*http.Response, error) {
	req, err := s.newRequest(ctx, http.MethodGet)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Range", "bytes="+strconv.FormatInt(first, 10)+"-"+strconv.FormatInt(last, 10))
	s.log().Debug("range request", "url", s.url, "first", first, "last", last)
	return s.client.Do(req)
}

func (s *Source) newRequest(ctx context.Context, method string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.url, http.NoBody)
	if err != nil {
		return nil, err
	}
	for key, values := range s.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "identity")
	}
	if method == http.MethodGet {
		if s.etag != "" {
			req.Header.Set("If-Match", s.etag)
		} else if s.lastModified != "" {
			req.Header.Set("If-Unmodified-Since", s.lastModified)
		}
	}
	return req, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // best-effort connection reuse
	_ = resp.Body.Close()                 //nolint:errcheck // body fully consumed
}

// parseContentRange returns the complete length from a
// "bytes first-last/length" header.
func parseContentRange(value string) (int64, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(value), "bytes ")
	if !ok {
		return 0, fmt.Errorf("invalid Content-Range %q", value)
	}
	_, total, ok := strings.Cut(rest, "/")
	if !ok || total == "*" {
		return 0, fmt.Errorf("invalid Content-Range %q", value)
	}
	size, err := strconv.ParseInt(total, 10, 64)
	if err != nil || size < 0 {
		return 0, fmt.Errorf("invalid Content-Range %q", value)
	}
	return size, nil
}
