package perantara

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Transport performs the terminal dispatch of one request configuration and
// reports exactly one settlement: a response or an error.
type Transport interface {
	Dispatch(ctx context.Context, cfg *Config) (*Response, error)
}

// PlatformFunc is the host-provided single-shot request primitive. The
// contract requires it to invoke exactly one of onSuccess or onFailure
// exactly once per call; the bridging transport enforces the "exactly once"
// half by discarding extra invocations.
type PlatformFunc func(cfg *Config, onSuccess func(*Response), onFailure func(error))

type platformTransport struct {
	fn PlatformFunc
}

// NewPlatformTransport wraps a callback-based platform primitive into a
// Transport. Failures settle as *TransportError with the platform's payload
// preserved in Cause; a payload that already is a *TransportError passes
// through untouched.
func NewPlatformTransport(fn PlatformFunc) Transport {
	return &platformTransport{fn: fn}
}

type settlement struct {
	resp *Response
	err  error
}

func (t *platformTransport) Dispatch(ctx context.Context, cfg *Config) (*Response, error) {
	done := make(chan settlement, 1)
	var once sync.Once
	start := time.Now()

	go t.fn(cfg,
		func(resp *Response) {
			once.Do(func() {
				done <- settlement{resp: resp}
			})
		},
		func(err error) {
			once.Do(func() {
				var te *TransportError
				if !errors.As(err, &te) {
					err = &TransportError{
						Message:   "platform request failed",
						Cause:     err,
						Method:    cfg.Method,
						URL:       cfg.URL,
						Timestamp: time.Now(),
						Duration:  time.Since(start),
					}
				}
				done <- settlement{err: err}
			})
		},
	)

	select {
	case s := <-done:
		return s.resp, s.err
	case <-ctx.Done():
		// The platform call cannot be aborted; the settlement goroutine
		// drains into the buffered channel and exits on its own.
		return nil, ctx.Err()
	}
}

// HTTPTransport is the bundled default platform, dispatching over net/http.
// Any received response settles successfully regardless of status code;
// only transport-level failures become a *TransportError.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates a transport over the given client, or
// http.DefaultClient semantics when client is nil.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPTransport{client: client}
}

// Dispatch builds and executes one HTTP request from cfg. Data is sent as
// the body for body-bearing verbs: []byte, string and io.Reader pass
// through raw, anything else is JSON-encoded. JSON response bodies decode
// into Response.Data; other bodies arrive as a string.
func (t *HTTPTransport) Dispatch(ctx context.Context, cfg *Config) (*Response, error) {
	start := time.Now()

	body, err := requestBody(cfg)
	if err != nil {
		return nil, t.fail(cfg, start, "encode request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(cfg.Method), cfg.URL, body)
	if err != nil {
		return nil, t.fail(cfg, start, "build request", err)
	}
	for k, v := range cfg.Header {
		req.Header.Set(k, v)
	}

	httpResp, err := t.client.Do(req)
	if err != nil {
		return nil, t.fail(cfg, start, "request failed", err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, t.fail(cfg, start, "read response body", err)
	}

	header := make(map[string]string, len(httpResp.Header))
	for k := range httpResp.Header {
		header[k] = httpResp.Header.Get(k)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     header,
		Config:     cfg,
	}
	if len(raw) > 0 {
		if strings.Contains(strings.ToLower(httpResp.Header.Get("Content-Type")), ContentTypeJSON) {
			var decoded interface{}
			if jsonErr := json.Unmarshal(raw, &decoded); jsonErr == nil {
				resp.Data = decoded
			} else {
				resp.Data = string(raw)
			}
		} else {
			resp.Data = string(raw)
		}
	}
	return resp, nil
}

func (t *HTTPTransport) fail(cfg *Config, start time.Time, message string, cause error) *TransportError {
	return &TransportError{
		Message:   message,
		Cause:     cause,
		Method:    cfg.Method,
		URL:       cfg.URL,
		Timestamp: time.Now(),
		Duration:  time.Since(start),
	}
}

func requestBody(cfg *Config) (io.Reader, error) {
	if cfg.Data == nil || !methodHasBody(cfg.Method) {
		return nil, nil
	}
	switch d := cfg.Data.(type) {
	case []byte:
		return bytes.NewReader(d), nil
	case string:
		return strings.NewReader(d), nil
	case io.Reader:
		return d, nil
	default:
		encoded, err := json.Marshal(cfg.Data)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(encoded), nil
	}
}

func methodHasBody(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}
