package perantara

import (
	"context"
	"net/http"
	"time"
)

// Interceptors groups the two phase registries owned by a Client.
type Interceptors struct {
	Request  *Manager[*Config]
	Response *Manager[*Response]
}

// Client runs requests through an interceptor pipeline around a single
// terminal dispatch. It is safe for concurrent use: every call walks its
// own point-in-time snapshot of the registered interceptors.
type Client struct {
	defaults  Config
	transport Transport
	metrics   *MetricsCollector
	debug     *DebugConfig
	logger    Logger

	// Interceptors are the mutable per-phase registries; register handlers
	// with Use and remove them with Eject.
	Interceptors Interceptors
}

// New constructs a Client using the provided functional options. Without
// options the client has empty defaults and dispatches over net/http.
func New(options ...Option) *Client {
	client := &Client{
		transport: NewHTTPTransport(nil),
		debug:     DefaultDebugConfig(),
		Interceptors: Interceptors{
			Request:  NewManager[*Config](),
			Response: NewManager[*Response](),
		},
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// Create derives an independent client: fresh empty interceptor registries
// and the given defaults merged over the parent's, sharing the parent's
// transport, logger, metrics and debug configuration.
func (c *Client) Create(defaults Config) *Client {
	return &Client{
		defaults:  mergeConfig(c.defaults, defaults),
		transport: c.transport,
		metrics:   c.metrics,
		debug:     c.debug,
		logger:    c.logger,
		Interceptors: Interceptors{
			Request:  NewManager[*Config](),
			Response: NewManager[*Response](),
		},
	}
}

// Defaults returns a copy of the client's default configuration.
func (c *Client) Defaults() Config {
	return c.defaults.Clone()
}

// Do runs one request through the pipeline: request interceptors (last
// registered runs first, immediately before dispatch), the terminal
// dispatch, then response interceptors in registration order. cfg merges
// over the client defaults before the chain starts, so the first
// interceptor already sees the effective configuration.
//
// A failing step skips every later fulfillment step; the nearest later
// rejection handler receives the error and may recover or keep it
// propagating. The pipeline itself never retries or swallows anything.
func (c *Client) Do(ctx context.Context, cfg Config) (*Response, error) {
	start := time.Now()

	effective := mergeConfig(c.defaults, cfg)
	applyDefaultHeader(&effective)

	method := effective.Method
	endpoint := endpointFromConfig(&effective)

	var requestID string
	if c.debug != nil && c.debug.Enabled && c.debug.RequestIDGen != nil {
		requestID = c.debug.RequestIDGen()
	}

	if c.debug != nil && c.debug.Enabled && c.debug.LogRequests && c.logger != nil {
		c.logger.Debug("Starting request", "requestID", requestID, "method", method, "url", effective.URL, "endpoint", endpoint)
	}

	if c.metrics != nil {
		c.metrics.RecordRequestStart(method, endpoint)
	}

	// Snapshot both registries before the first step runs. Use/Eject calls
	// landing after this point only affect later requests.
	requestChain := c.Interceptors.Request.snapshot()
	responseChain := c.Interceptors.Response.snapshot()

	conf := &effective
	var chainErr error

	// Request phase. The chain is assembled by prepending request handlers
	// in registration order in front of the dispatch step, so they execute
	// in reverse registration order.
	for i := len(requestChain) - 1; i >= 0; i-- {
		conf, chainErr = runStep(c, PhaseRequest, requestID, requestChain[i], conf, chainErr)
	}

	var resp *Response
	if chainErr == nil {
		if c.debug != nil && c.debug.Enabled && c.debug.LogDispatch && c.logger != nil {
			c.logger.Debug("Dispatching", "requestID", requestID, "method", conf.Method, "url", conf.URL)
		}
		resp, chainErr = c.transport.Dispatch(ctx, conf)
		if chainErr != nil && c.debug != nil && c.debug.Enabled && c.debug.LogDispatch && c.logger != nil {
			c.logger.Warn("Dispatch failed", "requestID", requestID, "error", chainErr.Error())
		}
	}

	// Response phase, registration order.
	for _, handler := range responseChain {
		resp, chainErr = runStep(c, PhaseResponse, requestID, handler, resp, chainErr)
	}

	duration := time.Since(start)
	if c.metrics != nil {
		c.metrics.RecordRequestEnd(method, endpoint)
		statusCode := 0
		if chainErr == nil && resp != nil {
			statusCode = resp.StatusCode
		}
		c.metrics.RecordRequest(method, endpoint, statusCode, duration)
	}

	if chainErr != nil {
		if c.metrics != nil {
			errorType := "Interceptor"
			if IsTransportError(chainErr) {
				errorType = "Transport"
			}
			c.metrics.RecordError(errorType, method, endpoint)
		}
		return nil, chainErr
	}

	if c.debug != nil && c.debug.Enabled && c.debug.LogRequests && c.logger != nil && resp != nil {
		c.logger.Debug("Request completed", "requestID", requestID, "statusCode", resp.StatusCode, "duration", duration)
	}

	return resp, nil
}

// runStep applies one chain link with promise semantics: OnFulfilled runs
// on the success path, OnRejected on the failure path, and a missing
// handler propagates the current state unchanged. A rejection handler
// returning a nil error recovers the chain.
func runStep[T any](c *Client, phase, requestID string, handler Handler[T], value T, chainErr error) (T, error) {
	if chainErr == nil {
		if handler.OnFulfilled == nil {
			return value, nil
		}
		next, err := handler.OnFulfilled(value)
		if c.metrics != nil {
			c.metrics.RecordInterceptor(phase, err != nil)
		}
		if err != nil {
			if c.debug != nil && c.debug.Enabled && c.debug.LogInterceptors && c.logger != nil {
				c.logger.Warn("Interceptor rejected", "requestID", requestID, "phase", phase, "error", err.Error())
			}
			return value, err
		}
		return next, nil
	}

	if handler.OnRejected == nil {
		return value, chainErr
	}
	next, err := handler.OnRejected(chainErr)
	if c.metrics != nil {
		c.metrics.RecordInterceptor(phase, err != nil)
	}
	if err != nil {
		return value, err
	}
	if c.metrics != nil {
		c.metrics.RecordRecovery(phase)
	}
	if c.debug != nil && c.debug.Enabled && c.debug.LogInterceptors && c.logger != nil {
		c.logger.Info("Interceptor recovered", "requestID", requestID, "phase", phase)
	}
	return next, nil
}

// Get issues a GET through the pipeline. The optional cfg carries extra
// fields (headers, Extra) merged the same way Do merges; Method and URL are
// fixed by the shortcut.
func (c *Client) Get(ctx context.Context, url string, cfg ...Config) (*Response, error) {
	return c.shortcut(ctx, http.MethodGet, url, nil, cfg)
}

// Post issues a POST with data as the request body.
func (c *Client) Post(ctx context.Context, url string, data interface{}, cfg ...Config) (*Response, error) {
	return c.shortcut(ctx, http.MethodPost, url, data, cfg)
}

// Put issues a PUT with data as the request body.
func (c *Client) Put(ctx context.Context, url string, data interface{}, cfg ...Config) (*Response, error) {
	return c.shortcut(ctx, http.MethodPut, url, data, cfg)
}

// Patch issues a PATCH with data as the request body.
func (c *Client) Patch(ctx context.Context, url string, data interface{}, cfg ...Config) (*Response, error) {
	return c.shortcut(ctx, http.MethodPatch, url, data, cfg)
}

// Delete issues a DELETE through the pipeline.
func (c *Client) Delete(ctx context.Context, url string, cfg ...Config) (*Response, error) {
	return c.shortcut(ctx, http.MethodDelete, url, nil, cfg)
}

// Head issues a HEAD through the pipeline.
func (c *Client) Head(ctx context.Context, url string, cfg ...Config) (*Response, error) {
	return c.shortcut(ctx, http.MethodHead, url, nil, cfg)
}

// Options issues an OPTIONS through the pipeline.
func (c *Client) Options(ctx context.Context, url string, cfg ...Config) (*Response, error) {
	return c.shortcut(ctx, http.MethodOptions, url, nil, cfg)
}

func (c *Client) shortcut(ctx context.Context, method, url string, data interface{}, overrides []Config) (*Response, error) {
	var cfg Config
	if len(overrides) > 0 {
		cfg = overrides[0]
	}
	cfg.Method = method
	cfg.URL = url
	if data != nil {
		cfg.Data = data
	}
	return c.Do(ctx, cfg)
}
