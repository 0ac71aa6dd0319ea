// Package perantara provides a small HTTP request client built around a
// composable interceptor pipeline:
//
//   - Request interceptors transform the outgoing configuration before the
//     terminal dispatch (last registered runs first)
//   - Response interceptors transform the settled response after dispatch
//     (registration order)
//   - Rejection handlers at every step may recover from an upstream failure
//     or let it keep propagating
//   - The terminal dispatch is pluggable: a platform-provided single-shot
//     callback primitive, or the bundled net/http transport
//   - Prometheus metrics and lightweight structured debug logging
//
// Design goals:
//   - Small surface area – functional options configure everything
//   - The pipeline never retries, caches or swallows errors on its own;
//     every recovery is an explicit interceptor decision
//   - Safe concurrent use of a single *Client instance – each call walks a
//     point-in-time snapshot of the registered interceptors
//   - Handler ids stay stable across ejections, so interceptors can be
//     removed long after registration
//
// Typical usage:
//
//	client := perantara.New(
//	    perantara.WithDefaults(perantara.Config{
//	        Header: map[string]string{"x-api-key": "secret"},
//	    }),
//	)
//	client.Interceptors.Request.Use(func(cfg *perantara.Config) (*perantara.Config, error) {
//	    cfg.Header["x-trace"] = "on"
//	    return cfg, nil
//	}, nil)
//	resp, err := client.Get(ctx, "https://api.example.com/data")
//
// The library avoids opinionated logging: provide a Logger (e.g. via
// WithSimpleLogger) + enable debug flags selectively (WithDebug /
// WithDebugConfig) for insight without noise.
package perantara
