package perantara

import "strings"

// ContentTypeJSON is the header value applied when a request carries no
// content-type of its own.
const ContentTypeJSON = "application/json"

// Config describes one request. URL and Method identify the call, Header
// carries string header pairs, Data is the request body for body-bearing
// verbs, and Extra holds transport-specific fields forwarded verbatim to
// the dispatching transport.
type Config struct {
	URL    string
	Method string
	Header map[string]string
	Data   interface{}
	Extra  map[string]interface{}
}

// Clone returns a deep-enough copy: the Header and Extra maps are copied,
// Data is shared.
func (c Config) Clone() Config {
	out := c
	if c.Header != nil {
		out.Header = make(map[string]string, len(c.Header))
		for k, v := range c.Header {
			out.Header[k] = v
		}
	}
	if c.Extra != nil {
		out.Extra = make(map[string]interface{}, len(c.Extra))
		for k, v := range c.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// mergeConfig layers override on top of base. Header maps merge key-wise
// with override winning on conflicts; every other field replaces wholesale
// when set in override. Neither input is mutated.
func mergeConfig(base, override Config) Config {
	out := base.Clone()
	if override.URL != "" {
		out.URL = override.URL
	}
	if override.Method != "" {
		out.Method = override.Method
	}
	if override.Data != nil {
		out.Data = override.Data
	}
	if override.Extra != nil {
		out.Extra = make(map[string]interface{}, len(override.Extra))
		for k, v := range override.Extra {
			out.Extra[k] = v
		}
	}
	if override.Header != nil {
		if out.Header == nil {
			out.Header = make(map[string]string, len(override.Header))
		}
		for k, v := range override.Header {
			out.Header[k] = v
		}
	}
	return out
}

// hasHeader reports whether the header map contains name, compared
// case-insensitively.
func hasHeader(header map[string]string, name string) bool {
	for k := range header {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// applyDefaultHeader fills in the content-type default on a merged config.
// This runs before the interceptor chain; the chain itself never touches
// defaults.
func applyDefaultHeader(cfg *Config) {
	if cfg.Header == nil {
		cfg.Header = make(map[string]string, 1)
	}
	if !hasHeader(cfg.Header, "content-type") {
		cfg.Header["content-type"] = ContentTypeJSON
	}
}

// Response is the settled value of a terminal dispatch, passed unmodified
// into the response-interceptor chain. Its shape follows the platform
// transport; Config records the effective configuration that produced it.
type Response struct {
	StatusCode int
	Header     map[string]string
	Data       interface{}
	Config     *Config
}
