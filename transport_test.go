package perantara

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPlatformTransportSuccess(t *testing.T) {
	transport := NewPlatformTransport(func(cfg *Config, onSuccess func(*Response), onFailure func(error)) {
		onSuccess(&Response{StatusCode: http.StatusOK, Data: "pong", Config: cfg})
	})

	resp, err := transport.Dispatch(context.Background(), &Config{URL: testURL, Method: http.MethodGet})

	if err != nil {
		t.Fatalf("Dispatch() returned error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf(expectedStatusMsg, http.StatusOK, resp.StatusCode)
	}
	if resp.Data != "pong" {
		t.Errorf("Expected payload pong, got %v", resp.Data)
	}
}

func TestPlatformTransportFailureWrapsCause(t *testing.T) {
	cause := errors.New("network down")
	transport := NewPlatformTransport(func(cfg *Config, onSuccess func(*Response), onFailure func(error)) {
		onFailure(cause)
	})

	_, err := transport.Dispatch(context.Background(), &Config{URL: testURL, Method: http.MethodGet})

	if !IsTransportError(err) {
		t.Fatalf("Expected TransportError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Platform payload not preserved in Cause: %v", err)
	}

	var te *TransportError
	if errors.As(err, &te) {
		if te.Method != http.MethodGet || te.URL != testURL {
			t.Errorf("Error missing request context: %+v", te)
		}
	}
}

func TestPlatformTransportKeepsExistingTransportError(t *testing.T) {
	original := &TransportError{Message: "already wrapped"}
	transport := NewPlatformTransport(func(cfg *Config, onSuccess func(*Response), onFailure func(error)) {
		onFailure(original)
	})

	_, err := transport.Dispatch(context.Background(), &Config{URL: testURL, Method: http.MethodGet})

	var te *TransportError
	if !errors.As(err, &te) || te != original {
		t.Errorf("Expected the original TransportError unchanged, got %v", err)
	}
}

func TestPlatformTransportSettlesExactlyOnce(t *testing.T) {
	transport := NewPlatformTransport(func(cfg *Config, onSuccess func(*Response), onFailure func(error)) {
		// A misbehaving platform calling both callbacks, repeatedly.
		onSuccess(&Response{StatusCode: http.StatusOK})
		onSuccess(&Response{StatusCode: http.StatusTeapot})
		onFailure(errors.New("too late"))
	})

	resp, err := transport.Dispatch(context.Background(), &Config{URL: testURL, Method: http.MethodGet})

	if err != nil {
		t.Fatalf("Dispatch() returned error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("First settlement must win, got status %d", resp.StatusCode)
	}
}

func TestPlatformTransportContextCancelAbandonsWait(t *testing.T) {
	release := make(chan struct{})
	transport := NewPlatformTransport(func(cfg *Config, onSuccess func(*Response), onFailure func(error)) {
		<-release
		onSuccess(&Response{StatusCode: http.StatusOK})
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := transport.Dispatch(ctx, &Config{URL: testURL, Method: http.MethodGet})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context error, got %v", err)
	}
}

func TestHTTPTransportDecodesJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeJSONTest)
		if _, err := w.Write([]byte(`{"name":"value"}`)); err != nil {
			t.Fatalf(failedWriteRespMsg, err)
		}
	}))
	defer server.Close()

	transport := NewHTTPTransport(nil)
	resp, err := transport.Dispatch(context.Background(), &Config{URL: server.URL, Method: http.MethodGet})

	if err != nil {
		t.Fatalf("Dispatch() returned error: %v", err)
	}
	body, ok := resp.Data.(map[string]interface{})
	if !ok || body["name"] != "value" {
		t.Errorf("Expected decoded JSON, got %v", resp.Data)
	}
}

func TestHTTPTransportNonJSONBodyIsString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		if _, err := w.Write([]byte("plain text")); err != nil {
			t.Fatalf(failedWriteRespMsg, err)
		}
	}))
	defer server.Close()

	transport := NewHTTPTransport(nil)
	resp, err := transport.Dispatch(context.Background(), &Config{URL: server.URL, Method: http.MethodGet})

	if err != nil {
		t.Fatalf("Dispatch() returned error: %v", err)
	}
	if resp.Data != "plain text" {
		t.Errorf("Expected raw string body, got %v", resp.Data)
	}
}

func TestHTTPTransportNonSuccessStatusStillSettles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	transport := NewHTTPTransport(nil)
	resp, err := transport.Dispatch(context.Background(), &Config{URL: server.URL, Method: http.MethodGet})

	if err != nil {
		t.Fatalf("Non-2xx must settle successfully, got error: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf(expectedStatusMsg, http.StatusInternalServerError, resp.StatusCode)
	}
}

func TestHTTPTransportNetworkFailure(t *testing.T) {
	transport := NewHTTPTransport(nil)

	_, err := transport.Dispatch(context.Background(), &Config{
		URL:    "http://127.0.0.1:1/unreachable",
		Method: http.MethodGet,
	})

	if !IsTransportError(err) {
		t.Fatalf("Expected TransportError for network failure, got %v", err)
	}
}

func TestHTTPTransportEncodesJSONBody(t *testing.T) {
	var received string
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("Failed to read request body: %v", err)
		}
		received = string(body)
		contentType = r.Header.Get("Content-Type")
	}))
	defer server.Close()

	transport := NewHTTPTransport(nil)
	_, err := transport.Dispatch(context.Background(), &Config{
		URL:    server.URL,
		Method: http.MethodPost,
		Header: map[string]string{"content-type": contentTypeJSONTest},
		Data:   map[string]string{"key": "value"},
	})

	if err != nil {
		t.Fatalf("Dispatch() returned error: %v", err)
	}
	if !strings.Contains(received, `"key":"value"`) {
		t.Errorf("Expected JSON-encoded body, got %q", received)
	}
	if contentType != contentTypeJSONTest {
		t.Errorf("Expected content-type %s, got %s", contentTypeJSONTest, contentType)
	}
}

func TestHTTPTransportGetCarriesNoBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 {
			t.Errorf("GET request carried a body of %d bytes", r.ContentLength)
		}
	}))
	defer server.Close()

	transport := NewHTTPTransport(nil)
	_, err := transport.Dispatch(context.Background(), &Config{
		URL:    server.URL,
		Method: http.MethodGet,
		Data:   map[string]string{"ignored": "yes"},
	})

	if err != nil {
		t.Fatalf("Dispatch() returned error: %v", err)
	}
}
