package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte("<html>app</html>"))
		case "/busy":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/limited":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tests := []struct {
		path      string
		wantBody  string
		wantErr   bool
		retryable bool
	}{
		{"/ok", "<html>app</html>", false, false},
		{"/busy", "", true, true},
		{"/limited", "", true, true},
		{"/missing", "", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			body, err := Fetch(context.Background(), srv.Client(), srv.URL+tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Fetch() error = %v, wantErr %v", err, tt.wantErr)
			}
			if string(body) != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if err != nil && isRetryable(err) != tt.retryable {
				t.Errorf("retryable = %v, want %v", isRetryable(err), tt.retryable)
			}
			var serr *StatusError
			if err != nil && !errors.As(err, &serr) {
				t.Errorf("error %v is not a StatusError", err)
			}
		})
	}
}

func TestFetchNetworkErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := Fetch(context.Background(), nil, url)
	if err == nil || !isRetryable(err) {
		t.Errorf("error = %v, want retryable", err)
	}
}

func TestFetchCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := Fetch(ctx, srv.Client(), srv.URL)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	// Success on first try
	var calls atomic.Int32
	err := Retry(ctx, 3, time.Millisecond, func() error {
		calls.Add(1)
		return nil
	})
	if err != nil || calls.Load() != 1 {
		t.Errorf("err=%v calls=%d", err, calls.Load())
	}

	// Non-retryable error stops immediately
	calls.Store(0)
	plain := errors.New("bad request")
	err = Retry(ctx, 3, time.Millisecond, func() error {
		calls.Add(1)
		return plain
	})
	if err != plain || calls.Load() != 1 {
		t.Errorf("err=%v calls=%d", err, calls.Load())
	}

	// Retryable error triggers retries until success
	calls.Store(0)
	err = Retry(ctx, 3, time.Millisecond, func() error {
		if calls.Add(1) < 3 {
			return &RetryableError{Err: errors.New("flaky")}
		}
		return nil
	})
	if err != nil || calls.Load() != 3 {
		t.Errorf("err=%v calls=%d", err, calls.Load())
	}

	// Exhausted attempts return the last error
	calls.Store(0)
	err = Retry(ctx, 2, time.Millisecond, func() error {
		calls.Add(1)
		return &RetryableError{Err: errors.New("down")}
	})
	if err == nil || calls.Load() != 2 {
		t.Errorf("err=%v calls=%d", err, calls.Load())
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error {
		return &RetryableError{Err: errors.New("down")}
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

// isRetryable reports whether err is marked as a [RetryableError].
func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
