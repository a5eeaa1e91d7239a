package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	httpmod "github.com/NamanBalaji/modsync/pkg/http"
)

func TestGet(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "modsync-test" {
			http.Error(w, "bad agent "+ua, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Length", "5")
		w.Write([]byte("hello"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/flaky", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "try later", http.StatusServiceUnavailable)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := httpmod.NewClient(httpmod.WithUserAgent("modsync-test"))

	t.Run("success streams body", func(t *testing.T) {
		resp, err := client.Get(context.Background(), ts.URL+"/ok")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		defer resp.Body.Close()

		if resp.ContentLength != 5 {
			t.Errorf("ContentLength = %d; want 5", resp.ContentLength)
		}
		body, _ := io.ReadAll(resp.Body)
		if string(body) != "hello" {
			t.Errorf("body = %q; want %q", body, "hello")
		}
	})

	t.Run("404 is classified", func(t *testing.T) {
		_, err := client.Get(context.Background(), ts.URL+"/missing")
		if !errors.Is(err, httpmod.ErrResourceNotFound) {
			t.Errorf("Get() error = %v; want ErrResourceNotFound", err)
		}
		if httpmod.StatusCode(err) != http.StatusNotFound {
			t.Errorf("StatusCode = %d; want 404", httpmod.StatusCode(err))
		}
		if httpmod.IsRetryable(err) {
			t.Error("404 must not be retryable")
		}
	})

	t.Run("503 is retryable", func(t *testing.T) {
		_, err := client.Get(context.Background(), ts.URL+"/flaky")
		if !httpmod.IsRetryable(err) {
			t.Errorf("Get() error = %v; want retryable", err)
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := client.Get(context.Background(), "://bad")
		if !errors.Is(err, httpmod.ErrRequestCreation) {
			t.Errorf("Get() error = %v; want ErrRequestCreation", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := client.Get(ctx, ts.URL+"/ok")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Get() error = %v; want context.Canceled", err)
		}
	})
}

func TestDefaultUserAgent(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer ts.Close()

	resp, err := httpmod.NewClient().Get(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()

	if got != httpmod.DefaultUserAgent {
		t.Errorf("User-Agent = %q; want %q", got, httpmod.DefaultUserAgent)
	}
}
