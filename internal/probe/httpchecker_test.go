package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPChecker_StatusOK(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("want GET, got %s", r.Method)
		}
		w.WriteHeader(200)
		w.Write([]byte("ok"))
	}))
	defer s.Close()

	chk := NewHTTPChecker(2*time.Second, "")
	out := chk.Check(context.Background(), s.URL)
	if !out.Success {
		t.Fatalf("want success, got %+v", out)
	}
	if out.StatusCode != 200 {
		t.Fatalf("want status 200, got %d", out.StatusCode)
	}
	if !strings.HasPrefix(out.Message, "200") {
		t.Fatalf("want message to start with 200, got %q", out.Message)
	}
	if out.LatencyMS < 0 {
		t.Fatalf("latency should be >= 0, got %f", out.LatencyMS)
	}
}

func TestHTTPChecker_Non200IsDown(t *testing.T) {
	for _, code := range []int{204, 301, 404, 500} {
		s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if code == 301 {
				w.Header().Set("Location", "/elsewhere-that-loops")
			}
			w.WriteHeader(code)
		}))
		chk := NewHTTPChecker(2*time.Second, "")
		out := chk.Check(context.Background(), s.URL)
		s.Close()
		if out.Success {
			t.Fatalf("status %d: want failure, got %+v", code, out)
		}
		if out.StatusCode != code {
			t.Fatalf("want status %d, got %d", code, out.StatusCode)
		}
	}
}

func TestHTTPChecker_RedirectToHealthyPageIsDown(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer healthy.Close()
	redirect := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, healthy.URL, http.StatusFound)
	}))
	defer redirect.Close()

	out := NewHTTPChecker(2*time.Second, "").Check(context.Background(), redirect.URL)
	if out.Success {
		t.Fatalf("redirect must not count as alive, got %+v", out)
	}
	if out.StatusCode != http.StatusFound {
		t.Fatalf("want status 302, got %d", out.StatusCode)
	}
}

func TestHTTPChecker_TimeoutSetsStatusZero(t *testing.T) {
	// Server sleeps longer than client timeout
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer s.Close()

	chk := NewHTTPChecker(50*time.Millisecond, "")
	out := chk.Check(context.Background(), s.URL)
	if out.Success {
		t.Fatalf("want failure due to timeout, got %+v", out)
	}
	if out.StatusCode != 0 {
		t.Fatalf("want status 0 on transport error, got %d", out.StatusCode)
	}
	if out.Message == "" {
		t.Fatalf("want non-empty error message")
	}
}

func TestHTTPChecker_ConnectionRefused(t *testing.T) {
	s := httptest.NewServer(http.NotFoundHandler())
	addr := s.URL
	s.Close()

	out := NewHTTPChecker(time.Second, "").Check(context.Background(), addr)
	if out.Success || out.StatusCode != 0 {
		t.Fatalf("want transport failure, got %+v", out)
	}
}

func TestHTTPChecker_SetsUserAgent(t *testing.T) {
	got := make(chan string, 1)
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.UserAgent()
	}))
	defer s.Close()

	NewHTTPChecker(time.Second, "renderwatch/test").Check(context.Background(), s.URL)
	if ua := <-got; ua != "renderwatch/test" {
		t.Fatalf("want custom user agent, got %q", ua)
	}
}
