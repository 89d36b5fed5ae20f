package router

import (
	"testing"

	"github.com/SarthakJain2/monitord/internal/httpx"
)

func TestPathParamMatch(t *testing.T) {
	r := New()
	r.Register(httpx.GET, "/users/:id", func(req *httpx.Request) *httpx.Response {
		return httpx.OK(req.PathParams["id"])
	})

	req := &httpx.Request{Method: httpx.GET, Path: "/users/123", PathParams: map[string]string{}}
	resp := r.Dispatch(req)

	if resp.Status != httpx.StatusOK {
		t.Fatalf("status = %v, want 200", resp.Status)
	}
	if string(resp.Body) != "123" {
		t.Fatalf("body = %q, want 123", resp.Body)
	}
	if req.PathParams["id"] != "123" {
		t.Fatalf("path param id = %q", req.PathParams["id"])
	}
}

func TestNoMatchingRouteIs404(t *testing.T) {
	r := New()
	req := &httpx.Request{Method: httpx.GET, Path: "/nope"}
	resp := r.Dispatch(req)
	if resp.Status != httpx.StatusNotFound {
		t.Fatalf("status = %v, want 404", resp.Status)
	}
	if string(resp.Body) != "Route not found" {
		t.Fatalf("body = %q", resp.Body)
	}
}

func TestMethodMismatchIs404NotMethodNotAllowed(t *testing.T) {
	r := New()
	r.Register(httpx.GET, "/x", func(req *httpx.Request) *httpx.Response { return httpx.OK("got") })

	req := &httpx.Request{Method: httpx.POST, Path: "/x"}
	resp := r.Dispatch(req)
	if resp.Status != httpx.StatusNotFound {
		t.Fatalf("status = %v, want 404 on method mismatch", resp.Status)
	}
}

func TestFirstMatchWins(t *testing.T) {
	r := New()
	r.Register(httpx.GET, "/x", func(req *httpx.Request) *httpx.Response { return httpx.OK("first") })
	r.Register(httpx.GET, "/x", func(req *httpx.Request) *httpx.Response { return httpx.OK("second") })

	resp := r.Dispatch(&httpx.Request{Method: httpx.GET, Path: "/x"})
	if string(resp.Body) != "first" {
		t.Fatalf("body = %q, want first", resp.Body)
	}
}

func TestRootPatternMatchesOnlyRoot(t *testing.T) {
	r := New()
	r.Register(httpx.GET, "/", func(req *httpx.Request) *httpx.Response { return httpx.OK("root") })

	if resp := r.Dispatch(&httpx.Request{Method: httpx.GET, Path: "/"}); resp.Status != httpx.StatusOK {
		t.Fatalf("root should match, got %v", resp.Status)
	}
	if resp := r.Dispatch(&httpx.Request{Method: httpx.GET, Path: "/x"}); resp.Status != httpx.StatusNotFound {
		t.Fatalf("/x should not match root pattern, got %v", resp.Status)
	}
}

func TestWildcardMatchesRemainder(t *testing.T) {
	r := New()
	r.Register(httpx.GET, "/static/*", func(req *httpx.Request) *httpx.Response {
		return httpx.OK(req.PathParams["*"])
	})

	resp := r.Dispatch(&httpx.Request{Method: httpx.GET, Path: "/static/css/app.css", PathParams: map[string]string{}})
	if resp.Status != httpx.StatusOK {
		t.Fatalf("status = %v, want 200", resp.Status)
	}
	if string(resp.Body) != "css/app.css" {
		t.Fatalf("body = %q, want css/app.css", resp.Body)
	}
}
