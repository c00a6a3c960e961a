package middleware

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
)

func tracingMiddleware(name string, trace *[]string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*trace = append(*trace, name+" in")
			next.ServeHTTP(w, r)
			*trace = append(*trace, name+" out")
		})
	}
}

func TestChain_FirstArgumentIsOutermost(t *testing.T) {
	var trace []string

	handler := Chain(
		tracingMiddleware("outer", &trace),
		tracingMiddleware("inner", &trace),
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trace = append(trace, "handler")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/search", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	want := []string{"outer in", "inner in", "handler", "inner out", "outer out"}
	if !slices.Equal(trace, want) {
		t.Errorf("execution order = %v, want %v", trace, want)
	}
}

func TestChain_NoMiddleware(t *testing.T) {
	called := false
	handler := Chain()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/search", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatal("handler was not reached")
	}
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
}
