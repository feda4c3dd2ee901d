package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"
)

type RouterSuite struct {
	suite.Suite
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) status(h http.Handler, method, path string) int {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec.Code
}

func (s *RouterSuite) TestMountUnderPrefix() {
	r := NewChi()
	r.Mount("/hooks/", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	r.Get("/health", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	s.Equal(http.StatusTeapot, s.status(r.Mux(), http.MethodPost, "/hooks"))
	s.Equal(http.StatusTeapot, s.status(r.Mux(), http.MethodPut, "/hooks/orders/created"))
	s.Equal(http.StatusOK, s.status(r.Mux(), http.MethodGet, "/health"))
	s.Equal(http.StatusNotFound, s.status(r.Mux(), http.MethodPost, "/elsewhere"))
}

func (s *RouterSuite) TestMountAtRootKeepsExplicitRoutes() {
	r := NewChi()
	r.Get("/metrics", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	r.Mount("/", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	s.Equal(http.StatusOK, s.status(r.Mux(), http.MethodGet, "/metrics"))
	s.Equal(http.StatusAccepted, s.status(r.Mux(), http.MethodPost, "/anything/here"))
	s.Equal(http.StatusAccepted, s.status(r.Mux(), http.MethodPost, "/"))
}
