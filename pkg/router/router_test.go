package router

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_AccessLog(t *testing.T) {
	var buf bytes.Buffer
	r := New(nil, WithAccessLog(&buf))
	r.GET("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	line := buf.String()
	assert.Contains(t, line, "GET")
	assert.Contains(t, line, "/ping")
	assert.Contains(t, line, colorYellow+"418")
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	r := New(nil, WithAccessLog(nil))
	r.POST("/items", func(w http.ResponseWriter, _ *http.Request) {})

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouter_Routes(t *testing.T) {
	r := New(nil, WithAccessLog(nil))
	r.GET("/a", func(http.ResponseWriter, *http.Request) {})
	r.DELETE("/b/{id}", func(http.ResponseWriter, *http.Request) {})

	assert.ElementsMatch(t, []string{"GET /a", "DELETE /b/{id}"}, r.Routes())
}

func TestRouter_StartStopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	r := New(nil, WithAccessLog(nil))
	r.GET("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStatusColor(t *testing.T) {
	assert.Equal(t, colorGreen, statusColor(200))
	assert.Equal(t, colorCyan, statusColor(304))
	assert.Equal(t, colorYellow, statusColor(404))
	assert.Equal(t, colorRed, statusColor(500))
	assert.Equal(t, colorBlue, methodColor(http.MethodPost))
}
