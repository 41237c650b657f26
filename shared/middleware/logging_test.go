package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	router := gin.New()
	router.Use(Recovery(log), LoggingMiddleware(log))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/panic", func(c *gin.Context) { panic("boom") })
	return router
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		requestID      string
		expectedStatus int
	}{
		{name: "generates a request id", path: "/ok", expectedStatus: http.StatusNoContent},
		{name: "echoes the caller's request id", path: "/ok", requestID: "req-42", expectedStatus: http.StatusNoContent},
		{name: "recovers from a panic", path: "/panic", requestID: "req-43", expectedStatus: http.StatusInternalServerError},
	}

	router := newTestRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, tt.path, nil)
			if tt.requestID != "" {
				req.Header.Set(RequestIDHeader, tt.requestID)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			got := w.Header().Get(RequestIDHeader)
			if tt.requestID != "" && got != tt.requestID {
				t.Fatalf("expected request id %q, got %q", tt.requestID, got)
			}
			if tt.requestID == "" && got == "" {
				t.Fatal("expected a generated request id")
			}
		})
	}
}
