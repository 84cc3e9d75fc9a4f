package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	method, route, status string
}

type fakeHTTPRecorder struct {
	mu  sync.Mutex
	obs []observation
}

func (f *fakeHTTPRecorder) ObserveHTTPRequest(method, route, status string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obs = append(f.obs, observation{method, route, status})
}

func TestHTTPMetrics(t *testing.T) {
	rec := &fakeHTTPRecorder{}

	router := gin.New()
	router.Use(HTTPMetrics(rec))
	router.GET("/api/shipping/:reference", func(c *gin.Context) {
		c.String(http.StatusNotFound, "none")
	})

	for _, path := range []string{"/api/shipping/SHIP_1", "/nowhere"} {
		req := httptest.NewRequest("GET", path, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, rec.obs, 2)
	assert.Equal(t, observation{"GET", "/api/shipping/:reference", "404"}, rec.obs[0])
	assert.Equal(t, observation{"GET", "unmatched", "404"}, rec.obs[1])
}

func TestHTTPMetrics_NilRecorder(t *testing.T) {
	router := gin.New()
	router.Use(HTTPMetrics(nil))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
