package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/things/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.CollectAndCount(RequestDuration)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things/1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things/2", nil))

	assert.Equal(t, before+1, testutil.CollectAndCount(RequestDuration), "one series per route template")
}

func TestCounters(t *testing.T) {
	Submissions.WithLabelValues("insert", "stored").Inc()
	assert.Equal(t, float64(1), testutil.ToFloat64(Submissions.WithLabelValues("insert", "stored")))
}
