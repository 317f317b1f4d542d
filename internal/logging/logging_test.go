package logging

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesActivityFile(t *testing.T) {
	dir := t.TempDir()
	logs, err := New(Config{Dir: dir, Level: "info"})
	require.NoError(t, err)

	logs.Activity.Info("[LOCAL_SAVE_LOG] hello")
	logs.OutOfBand.Error("archive failed")
	require.NoError(t, logs.Close())

	data, err := os.ReadFile(logs.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[LOCAL_SAVE_LOG] hello")
	assert.NotContains(t, string(data), "archive failed")
}

func TestNew_AppendsAfterTruncate(t *testing.T) {
	dir := t.TempDir()
	logs, err := New(Config{Dir: dir})
	require.NoError(t, err)
	defer logs.Close()

	logs.Activity.Info("first line with some padding to make it long")
	require.NoError(t, os.Truncate(logs.Path, 0))
	logs.Activity.Info("second")

	data, err := os.ReadFile(logs.Path)
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(string(data), "\x00"), "no hole before the next write")
	assert.Contains(t, string(data), "second")
	assert.NotContains(t, string(data), "first line")
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(Config{Dir: t.TempDir(), Level: "loud"})
	require.Error(t, err)
}

func TestGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	logs, err := New(Config{Dir: dir})
	require.NoError(t, err)

	r := gin.New()
	r.Use(GinLogger(logs.Activity))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/missing", func(c *gin.Context) {
		c.Set(ErrorCodeKey, "NOT_FOUND")
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, logs.Close())

	data, err := os.ReadFile(logs.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"path":"/ping"`)
	assert.Contains(t, string(data), `"error_code":"NOT_FOUND"`)
}
