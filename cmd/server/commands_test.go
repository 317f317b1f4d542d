package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	dataset := `{"name":"Air Quality","agency":"PCD","domain":"enviromnment","source":"sensor -> hourly feed",
		"dictionary":[{"variable":"station_id"},{"variable":"phone","description":"contact"}]}`
	require.NoError(t, os.WriteFile(path, []byte(dataset), 0o600))

	var out bytes.Buffer
	analyzeCmd.SetOut(&out)
	defer analyzeCmd.SetOut(nil)
	require.NoError(t, runAnalyze(analyzeCmd, []string{path}))

	var report struct {
		Domain    string            `json:"domain"`
		Canonical map[string]string `json:"canonical"`
		Privacy   struct {
			PII int `json:"piiCount"`
		} `json:"privacy"`
		Lineage []map[string]interface{} `json:"lineage"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, "Environment", report.Domain)
	assert.Equal(t, "Air Quality", report.Canonical["title"])
	assert.Equal(t, "PCD", report.Canonical["submitterAgency"])
	assert.Equal(t, 1, report.Privacy.PII)
	assert.Len(t, report.Lineage, 3)
}

func TestAnalyzeCommand_Stdin(t *testing.T) {
	var out bytes.Buffer
	analyzeCmd.SetOut(&out)
	analyzeCmd.SetIn(strings.NewReader(`{"title":"x"}`))
	defer analyzeCmd.SetOut(nil)
	defer analyzeCmd.SetIn(nil)

	require.NoError(t, runAnalyze(analyzeCmd, []string{"-"}))
	assert.Contains(t, out.String(), `"lineage": []`)
}

func TestAnalyzeCommand_Errors(t *testing.T) {
	err := runAnalyze(analyzeCmd, []string{filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1]`), 0o600))
	err = runAnalyze(analyzeCmd, []string{path})
	assert.ErrorContains(t, err, "parse dataset")
}

func TestCORSConfig(t *testing.T) {
	cfg := corsConfig([]string{"https://a.example", "*"})
	assert.True(t, cfg.AllowAllOrigins)
	assert.Empty(t, cfg.AllowOrigins)

	cfg = corsConfig([]string{"https://a.example"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"https://a.example"}, cfg.AllowOrigins)
	assert.NoError(t, cfg.Validate())
}
