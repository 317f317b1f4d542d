package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"metadata-repository/internal/analysis"
	"metadata-repository/internal/archive"
	"metadata-repository/internal/auth"
	"metadata-repository/internal/database"
	"metadata-repository/internal/intake"
	"metadata-repository/internal/models"
	"metadata-repository/internal/rules"
)

var testDB *gorm.DB
var router *gin.Engine
var lake *memStore
var backup *MockBackup

// memStore keeps uploaded objects in memory.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memStore) Put(_ context.Context, key string, body io.Reader, _ archive.PutOptions) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memStore) Location(key string) string { return "mem://" + key }
func (m *memStore) Close() error               { return nil }

// MockBackup is a testify mock of LogBackup.
type MockBackup struct {
	mock.Mock
}

func (m *MockBackup) Run(ctx context.Context) (archive.BackupResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(archive.BackupResult), args.Error(1)
}

func newRouter(db *gorm.DB, store archive.ObjectStore, b LogBackup) *gin.Engine {
	set := rules.MustDefault()
	engine := analysis.New(set)
	api := NewAPI(
		engine,
		intake.NewService(db, zap.NewNop(), engine.Normalizer, engine.Classifier),
		archive.NewDatalake(store, engine.Normalizer, zap.NewNop()),
		auth.NewService(db, zap.NewNop()),
		b,
		zap.NewNop(),
	)
	r := gin.New()
	api.RegisterRoutes(r)
	return r
}

// TestMain sets up the test database and router, runs tests, and then tears down.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	var err error
	testDB, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.Migrate(testDB); err != nil {
		log.Fatalf("Failed to migrate test database schema: %v", err)
	}

	lake = &memStore{objects: map[string][]byte{}}
	backup = new(MockBackup)
	router = newRouter(testDB, lake, backup)

	exitCode := m.Run()

	sqlDB, err := testDB.DB()
	if err == nil {
		sqlDB.Close()
	} else {
		log.Printf("Error getting DB for teardown: %v", err)
	}
	os.Exit(exitCode)
}

func clearTables() {
	for _, table := range []string{"datasets", "users", "app_logs"} {
		if err := testDB.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("Failed to clear %s table: %v", table, err)
		}
	}
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRoot(t *testing.T) {
	w := doJSON(router, "GET", "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Running")
}

func TestNoRoute(t *testing.T) {
	w := doJSON(router, "GET", "/api/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var apiErr models.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, models.ErrorCodeNotFound, apiErr.Code)
}

func TestVocabulary(t *testing.T) {
	w := doJSON(router, "GET", "/api/v1/vocabulary", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.VocabularyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Fields, 28)
	assert.Equal(t, "submitterAgency", resp.Fields[0])
	require.Len(t, resp.Domains, 21)
	assert.Equal(t, "Agriculture", resp.Domains[0])
	assert.Equal(t, "Other", resp.Domains[20])
}

func TestHealth(t *testing.T) {
	w := doJSON(router, "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","database":true,"datalake":true}`, w.Body.String())

	offline := newRouter(nil, nil, new(MockBackup))
	w = doJSON(offline, "GET", "/healthz", "")
	assert.JSONEq(t, `{"status":"ok","database":false,"datalake":false}`, w.Body.String())
}

func TestSaveMetadata(t *testing.T) {
	clearTables()

	w := doJSON(router, "POST", "/api/v1/metadata", `{"title":"Factories","agency":"DIW","domain":"อุตสาหกรรม","datasetId":"ds-9"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.SaveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Persisted)
	assert.Equal(t, "Industry", resp.Domain)
	assert.Equal(t, []string{"datasetId"}, resp.Unknown)
	_, err := uuid.Parse(resp.ID)
	assert.NoError(t, err)

	w = doJSON(router, "POST", "/api/v1/metadata", `{"action":"update","datasetId":"ds-9","description":"updated"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var upd models.SaveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &upd))
	assert.Equal(t, resp.ID, upd.ID)
	assert.Equal(t, intake.ActionUpdate, upd.Action)
	assert.Contains(t, upd.Message, "Updated")

	var count int64
	testDB.Model(&models.Dataset{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSaveMetadata_InvalidJSON(t *testing.T) {
	for _, body := range []string{`{"title":`, `[1,2]`, `"text"`} {
		w := doJSON(router, "POST", "/api/v1/metadata", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		var apiErr models.APIError
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
		assert.Equal(t, models.ErrorCodeInvalidJSON, apiErr.Code)
	}
}

func TestSaveMetadata_Offline(t *testing.T) {
	offline := newRouter(nil, nil, new(MockBackup))
	w := doJSON(offline, "POST", "/api/v1/metadata", `{"title":"x"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.SaveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Persisted)
	assert.Regexp(t, `^local-\d+$`, resp.ID)
	assert.Contains(t, resp.Message, "offline")
}

func TestListDatasets(t *testing.T) {
	clearTables()
	for _, body := range []string{
		`{"title":"Test Doc 1","domain":"Industry"}`,
		`{"title":"Test Doc 2","domain":"อุตสาหกรรม"}`,
		`{"title":"Test Doc 3","domain":"enviromnment"}`,
		`{"title":"Test Doc 4","businessDomain":"enviromnment"}`,
		`{"title":"Test Doc 5","keywords":"enviromnment"}`,
	} {
		require.Equal(t, http.StatusOK, doJSON(router, "POST", "/api/v1/metadata", body).Code)
	}

	tests := []struct {
		query     string
		wantTotal int
		wantLen   int
	}{
		{query: "", wantTotal: 5, wantLen: 5},
		{query: "?domain=all&limit=2", wantTotal: 5, wantLen: 2},
		{query: "?domain=Industry", wantTotal: 2, wantLen: 2},
		{query: "?domain=Environment", wantTotal: 3, wantLen: 3},
		{query: "?domain=Environment&q=doc%205", wantTotal: 1, wantLen: 1},
		{query: "?domain=Health", wantTotal: 0, wantLen: 0},
		{query: "?limit=500&offset=-3", wantTotal: 5, wantLen: 5},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			w := doJSON(router, "GET", "/api/v1/datasets"+tc.query, "")
			require.Equal(t, http.StatusOK, w.Code)
			var resp struct {
				Data  []map[string]interface{} `json:"data"`
				Total int                      `json:"total"`
				Limit int                      `json:"limit"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantTotal, resp.Total)
			assert.Len(t, resp.Data, tc.wantLen)
			assert.LessOrEqual(t, resp.Limit, MaxLimit)
		})
	}
}

func TestListDatasets_BadPagination(t *testing.T) {
	w := doJSON(router, "GET", "/api/v1/datasets?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(router, "GET", "/api/v1/datasets?offset=x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListDatasets_Offline(t *testing.T) {
	offline := newRouter(nil, nil, new(MockBackup))
	w := doJSON(offline, "GET", "/api/v1/datasets", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetDataset(t *testing.T) {
	clearTables()
	w := doJSON(router, "POST", "/api/v1/metadata", `{"title":"Air","desc":"PM2.5"}`)
	var saved models.SaveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))

	w = doJSON(router, "GET", "/api/v1/datasets/"+saved.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":{"title":"Air","desc":"PM2.5"}`)

	w = doJSON(router, "GET", fmt.Sprintf("/api/v1/datasets/%s", uuid.New()), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, "GET", "/api/v1/datasets/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveDatalake(t *testing.T) {
	w := doJSON(router, "POST", "/api/v1/datalake", `{"domain":"Energy","title":"Solar","action":"create"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.DatalakeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Regexp(t, `^raw/Energy/Solar_\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}-\d{3}Z\.json$`, resp.Key)

	lake.mu.Lock()
	body := lake.objects[resp.Key]
	lake.mu.Unlock()
	assert.JSONEq(t, `{"domain":"Energy","title":"Solar","action":"create"}`, string(body))

	offline := newRouter(nil, nil, new(MockBackup))
	w = doJSON(offline, "POST", "/api/v1/datalake", `{"title":"x"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAnalyze(t *testing.T) {
	body := `{"result":"success","data":{"title":"ระบบทะเบียนโรงงาน","source":"กพร. -> ระบบขึ้นทะเบียน -> ไฟล์ Excel",
		"dictionary":[{"variable":"OWN_NAME","description":"ชื่อเจ้าของ","type":"String"},{"variable":"password"}]}}`
	w := doJSON(router, "POST", "/api/v1/analyze", body)
	require.Equal(t, http.StatusOK, w.Code)

	var rep struct {
		Privacy struct {
			Findings []struct {
				Field string `json:"field"`
				Level string `json:"level"`
			} `json:"findings"`
			Rules []interface{} `json:"complianceRules"`
		} `json:"privacy"`
		Lineage []struct {
			Label  string `json:"label"`
			Target bool   `json:"target"`
		} `json:"lineage"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	require.Len(t, rep.Privacy.Findings, 2)
	assert.Equal(t, "PII", rep.Privacy.Findings[0].Level)
	assert.Equal(t, "SPII", rep.Privacy.Findings[1].Level)
	assert.Len(t, rep.Privacy.Rules, 2)
	require.Len(t, rep.Lineage, 4)
	assert.Equal(t, "ระบบทะเบียนโรงงาน", rep.Lineage[3].Label)
	assert.True(t, rep.Lineage[3].Target)
}

func TestAuthFlow(t *testing.T) {
	clearTables()

	w := doJSON(router, "POST", "/api/v1/auth/register", `{"email":"user@agency.go.th","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "secret123")
	assert.NotContains(t, w.Body.String(), "password")

	w = doJSON(router, "POST", "/api/v1/auth/register", `{"email":"user@agency.go.th","password":"secret123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "POST", "/api/v1/auth/login", `{"email":"user@agency.go.th","password":"wrong-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, "POST", "/api/v1/auth/login", `{"email":"user@agency.go.th","password":"secret123"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user@agency.go.th")

	var logs []models.AppLog
	testDB.Find(&logs)
	require.Len(t, logs, 1)
	assert.Equal(t, auth.ActionLogin, logs[0].Action)

	w = doJSON(router, "POST", "/api/v1/auth/login", `{"email":"user@agency.go.th"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuth_Offline(t *testing.T) {
	offline := newRouter(nil, nil, new(MockBackup))
	w := doJSON(offline, "POST", "/api/v1/auth/login", `{"email":"a@b.co","password":"secret123"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = doJSON(offline, "POST", "/api/v1/auth/register", `{"email":"a@b.co","password":"secret123"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestActivity(t *testing.T) {
	clearTables()
	w := doJSON(router, "POST", "/api/v1/activity", `{"email":"a@b.co","action":"Export CSV"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","persisted":true}`, w.Body.String())

	w = doJSON(router, "POST", "/api/v1/activity", `{"email":"a@b.co"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	offline := newRouter(nil, nil, new(MockBackup))
	w = doJSON(offline, "POST", "/api/v1/activity", `{"email":"a@b.co","action":"View"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","persisted":false}`, w.Body.String())
}

func TestListActivity(t *testing.T) {
	clearTables()
	for _, action := range []string{"View", "Export CSV", "Logout"} {
		body := fmt.Sprintf(`{"email":"A@B.co","action":%q}`, action)
		require.Equal(t, http.StatusOK, doJSON(router, "POST", "/api/v1/activity", body).Code)
	}
	require.Equal(t, http.StatusOK, doJSON(router, "POST", "/api/v1/activity", `{"email":"other@b.co","action":"View"}`).Code)

	w := doJSON(router, "GET", "/api/v1/activity?email=a@b.co", "")
	require.Equal(t, http.StatusOK, w.Code)
	var rows []models.AppLog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, "a@b.co", r.Email)
	}

	w = doJSON(router, "GET", "/api/v1/activity?email=a@b.co&limit=2", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Len(t, rows, 2)

	w = doJSON(router, "GET", "/api/v1/activity", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	offline := newRouter(nil, nil, new(MockBackup))
	w = doJSON(offline, "GET", "/api/v1/activity?email=a@b.co", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestBackupLogs(t *testing.T) {
	tests := []struct {
		name       string
		result     archive.BackupResult
		err        error
		wantStatus string
	}{
		{name: "Uploaded", result: archive.BackupResult{Key: "operation_logs/x_app_activity.log", Bytes: 42}, wantStatus: "success"},
		{name: "Nothing to do", result: archive.BackupResult{Skipped: true}, wantStatus: "skipped"},
		{name: "Not configured", result: archive.BackupResult{Skipped: true}, err: archive.ErrNotConfigured, wantStatus: "skipped"},
		{name: "Failure", err: errors.New("boom"), wantStatus: "error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := new(MockBackup)
			b.On("Run", mock.Anything).Return(tc.result, tc.err).Once()
			r := newRouter(testDB, lake, b)

			w := doJSON(r, "GET", "/api/v1/logs/backup", "")
			require.Equal(t, http.StatusOK, w.Code)
			var resp models.BackupResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantStatus, resp.Status)
			assert.Equal(t, tc.result.Key, resp.Key)
			b.AssertExpectations(t)
		})
	}
}
