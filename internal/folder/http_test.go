package folder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abduss/docstore/internal/auth"
	"github.com/abduss/docstore/internal/config"
	"github.com/abduss/docstore/internal/logger"
	"github.com/abduss/docstore/internal/objectstore"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newFolderRouter(store objectstore.Gateway) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router.Group("/v1"), newTestService(store, testConfig()))
	return router
}

func TestHTTPBackupFolder(t *testing.T) {
	mem := objectstore.NewMemory("docs", 0)
	seed(t, mem, "licenses/LIC-1/a.pdf", "a")
	router := newFolderRouter(mem)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/folders/LIC-1/backup", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var backup Backup
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &backup))
	assert.Equal(t, "backups/licenses/"+backupStamp+"/LIC-1/", backup.DestPrefix)
	assert.Equal(t, []string{"licenses/LIC-1/a.pdf"}, backup.CopiedKeys)
}

func TestHTTPDeleteFolderBacksUpFirst(t *testing.T) {
	mem := objectstore.NewMemory("docs", 0)
	seed(t, mem, "licenses/LIC-1/a.pdf", "a")
	router := newFolderRouter(mem)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/folders/LIC-1", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Backup Backup `json:"backup"`
		Purge  Purge  `json:"purge"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{"licenses/LIC-1/a.pdf"}, resp.Purge.DeletedKeys)
	assert.Equal(t, "a", read(t, mem, resp.Backup.DestPrefix+"a.pdf"))
}

func TestHTTPDeleteFolderWithoutBackup(t *testing.T) {
	mem := objectstore.NewMemory("docs", 0)
	seed(t, mem, "licenses/LIC-1/a.pdf", "a")
	router := newFolderRouter(mem)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/folders/LIC-1?backup=false", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	keys, err := objectstore.Keys(context.Background(), mem, "backups/", 0)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestHTTPDeleteFolderReportsPartialBackup(t *testing.T) {
	mem := objectstore.NewMemory("docs", 0)
	store := newRecordingStore(mem)
	store.failCopy = "licenses/LIC-1/b.pdf"
	seed(t, mem, "licenses/LIC-1/a.pdf", "a")
	seed(t, mem, "licenses/LIC-1/b.pdf", "b")
	router := newFolderRouter(store)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/folders/LIC-1", nil))
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp struct {
		FailedKey string `json:"failed_key"`
		Backup    Backup `json:"backup"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "licenses/LIC-1/b.pdf", resp.FailedKey)
	assert.Equal(t, []string{"licenses/LIC-1/a.pdf"}, resp.Backup.CopiedKeys)
	assert.Zero(t, store.batchDeletes)
}

func TestHTTPDeleteFolderRejectsBadFlag(t *testing.T) {
	router := newFolderRouter(objectstore.NewMemory("docs", 0))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/folders/LIC-1?backup=maybe", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHTTPFolderFailureLogsCallerAndCorrelationID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	undo := zap.ReplaceGlobals(zap.New(core))
	defer undo()

	authService, err := auth.NewService(config.AuthConfig{ServiceTokenSecret: "s", ServiceTokenTTL: time.Hour})
	require.NoError(t, err)
	token, _, err := authService.IssueToken("license-service")
	require.NoError(t, err)

	mem := objectstore.NewMemory("docs", 0)
	store := newRecordingStore(mem)
	store.failCopy = "licenses/LIC-1/a.pdf"
	seed(t, mem, "licenses/LIC-1/a.pdf", "a")

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(logger.Middleware())
	api := router.Group("/v1")
	api.Use(auth.AuthMiddleware(authService))
	RegisterRoutes(api, newTestService(store, testConfig()))

	req := httptest.NewRequest(http.MethodDelete, "/v1/folders/LIC-1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(logger.CorrelationIDHeader, "req-7")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	failures := logs.FilterMessage("folder request failed").All()
	require.Len(t, failures, 1)
	fields := failures[0].ContextMap()
	assert.Equal(t, "req-7", fields["correlation_id"])
	assert.Equal(t, "license-service", fields["service"])
	assert.Equal(t, "LIC-1", fields["owner_id"])
	assert.Equal(t, "licenses/LIC-1/a.pdf", fields["failed_key"])
}

func TestHTTPDeleteWithoutBackupIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	undo := zap.ReplaceGlobals(zap.New(core))
	defer undo()

	mem := objectstore.NewMemory("docs", 0)
	seed(t, mem, "licenses/LIC-1/a.pdf", "a")
	router := newFolderRouter(mem)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/folders/LIC-1?backup=false", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, 1, logs.FilterMessage("deleting folder without backup").Len())
}
