package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ashidadhich33-source/PINAK-ERP-sub005/backup"
	"github.com/ashidadhich33-source/PINAK-ERP-sub005/config"
	"github.com/ashidadhich33-source/PINAK-ERP-sub005/database"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	adminToken   = "tok-admin"
	managerToken = "tok-manager"
	cashierToken = "tok-cashier"
)

func newTestServer(t *testing.T) (*Server, *gin.Engine, *database.Store) {
	t.Helper()

	logger := zerolog.New(io.Discard)
	store, err := database.Open(filepath.Join(t.TempDir(), "erp.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.SeedDemoData(context.Background()))

	backups, err := backup.NewService(backup.ServiceParams{
		Dir:        t.TempDir(),
		Store:      store,
		AppVersion: "test",
		Logger:     logger,
	})
	require.NoError(t, err)

	srv := NewServer(ServerParams{
		Store:   store,
		Backups: backups,
		Users: []config.User{
			{Name: "root", Token: adminToken, Role: config.RoleAdmin},
			{Name: "mgr", Token: managerToken, Role: config.RoleManager},
			{Name: "till", Token: cashierToken, Role: config.RoleCashier},
		},
		Version: "test",
		Logger:  logger,
	})
	t.Cleanup(srv.cancel)

	return srv, srv.routes(), store
}

func doRequest(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth_NoAuthRequired(t *testing.T) {
	_, r, _ := newTestServer(t)

	w := doRequest(r, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", decodeBody(t, w)["status"])
}
