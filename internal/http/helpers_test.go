package http_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"

	"github.com/tazhibayda/identity-service/internal/engine"
	api "github.com/tazhibayda/identity-service/internal/http"
	"github.com/tazhibayda/identity-service/internal/queue"
	"github.com/tazhibayda/identity-service/internal/repo"
)

type testEnv struct {
	Router *gin.Engine
	Store  *repo.Mem
}

type nopMailer struct{}

func (nopMailer) SendVerification(ctx context.Context, email, token string) error { return nil }

func newTestEnv(t *testing.T, rlPerMin int) *testEnv {
	t.Helper()

	store := repo.NewMem()
	eng := engine.New(store, nopMailer{}, queue.NewNoop(), engine.Config{
		AccessSecret:  "access-secret-test",
		RefreshSecret: "refresh-secret-test",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
		VerifyTTL:     24 * time.Hour,
	})

	mr := miniredis.RunT(t)
	rds := repo.NewRedis(mr.Addr())
	t.Cleanup(func() { _ = rds.Close() })

	h := api.NewHandler(eng, nil, rds, rlPerMin, false, nil)

	gin.SetMode(gin.TestMode)
	return &testEnv{Router: api.NewRouter(h), Store: store}
}

func (e *testEnv) do(method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	e.Router.ServeHTTP(w, req)
	return w
}
