package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/b0ase/portal/dao/dbtest"
	"github.com/b0ase/portal/dao/model"
	"github.com/b0ase/portal/dao/query"
	"github.com/b0ase/portal/internal"
	"github.com/b0ase/portal/internal/handler"
	"github.com/b0ase/portal/internal/util"
	"github.com/b0ase/portal/pkg/config"
	"github.com/b0ase/portal/pkg/scraper"
)

const (
	adminEmail    = "admin@b0ase.com"
	adminPassword = "admin-pass"
)

// adminHash is computed once per test binary.
var adminHash = func() string {
	h, err := util.HashPassword(adminPassword)
	if err != nil {
		panic(err)
	}
	return h
}()

func init() {
	gin.SetMode(gin.TestMode)
	util.RegisterValidators()
}

type fakeAlert struct {
	mu       sync.Mutex
	approved []string
	invited  map[string]string
	owner    []string
	err      error
}

func (f *fakeAlert) ClientApproved(_ context.Context, req *model.ClientRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approved = append(f.approved, req.Email)
	return f.err
}

func (f *fakeAlert) ClientInvited(_ context.Context, email, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invited == nil {
		f.invited = map[string]string{}
	}
	f.invited[email] = link
	return f.err
}

func (f *fakeAlert) NewClientRequest(_ context.Context, req *model.ClientRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owner = append(f.owner, req.Email)
	return nil
}

func (f *fakeAlert) PendingDigest(context.Context, []*model.ClientRequest, int64) error {
	return nil
}

func (f *fakeAlert) approvedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.approved)
}

func (f *fakeAlert) ownerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.owner)
}

type fakeScraper struct {
	gig   *scraper.Gig
	err   error
	calls []string
}

func (f *fakeScraper) Scrape(_ context.Context, targetURL string) (*scraper.Gig, error) {
	f.calls = append(f.calls, targetURL)
	return f.gig, f.err
}

type testEnv struct {
	t          *testing.T
	engine     *gin.Engine
	query      *query.Query
	alert      *fakeAlert
	scraper    *fakeScraper
	tokenMgr   *util.TokenManager
	cfg        *config.Config
	adminToken string
}

func newTestEnv(t *testing.T, mutate ...func(cfg *config.Config)) *testEnv {
	t.Helper()
	cfg := config.Default()
	cfg.Auth.AdminEmail = adminEmail
	cfg.Auth.TokenSecret = "test-secret"
	for _, m := range mutate {
		m(cfg)
	}

	env := &testEnv{
		t:        t,
		query:    query.Use(dbtest.Open(t)),
		alert:    &fakeAlert{},
		scraper:  &fakeScraper{},
		tokenMgr: util.NewTokenManager(config.NewTokenConf(cfg)),
		cfg:      cfg,
	}
	env.engine = internal.Register(&handler.RegisterConfig{
		Query:             env.query,
		Alert:             env.alert,
		Scraper:           env.scraper,
		TokenMgr:          env.tokenMgr,
		Config:            cfg,
		AdminPasswordHash: adminHash,
	})

	token, _, err := env.tokenMgr.CreateAdminToken(adminEmail)
	require.NoError(t, err)
	env.adminToken = token
	return env
}

// do sends body as JSON (a string is sent verbatim) and returns the recorder and parsed body.
func (e *testEnv) do(method, path string, body any, token string) (*httptest.ResponseRecorder, gjson.Result) {
	e.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(e.t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w, gjson.Parse(w.Body.String())
}

func (e *testEnv) admin(method, path string, body any) (*httptest.ResponseRecorder, gjson.Result) {
	e.t.Helper()
	return e.do(method, "/api/v1/admin"+path, body, e.adminToken)
}

// submit posts a valid intake form and returns the new request id.
func (e *testEnv) submit(name, email string) string {
	e.t.Helper()
	w, res := e.do(http.MethodPost, "/api/v1/client-requests",
		map[string]any{"name": name, "email": email, "project_brief": "site"}, "")
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	return res.Get("data.id").String()
}

func (e *testEnv) countRequests() int64 {
	e.t.Helper()
	_, count, err := e.query.ClientRequest.List(context.Background(), "", query.Page{})
	require.NoError(e.t, err)
	return count
}

func (e *testEnv) countClients() int64 {
	e.t.Helper()
	_, count, err := e.query.Client.List(context.Background(), query.Page{})
	require.NoError(e.t, err)
	return count
}
