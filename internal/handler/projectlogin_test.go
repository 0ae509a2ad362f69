package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b0ase/portal/internal/resputil"
)

func (e *testEnv) createProjectLogin(slug, password string) {
	e.t.Helper()
	w, _ := e.admin(http.MethodPost, "/project-logins", map[string]any{"project_slug": slug, "password": password})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
}

func (e *testEnv) verify(slug, password, email string) (int, string) {
	e.t.Helper()
	w, res := e.do(http.MethodPost, "/api/v1/project-logins/verify",
		map[string]any{"project_slug": slug, "password": password, "email": email}, "")
	return w.Code, res.Get("data.accessToken").String()
}

func (e *testEnv) accessCount(slug string) int64 {
	e.t.Helper()
	n, err := e.query.ProjectAccess.CountBySlug(context.Background(), slug)
	require.NoError(e.t, err)
	return n
}

func TestProjectLoginCreateAndDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.createProjectLogin("acme", "s3cret")

	w, res := env.admin(http.MethodPost, "/project-logins", map[string]any{"project_slug": "acme", "password": "other"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, int64(resputil.Duplicate), res.Get("code").Int())

	w, res = env.admin(http.MethodGet, "/project-logins", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, res.Get("data").Array(), 1)
	assert.Equal(t, "acme", res.Get("data.0.project_slug").String())
	assert.NotContains(t, w.Body.String(), "s3cret")
	assert.NotContains(t, w.Body.String(), "password_hash")
}

func TestVerifyProjectLogin(t *testing.T) {
	env := newTestEnv(t)
	env.createProjectLogin("acme", "s3cret")

	code, token := env.verify("acme", "s3cret", " Ann@X.com ")
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, token)
	assert.Equal(t, int64(1), env.accessCount("acme"))

	w, res := env.do(http.MethodGet, "/api/v1/project-session", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "acme", res.Get("data.project_slug").String())
	assert.Equal(t, "ann@x.com", res.Get("data.email").String())

	// a project token is not an admin token
	w, _ = env.do(http.MethodGet, "/api/v1/admin/client-requests", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyProjectLoginFailures(t *testing.T) {
	env := newTestEnv(t)
	env.createProjectLogin("acme", "s3cret")

	code, token := env.verify("acme", "wrong", "a@x.com")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Empty(t, token)

	code, _ = env.verify("nope", "s3cret", "a@x.com")
	assert.Equal(t, http.StatusNotFound, code)

	w, res := env.do(http.MethodPost, "/api/v1/project-logins/verify",
		map[string]any{"project_slug": "acme", "password": "s3cret"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email", res.Get("data.fields.0").String())

	assert.Zero(t, env.accessCount("acme"))

	w, _ = env.do(http.MethodGet, "/api/v1/project-session", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = env.do(http.MethodGet, "/api/v1/project-session", nil, env.adminToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProjectLoginUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	env.createProjectLogin("acme", "s3cret")

	w, _ := env.admin(http.MethodPut, "/project-logins", map[string]any{"project_slug": "acme", "password": "n3w"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	code, _ := env.verify("acme", "s3cret", "a@x.com")
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = env.verify("acme", "n3w", "a@x.com")
	assert.Equal(t, http.StatusOK, code)

	w, _ = env.admin(http.MethodPut, "/project-logins", map[string]any{"project_slug": "nope", "password": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = env.admin(http.MethodDelete, "/project-logins", map[string]any{"project_slug": "acme"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = env.admin(http.MethodDelete, "/project-logins", map[string]any{"project_slug": "acme"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	code, _ = env.verify("acme", "n3w", "a@x.com")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestListProjectAccess(t *testing.T) {
	env := newTestEnv(t)
	env.createProjectLogin("acme", "s3cret")
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		code, _ := env.verify("acme", "s3cret", email)
		require.Equal(t, http.StatusOK, code)
	}

	w, res := env.admin(http.MethodGet, "/project-logins/acme/access?page_size=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(3), res.Get("data.count").Int())
	assert.Len(t, res.Get("data.rows").Array(), 2)
}
