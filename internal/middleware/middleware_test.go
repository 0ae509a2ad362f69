package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/b0ase/portal/internal/resputil"
	"github.com/b0ase/portal/internal/util"
	"github.com/b0ase/portal/pkg/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokenMgr() *util.TokenManager {
	return util.NewTokenManager(&config.TokenConf{
		AdminTokenTTL:   time.Hour,
		ProjectTokenTTL: time.Hour,
		Secret:          "secret",
	})
}

func newAuthEngine(tm *util.TokenManager) *gin.Engine {
	r := gin.New()
	r.GET("/admin", AuthAdmin(tm), func(c *gin.Context) {
		c.String(http.StatusOK, util.GetToken(c).Subject)
	})
	r.GET("/project", AuthProject(tm), func(c *gin.Context) {
		c.String(http.StatusOK, util.GetToken(c).ProjectSlug)
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAdmin(t *testing.T) {
	tm := newTokenMgr()
	r := newAuthEngine(tm)
	adminToken, _, err := tm.CreateAdminToken("admin@x.com")
	require.NoError(t, err)
	projectToken, _, err := tm.CreateProjectToken("alpha", "a@x.com")
	require.NoError(t, err)

	w := get(r, "/admin", adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin@x.com", w.Body.String())

	for _, token := range []string{"", "garbage", projectToken} {
		w = get(r, "/admin", token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, int64(resputil.TokenInvalid), gjson.Get(w.Body.String(), "code").Int())
	}
}

func TestAuthProject(t *testing.T) {
	tm := newTokenMgr()
	r := newAuthEngine(tm)
	projectToken, _, err := tm.CreateProjectToken("alpha", "a@x.com")
	require.NoError(t, err)
	adminToken, _, err := tm.CreateAdminToken("admin@x.com")
	require.NoError(t, err)

	w := get(r, "/project", projectToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alpha", w.Body.String())

	w = get(r, "/project", adminToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	r := gin.New()
	r.GET("/", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for range 3 {
		codes = append(codes, get(r, "/", "").Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// another client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.RemoteAddr = "10.0.0.9:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiterBucketsPerRoute(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	r := gin.New()
	r.GET("/intake", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/login", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(r, "/intake", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/intake", "").Code)

	// the same client is still allowed on a different route
	assert.Equal(t, http.StatusOK, get(r, "/login", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/login", "").Code)
}

func TestRateLimiterDisabledAndCleanup(t *testing.T) {
	var nilLimiter *RateLimiter
	r := gin.New()
	r.GET("/", nilLimiter.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })
	for range 5 {
		assert.Equal(t, http.StatusOK, get(r, "/", "").Code)
	}

	rl := NewRateLimiter(1, 1)
	rl.getLimiter("1.2.3.4")
	rl.visitors["1.2.3.4"].lastSeen = time.Now().Add(-2 * idleLimiterTTL)
	rl.getLimiter("5.6.7.8")
	rl.Cleanup()
	assert.Len(t, rl.visitors, 1)
	assert.Contains(t, rl.visitors, "5.6.7.8")
}
