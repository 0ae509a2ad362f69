package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/b0ase/portal/internal/resputil"
	"github.com/b0ase/portal/internal/util"
	"github.com/b0ase/portal/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewAuthMgr)
}

type AuthMgr struct {
	name         string
	tokenMgr     *util.TokenManager
	passwordHash string
	adminEmail   string
	limiter      gin.HandlerFunc
}

func NewAuthMgr(conf *RegisterConfig) Manager {
	return &AuthMgr{
		name:         "auth",
		tokenMgr:     conf.TokenMgr,
		passwordHash: conf.AdminPasswordHash,
		adminEmail:   conf.Config.Auth.AdminEmail,
		limiter:      conf.Limiter.Handler(),
	}
}

func (mgr *AuthMgr) GetName() string { return mgr.name }

func (mgr *AuthMgr) RegisterPublic(g *gin.RouterGroup) {
	g.POST("/admin", mgr.limiter, mgr.AdminLogin)
}

func (mgr *AuthMgr) RegisterProtected(_ *gin.RouterGroup) {}

func (mgr *AuthMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.GET("/whoami", mgr.WhoAmI)
}

type (
	AdminLoginReq struct {
		Password string `json:"password" binding:"required"`
	}

	AdminLoginResp struct {
		AccessToken string    `json:"accessToken"`
		ExpiresAt   time.Time `json:"expiresAt"`
	}

	WhoAmIResp struct {
		Subject   string    `json:"subject"`
		Role      string    `json:"role"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
)

// AdminLogin godoc
// @Summary Exchange the admin password for an admin token
// @Tags Auth
// @Accept json
// @Produce json
// @Param data body AdminLoginReq true "admin password"
// @Success 200 {object} resputil.Response[AdminLoginResp] "token"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 401 {object} resputil.Response[any] "Invalid credentials"
// @Router /v1/auth/admin [post]
func (mgr *AuthMgr) AdminLogin(c *gin.Context) {
	var req AdminLoginReq
	if !bindJSON(c, &req) {
		return
	}

	l := logutils.Log.WithField("ip", c.ClientIP())
	if !util.CheckPassword(mgr.passwordHash, req.Password) {
		l.Warn("admin login: invalid credentials")
		resputil.HTTPError(c, http.StatusUnauthorized, "Invalid credentials", resputil.InvalidCredentials)
		return
	}

	token, expiresAt, err := mgr.tokenMgr.CreateAdminToken(mgr.adminEmail)
	if err != nil {
		l.Error("admin login: ", err)
		resputil.Error(c, "Failed to create token", resputil.NotSpecified)
		return
	}
	l.Info("admin login succeeded")
	resputil.Success(c, AdminLoginResp{AccessToken: token, ExpiresAt: expiresAt})
}

// WhoAmI godoc
// @Summary Show the identity carried by the admin token
// @Tags Auth
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[WhoAmIResp] "identity"
// @Failure 401 {object} resputil.Response[any] "Invalid token"
// @Router /v1/admin/auth/whoami [get]
func (mgr *AuthMgr) WhoAmI(c *gin.Context) {
	token := util.GetToken(c)
	resputil.Success(c, WhoAmIResp{Subject: token.Subject, Role: token.Role, ExpiresAt: token.ExpiresAt})
}
