package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/b0ase/portal/dao/model"
	"github.com/b0ase/portal/dao/query"
	"github.com/b0ase/portal/internal/payload"
	"github.com/b0ase/portal/internal/resputil"
	"github.com/b0ase/portal/internal/util"
	"github.com/b0ase/portal/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewProjectLoginMgr)
}

type ProjectLoginMgr struct {
	name     string
	query    *query.Query
	tokenMgr *util.TokenManager
	limiter  gin.HandlerFunc
	now      func() time.Time
}

func NewProjectLoginMgr(conf *RegisterConfig) Manager {
	return &ProjectLoginMgr{
		name:     "project-logins",
		query:    conf.Query,
		tokenMgr: conf.TokenMgr,
		limiter:  conf.Limiter.Handler(),
		now:      conf.now,
	}
}

func (mgr *ProjectLoginMgr) GetName() string { return mgr.name }

func (mgr *ProjectLoginMgr) RegisterPublic(g *gin.RouterGroup) {
	g.POST("/verify", mgr.limiter, mgr.VerifyProjectLogin)
}

func (mgr *ProjectLoginMgr) RegisterProtected(_ *gin.RouterGroup) {}

func (mgr *ProjectLoginMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.GET("", mgr.ListProjectLogins)
	g.POST("", mgr.CreateProjectLogin)
	g.PUT("", mgr.UpdateProjectLogin)
	g.DELETE("", mgr.DeleteProjectLogin)
	g.GET("/:slug/access", mgr.ListProjectAccess)
}

type (
	VerifyProjectLoginReq struct {
		ProjectSlug string `json:"project_slug" binding:"notblank"`
		Password    string `json:"password" binding:"required"`
		Email       string `json:"email" binding:"notblank"`
	}

	VerifyProjectLoginResp struct {
		ProjectSlug string    `json:"project_slug"`
		AccessToken string    `json:"accessToken"`
		ExpiresAt   time.Time `json:"expiresAt"`
	}

	ProjectLoginReq struct {
		ProjectSlug string `json:"project_slug" binding:"notblank"`
		Password    string `json:"password" binding:"required"`
	}

	DeleteProjectLoginReq struct {
		ProjectSlug string `json:"project_slug" binding:"notblank"`
	}

	ProjectSlugReq struct {
		Slug string `uri:"slug" binding:"required"`
	}
)

// VerifyProjectLogin godoc
// @Summary Log in to a project with its shared password
// @Description On success one access-log row is appended and a project token returned.
// @Tags ProjectLogin
// @Accept json
// @Produce json
// @Param data body VerifyProjectLoginReq true "credentials"
// @Success 200 {object} resputil.Response[VerifyProjectLoginResp] "project token"
// @Failure 400 {object} resputil.Response[resputil.FieldsData] "Missing fields"
// @Failure 401 {object} resputil.Response[any] "Invalid credentials"
// @Failure 404 {object} resputil.Response[any] "Project not found"
// @Router /v1/project-logins/verify [post]
func (mgr *ProjectLoginMgr) VerifyProjectLogin(c *gin.Context) {
	var req VerifyProjectLoginReq
	if !bindJSON(c, &req) {
		loginCounter.WithLabelValues("invalid").Inc()
		return
	}
	slug := strings.TrimSpace(req.ProjectSlug)
	email, ok := bindEmail(c, "email", req.Email)
	if !ok {
		loginCounter.WithLabelValues("invalid").Inc()
		return
	}
	email = strings.ToLower(email)
	l := logutils.Log.WithFields(logutils.Fields{"project": slug, "email": email})

	login, err := mgr.query.ProjectLogin.GetBySlug(c, slug)
	if err != nil {
		if errors.Is(err, query.ErrNotFound) {
			loginCounter.WithLabelValues("not_found").Inc()
			resputil.NotFoundError(c, "Project not found")
			return
		}
		l.Error("get project login: ", err)
		resputil.Error(c, "Failed to verify login", resputil.NotSpecified)
		return
	}
	if !util.CheckPassword(login.PasswordHash, req.Password) {
		loginCounter.WithLabelValues("unauthorized").Inc()
		l.Warn("project login: invalid credentials")
		resputil.HTTPError(c, http.StatusUnauthorized, "Invalid credentials", resputil.InvalidCredentials)
		return
	}

	if err := mgr.query.ProjectAccess.Append(c, &model.ProjectAccess{
		ProjectSlug: slug,
		Email:       email,
		AccessedAt:  mgr.now(),
	}); err != nil {
		l.Error("append project access: ", err)
		resputil.Error(c, "Failed to verify login", resputil.NotSpecified)
		return
	}

	token, expiresAt, err := mgr.tokenMgr.CreateProjectToken(slug, email)
	if err != nil {
		l.Error("create project token: ", err)
		resputil.Error(c, "Failed to verify login", resputil.NotSpecified)
		return
	}
	loginCounter.WithLabelValues("success").Inc()
	l.Info("project login succeeded")
	resputil.Success(c, VerifyProjectLoginResp{ProjectSlug: slug, AccessToken: token, ExpiresAt: expiresAt})
}

// ListProjectLogins godoc
// @Summary List project logins
// @Tags ProjectLogin
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[[]model.ProjectLogin] "logins"
// @Router /v1/admin/project-logins [get]
func (mgr *ProjectLoginMgr) ListProjectLogins(c *gin.Context) {
	logins, err := mgr.query.ProjectLogin.List(c)
	if err != nil {
		logutils.Log.Error("list project logins: ", err)
		resputil.Error(c, "Failed to list project logins", resputil.NotSpecified)
		return
	}
	resputil.Success(c, logins)
}

// CreateProjectLogin godoc
// @Summary Create a project login
// @Tags ProjectLogin
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body ProjectLoginReq true "slug and password"
// @Success 201 {object} resputil.Response[model.ProjectLogin] "created"
// @Failure 409 {object} resputil.Response[any] "Slug already exists"
// @Router /v1/admin/project-logins [post]
func (mgr *ProjectLoginMgr) CreateProjectLogin(c *gin.Context) {
	var req ProjectLoginReq
	if !bindJSON(c, &req) {
		return
	}
	hash, err := util.HashPassword(req.Password)
	if err != nil {
		logutils.Log.Error("hash project password: ", err)
		resputil.Error(c, "Failed to create project login", resputil.NotSpecified)
		return
	}
	login := &model.ProjectLogin{ProjectSlug: strings.TrimSpace(req.ProjectSlug), PasswordHash: hash}
	if err := mgr.query.ProjectLogin.Create(c, login); err != nil {
		if errors.Is(err, query.ErrDuplicate) {
			resputil.ConflictError(c, "Project login already exists", resputil.Duplicate)
			return
		}
		logutils.Log.Error("create project login: ", err)
		resputil.Error(c, "Failed to create project login", resputil.NotSpecified)
		return
	}
	logutils.Log.Infof("project login %s created by %s", login.ProjectSlug, util.GetToken(c).Subject)
	resputil.SuccessWithStatus(c, http.StatusCreated, login)
}

// UpdateProjectLogin godoc
// @Summary Change a project password
// @Tags ProjectLogin
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body ProjectLoginReq true "slug and new password"
// @Success 200 {object} resputil.Response[MessageResp] "updated"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Router /v1/admin/project-logins [put]
func (mgr *ProjectLoginMgr) UpdateProjectLogin(c *gin.Context) {
	var req ProjectLoginReq
	if !bindJSON(c, &req) {
		return
	}
	hash, err := util.HashPassword(req.Password)
	if err != nil {
		logutils.Log.Error("hash project password: ", err)
		resputil.Error(c, "Failed to update project login", resputil.NotSpecified)
		return
	}
	slug := strings.TrimSpace(req.ProjectSlug)
	if err := mgr.query.ProjectLogin.UpdatePassword(c, slug, hash); err != nil {
		if errors.Is(err, query.ErrNotFound) {
			resputil.NotFoundError(c, "Project login not found")
			return
		}
		logutils.Log.Error("update project login: ", err)
		resputil.Error(c, "Failed to update project login", resputil.NotSpecified)
		return
	}
	resputil.Success(c, MessageResp{Message: "Password updated for " + slug})
}

// DeleteProjectLogin godoc
// @Summary Delete a project login
// @Tags ProjectLogin
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body DeleteProjectLoginReq true "slug"
// @Success 200 {object} resputil.Response[MessageResp] "deleted"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Router /v1/admin/project-logins [delete]
func (mgr *ProjectLoginMgr) DeleteProjectLogin(c *gin.Context) {
	var req DeleteProjectLoginReq
	if !bindJSON(c, &req) {
		return
	}
	slug := strings.TrimSpace(req.ProjectSlug)
	if err := mgr.query.ProjectLogin.DeleteBySlug(c, slug); err != nil {
		if errors.Is(err, query.ErrNotFound) {
			resputil.NotFoundError(c, "Project login not found")
			return
		}
		logutils.Log.Error("delete project login: ", err)
		resputil.Error(c, "Failed to delete project login", resputil.NotSpecified)
		return
	}
	resputil.Success(c, MessageResp{Message: "Project login deleted: " + slug})
}

// ListProjectAccess godoc
// @Summary Access log of a project
// @Tags ProjectLogin
// @Produce json
// @Security Bearer
// @Param slug path string true "project slug"
// @Param page_index query int false "page index, from 0"
// @Param page_size query int false "page size"
// @Success 200 {object} resputil.Response[payload.ListResp[model.ProjectAccess]] "access log"
// @Router /v1/admin/project-logins/{slug}/access [get]
func (mgr *ProjectLoginMgr) ListProjectAccess(c *gin.Context) {
	var uri ProjectSlugReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, "Invalid project slug")
		return
	}
	var req payload.ListReqQuery
	if !bindQuery(c, &req) {
		return
	}
	offset, limit := req.Bounds()
	rows, err := mgr.query.ProjectAccess.ListBySlug(c, uri.Slug, query.Page{Offset: offset, Limit: limit})
	if err != nil {
		logutils.Log.Error("list project access: ", err)
		resputil.Error(c, "Failed to list access log", resputil.NotSpecified)
		return
	}
	count, err := mgr.query.ProjectAccess.CountBySlug(c, uri.Slug)
	if err != nil {
		logutils.Log.Error("count project access: ", err)
		resputil.Error(c, "Failed to list access log", resputil.NotSpecified)
		return
	}
	resputil.Success(c, payload.ListResp[*model.ProjectAccess]{Rows: rows, Count: count})
}
