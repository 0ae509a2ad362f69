package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/b0ase/portal/internal/resputil"
	"github.com/b0ase/portal/internal/util"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewProjectSessionMgr)
}

type ProjectSessionMgr struct {
	name string
}

func NewProjectSessionMgr(_ *RegisterConfig) Manager {
	return &ProjectSessionMgr{
		name: "project-session",
	}
}

func (mgr *ProjectSessionMgr) GetName() string { return mgr.name }

func (mgr *ProjectSessionMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ProjectSessionMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.GetProjectSession)
}

func (mgr *ProjectSessionMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type ProjectSessionResp struct {
	ProjectSlug string    `json:"project_slug"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// GetProjectSession godoc
// @Summary Current project session
// @Tags ProjectLogin
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[ProjectSessionResp] "session"
// @Failure 401 {object} resputil.Response[any] "Invalid token"
// @Router /v1/project-session [get]
func (mgr *ProjectSessionMgr) GetProjectSession(c *gin.Context) {
	token := util.GetToken(c)
	resputil.Success(c, ProjectSessionResp{
		ProjectSlug: token.ProjectSlug,
		Email:       token.Email,
		ExpiresAt:   token.ExpiresAt,
	})
}
