package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/b0ase/portal/dao/query"
	"github.com/b0ase/portal/internal/middleware"
	"github.com/b0ase/portal/internal/util"
	"github.com/b0ase/portal/pkg/alert"
	"github.com/b0ase/portal/pkg/config"
	"github.com/b0ase/portal/pkg/scraper"
)

// Manager groups the routes of one resource. Public routes need no token,
// protected routes need a project token and admin routes an admin token.
type Manager interface {
	GetName() string
	RegisterPublic(group *gin.RouterGroup)
	RegisterProtected(group *gin.RouterGroup)
	RegisterAdmin(group *gin.RouterGroup)
}

type RegisterConfig struct {
	Query    *query.Query
	Alert    alert.AlertInterface
	Scraper  scraper.Runner
	TokenMgr *util.TokenManager
	Config   *config.Config
	// Limiter throttles unauthenticated write endpoints
	Limiter *middleware.RateLimiter
	// AdminPasswordHash is the bcrypt hash the admin password is checked against
	AdminPasswordHash string
	// Now defaults to time.Now
	Now func() time.Time
}

// Registers holds the constructors of all managers, filled by init functions.
var Registers []func(*RegisterConfig) Manager

func (conf *RegisterConfig) now() time.Time {
	if conf.Now != nil {
		return conf.Now()
	}
	return time.Now()
}
