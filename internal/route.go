package internal

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/b0ase/portal/internal/handler"
	"github.com/b0ase/portal/internal/middleware"
	"github.com/b0ase/portal/pkg/constants"
)

// Register builds the gin engine with every registered manager mounted.
func Register(registerConfig *handler.RegisterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if gin.Mode() != gin.TestMode {
		r.Use(gin.Logger())
	}

	// Enable CORS for the local frontend in debug mode
	if gin.Mode() == gin.DebugMode && registerConfig.Config.FrontendOrigin != "" {
		corsConf := cors.DefaultConfig()
		corsConf.AllowOrigins = []string{registerConfig.Config.FrontendOrigin}
		corsConf.AddAllowHeaders("Authorization")
		r.Use(cors.New(corsConf))
	}

	// Kubernetes health check
	r.GET("/v1/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "ok",
		})
	})

	handler.NewMetricsMgr(registerConfig).Register(r.Group("/metrics"))

	registerCustom(r, registerConfig)
	return r
}

func registerCustom(r *gin.Engine, registerConfig *handler.RegisterConfig) {
	managers := registerManagers(registerConfig)

	///////////////////////////////////////
	//// Public routers, no need login ////
	///////////////////////////////////////

	publicRouter := r.Group(constants.APIPrefix)

	/////////////////////////////////////////////
	//// Protected routers, need project token //
	/////////////////////////////////////////////

	protectedRouter := r.Group(constants.APIPrefix)
	protectedRouter.Use(middleware.AuthProject(registerConfig.TokenMgr))

	///////////////////////////////////////
	//// Admin routers, need admin token //
	///////////////////////////////////////

	adminRouter := r.Group(constants.APIPrefixAdmin)
	adminRouter.Use(middleware.AuthAdmin(registerConfig.TokenMgr))

	for _, mgr := range managers {
		mgr.RegisterPublic(publicRouter.Group(mgr.GetName()))
		mgr.RegisterProtected(protectedRouter.Group(mgr.GetName()))
		mgr.RegisterAdmin(adminRouter.Group(mgr.GetName()))
	}
}
