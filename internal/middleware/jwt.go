package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/b0ase/portal/internal/resputil"
	"github.com/b0ase/portal/internal/util"
	"github.com/b0ase/portal/pkg/constants"
)

// AuthAdmin accepts only a Bearer token carrying the admin role.
func AuthAdmin(tm *util.TokenManager) gin.HandlerFunc {
	return authRole(tm, constants.RoleAdmin)
}

// AuthProject accepts only a Bearer token scoped to a project.
func AuthProject(tm *util.TokenManager) gin.HandlerFunc {
	return authRole(tm, constants.RoleProject)
}

func authRole(tm *util.TokenManager, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.Request.Header.Get("Authorization")
		t := strings.SplitN(authHeader, " ", 2)
		if len(t) < 2 || t[0] != "Bearer" || t[1] == "" {
			resputil.HTTPError(c, http.StatusUnauthorized, "Invalid token", resputil.TokenInvalid)
			c.Abort()
			return
		}

		token, err := tm.CheckToken(t[1], role)
		if err != nil {
			klog.V(2).Infof("reject %s token on %s: %v", role, c.FullPath(), err)
			resputil.HTTPError(c, http.StatusUnauthorized, "Invalid token", resputil.TokenInvalid)
			c.Abort()
			return
		}

		util.SetJWTContext(c, token)
		c.Next()
	}
}
