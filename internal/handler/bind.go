package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/b0ase/portal/internal/resputil"
	"github.com/b0ase/portal/internal/util"
)

// bindJSON binds the request body and writes the 400 response on failure.
// Missing fields are reported before malformed ones.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	missing, invalid, ok := util.BindErrors(err)
	switch {
	case !ok:
		resputil.BadRequestError(c, "Invalid request body")
	case len(missing) > 0:
		resputil.ValidationError(c, "missing required fields: "+strings.Join(missing, ", "),
			resputil.MissingFields, missing)
	default:
		resputil.ValidationError(c, "invalid fields: "+strings.Join(invalid, ", "),
			resputil.InvalidRequest, invalid)
	}
	return false
}

// bindEmail trims raw and checks it is an address, writing the 400 response on failure.
func bindEmail(c *gin.Context, field, raw string) (string, bool) {
	email := strings.TrimSpace(raw)
	if !util.IsEmail(email) {
		resputil.ValidationError(c, "invalid fields: "+field, resputil.InvalidRequest, []string{field})
		return "", false
	}
	return email, true
}

func bindQuery(c *gin.Context, req any) bool {
	err := c.ShouldBindQuery(req)
	if err == nil {
		return true
	}
	if _, invalid, ok := util.BindErrors(err); ok && len(invalid) > 0 {
		resputil.ValidationError(c, "invalid fields: "+strings.Join(invalid, ", "),
			resputil.InvalidRequest, invalid)
		return false
	}
	resputil.BadRequestError(c, "Invalid query parameters")
	return false
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
