package util

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	RoleKey        = "x-role"
	SubjectKey     = "x-subject"
	ProjectSlugKey = "x-project-slug"
	EmailKey       = "x-email"
	ExpiresAtKey   = "x-expires-at"
)

func SetJWTContext(c *gin.Context, msg JWTMessage) {
	c.Set(RoleKey, msg.Role)
	c.Set(SubjectKey, msg.Subject)
	c.Set(ProjectSlugKey, msg.ProjectSlug)
	c.Set(EmailKey, msg.Email)
	c.Set(ExpiresAtKey, msg.ExpiresAt)
}

func GetToken(c *gin.Context) JWTMessage {
	var msg JWTMessage
	msg.Role = c.GetString(RoleKey)
	msg.Subject = c.GetString(SubjectKey)
	msg.ProjectSlug = c.GetString(ProjectSlugKey)
	msg.Email = c.GetString(EmailKey)
	if v, ok := c.Get(ExpiresAtKey); ok {
		msg.ExpiresAt, _ = v.(time.Time)
	}
	return msg
}
