package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is provisioned from the first approved request of an email address.
type Client struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name         string    `gorm:"type:varchar(256);not null" json:"name"`
	Email        string    `gorm:"type:varchar(256);not null;uniqueIndex" json:"email"`
	Website      *string   `gorm:"type:varchar(512)" json:"website"`
	Phone        *string   `gorm:"type:varchar(64)" json:"phone"`
	LogoURL      *string   `gorm:"type:varchar(512)" json:"logo_url"`
	ProjectBrief string    `gorm:"type:text" json:"project_brief"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Client) TableName() string { return "clients" }

func (c *Client) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// NormalizeEmail is the form under which client emails are stored and looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewClientFromRequest copies the contact fields of an approved request.
// The email is normalized so differently cased submissions map to one client.
func NewClientFromRequest(r *ClientRequest) *Client {
	return &Client{
		Name:         r.Name,
		Email:        NormalizeEmail(r.Email),
		Website:      r.Website,
		Phone:        r.Phone,
		LogoURL:      r.LogoURL,
		ProjectBrief: r.ProjectBrief,
	}
}
