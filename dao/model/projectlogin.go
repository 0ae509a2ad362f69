package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectLogin 项目级共享密码，只保存 bcrypt 哈希
type ProjectLogin struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProjectSlug  string    `gorm:"type:varchar(128);not null;uniqueIndex;comment:项目标识" json:"project_slug"`
	PasswordHash string    `gorm:"type:varchar(128);not null;comment:密码哈希" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (ProjectLogin) TableName() string { return "client_project_logins" }

func (l *ProjectLogin) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// ProjectAccess is an append-only record of a successful project login.
type ProjectAccess struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProjectSlug string    `gorm:"type:varchar(128);not null;index" json:"project_slug"`
	Email       string    `gorm:"type:varchar(256)" json:"email"`
	AccessedAt  time.Time `gorm:"not null;index" json:"accessed_at"`
}

func (ProjectAccess) TableName() string { return "client_project_access" }

func (a *ProjectAccess) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AccessedAt.IsZero() {
		a.AccessedAt = time.Now()
	}
	return nil
}
