package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ClientRequest 客户提交的项目申请，由公开表单创建，仅能由管理员审批或拒绝
type ClientRequest struct {
	ID               string                      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name             string                      `gorm:"type:varchar(256);not null;comment:申请人姓名" json:"name"`
	Email            string                      `gorm:"type:varchar(256);not null;index;comment:申请人邮箱" json:"email"`
	ProjectBrief     string                      `gorm:"type:text;comment:项目简介" json:"project_brief"`
	Website          *string                     `gorm:"type:varchar(512)" json:"website"`
	Phone            *string                     `gorm:"type:varchar(64)" json:"phone"`
	LogoURL          *string                     `gorm:"type:varchar(512)" json:"logo_url"`
	Socials          *string                     `gorm:"type:text" json:"socials"`
	GithubLinks      *string                     `gorm:"type:text" json:"github_links"`
	InspirationLinks *string                     `gorm:"type:text" json:"inspiration_links"`
	HowHeard         *string                     `gorm:"type:varchar(256)" json:"how_heard"`
	ProjectTypes     datatypes.JSONSlice[string] `gorm:"comment:项目类型" json:"project_types"`
	RequestedBudget  *float64                    `json:"requested_budget"`

	Status          ClientRequestStatus `gorm:"type:varchar(32);not null;default:pending;index;comment:审批状态" json:"status"`
	ReviewNotes     *string             `gorm:"type:text;comment:审批备注" json:"review_notes"`
	RejectionReason *string             `gorm:"type:text;comment:拒绝原因" json:"rejection_reason"`
	ReviewedBy      *string             `gorm:"type:varchar(256);comment:审批人" json:"reviewed_by"`
	ReviewedAt      *time.Time          `gorm:"comment:审批时间" json:"reviewed_at"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (ClientRequest) TableName() string { return "client_requests" }

func (r *ClientRequest) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = ClientRequestStatusPending
	}
	return nil
}
