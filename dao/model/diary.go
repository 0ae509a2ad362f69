package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DiaryEntry 管理员的工作日志条目，可附带待办事项
type DiaryEntry struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Author         string    `gorm:"type:varchar(256);not null;index;comment:作者" json:"author"`
	Title          string    `gorm:"type:varchar(512);not null" json:"title"`
	Summary        string    `gorm:"type:text;not null" json:"summary"`
	EntryTimestamp time.Time `gorm:"not null" json:"entry_timestamp"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`

	ActionItems []DiaryActionItem `gorm:"foreignKey:DiaryEntryID;constraint:OnDelete:CASCADE" json:"diary_action_items"`
}

func (DiaryEntry) TableName() string { return "diary_entries" }

func (e *DiaryEntry) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// DiaryActionItem is a follow-up recorded with a diary entry.
type DiaryActionItem struct {
	ID           string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	DiaryEntryID string     `gorm:"type:varchar(36);not null;index" json:"diary_entry_id"`
	Author       string     `gorm:"type:varchar(256);not null" json:"author"`
	Text         string     `gorm:"type:text;not null" json:"text"`
	IsCompleted  bool       `gorm:"not null;default:false" json:"is_completed"`
	OrderVal     int        `gorm:"not null;default:0" json:"order_val"`
	SentToWIPAt  *time.Time `json:"sent_to_wip_at"`
	WIPTaskID    *string    `gorm:"type:varchar(36)" json:"wip_task_id"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (DiaryActionItem) TableName() string { return "diary_action_items" }

func (i *DiaryActionItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
