// Package migrate holds the versioned schema migrations of the portal database.
package migrate

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/b0ase/portal/dao/model"
	"github.com/b0ase/portal/pkg/logutils"
)

// Migrations are applied in order and recorded in the migrations table.
// Never edit a released migration; append a new one instead.
func Migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202505010001_client_requests",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&model.ClientRequest{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("client_requests")
			},
		},
		{
			ID: "202505010002_clients",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&model.Client{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("clients")
			},
		},
		{
			ID: "202505020001_client_project_logins",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&model.ProjectLogin{}, &model.ProjectAccess{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("client_project_access", "client_project_logins")
			},
		},
		{
			ID: "202506010001_diary",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&model.DiaryEntry{}, &model.DiaryActionItem{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("diary_action_items", "diary_entries")
			},
		},
	}
}

// Migrate brings the schema up to date. Running it again is a no-op.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, Migrations())
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	logutils.Log.Info("database migrated")
	return nil
}

// RollbackLast reverts the most recently applied migration.
func RollbackLast(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, Migrations())
	if err := m.RollbackLast(); err != nil {
		return fmt.Errorf("rollback migration: %w", err)
	}
	return nil
}
