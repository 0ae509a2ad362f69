package migrate_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/b0ase/portal/dao/migrate"
	"github.com/b0ase/portal/dao/model"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestMigrateCreatesTables(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, migrate.Migrate(db))

	for _, table := range []any{
		&model.ClientRequest{}, &model.Client{}, &model.ProjectLogin{}, &model.ProjectAccess{},
		&model.DiaryEntry{}, &model.DiaryActionItem{},
	} {
		assert.True(t, db.Migrator().HasTable(table))
	}
	assert.True(t, db.Migrator().HasIndex(&model.Client{}, "Email"))
}

func TestMigrateTwiceIsNoop(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, migrate.Migrate(db))
	require.NoError(t, migrate.Migrate(db))

	var applied int64
	require.NoError(t, db.Table("migrations").Count(&applied).Error)
	assert.Equal(t, int64(len(migrate.Migrations())), applied)
}

func TestRollbackLast(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, migrate.Migrate(db))
	require.NoError(t, migrate.RollbackLast(db))

	assert.False(t, db.Migrator().HasTable(&model.DiaryEntry{}))
	assert.False(t, db.Migrator().HasTable(&model.DiaryActionItem{}))
	assert.True(t, db.Migrator().HasTable(&model.ProjectLogin{}))
}
