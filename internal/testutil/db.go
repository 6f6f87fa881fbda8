// Package testutil provides an in-memory database for tests that need real
// transactions.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"todoshare/internal/model"
)

// NewDB opens a private in-memory SQLite database with every model migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

// CreateUser stores a user with notifications enabled
func CreateUser(t *testing.T, db *gorm.DB, email, displayName string) *model.User {
	t.Helper()

	user := &model.User{
		Email:                email,
		HashedPassword:       "hashed",
		DisplayName:          displayName,
		NotificationsEnabled: true,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(user).Error)
	return user
}
