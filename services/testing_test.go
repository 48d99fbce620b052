package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/bootcamp-tracker/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&_pragma=foreign_keys(1)", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Submission{}))
	return db
}

func newTestLedger(t *testing.T, db *gorm.DB, today models.Date) *Ledger {
	t.Helper()
	l := NewLedger(db, nil)
	l.now = func() time.Time { return today.Time().Add(10 * time.Hour) }
	return l
}

func mustUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u, err := NewUserDirectory(db, nil).LoginOrCreate(context.Background(), name, models.GenderFemale)
	require.NoError(t, err)
	return u
}

func pointsOf(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var u models.User
	require.NoError(t, db.First(&u, id).Error)
	return u.TotalPoints
}
