package service

import (
	"fmt"
	"os"
	"testing"

	"learnsphere_backend/internal/model"
	"learnsphere_backend/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// newTestDB opens a per-test in-memory database and migrates the course
// and XP aggregates. The user table carries MySQL-only column types and
// is not part of these fixtures.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Course{},
		&model.Chapter{},
		&model.Lesson{},
		&model.XPProfile{},
		&model.XPAchievement{},
		&model.XPEvent{},
	))
	return db
}
