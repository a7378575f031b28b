package repository

import (
	"fmt"
	"strings"
	"testing"

	"readrover/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Friendship{},
		&models.Book{},
		&models.Review{},
		&models.Activity{},
		&models.Comment{},
		&models.Reply{},
		&models.ActivityVisibility{},
		&models.Notification{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createBook(t *testing.T, db *gorm.DB, userID uint, title string) *models.Book {
	t.Helper()
	book := &models.Book{
		UserID:        userID,
		GoogleBooksID: "vol-" + title,
		Title:         title,
		PageCount:     300,
	}
	require.NoError(t, db.Create(book).Error)
	return book
}
