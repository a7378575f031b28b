// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"readrover/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample reader. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Bio:      gofakeit.Sentence(10),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	// bcrypt dominates seeding time for large meshes; allow skipping it
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashed)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// BuildBook constructs a catalog entry for the user without persisting it.
func (f *Factory) BuildBook(user *models.User) *models.Book {
	info := gofakeit.Book()
	return &models.Book{
		UserID:        user.ID,
		GoogleBooksID: gofakeit.UUID(),
		Title:         info.Title,
		Authors:       []string{info.Author},
		Thumbnail:     fmt.Sprintf("https://picsum.photos/seed/%s/200/300", gofakeit.UUID()),
		PageCount:     gofakeit.Number(120, 900),
	}
}

// ReadingNote returns a short free-form note for progress updates.
func (f *Factory) ReadingNote() string {
	return gofakeit.Sentence(f.rng.Intn(8) + 4)
}

// ReviewText returns a longer writeup for reviews.
func (f *Factory) ReviewText() string {
	return gofakeit.Paragraph(1, 2, 8, " ")
}
