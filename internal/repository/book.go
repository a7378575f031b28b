// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"readrover/internal/models"

	"gorm.io/gorm"
)

// BookRepository defines the interface for book data operations
type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	// GetByGoogleBooksID resolves a catalog entry by the shared volume ID,
	// with reviews loaded.
	GetByGoogleBooksID(ctx context.Context, googleBooksID string) (*models.Book, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Book, error)
	ListCurrentlyReading(ctx context.Context, userID uint) ([]models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id uint) error
}

// bookRepository implements BookRepository
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Book", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &book, nil
}

func (r *bookRepository) GetByGoogleBooksID(ctx context.Context, googleBooksID string) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("reviews.created_at DESC")
		}).
		Preload("Reviews.User").
		Where("google_books_id = ?", googleBooksID).
		First(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Book", googleBooksID)
		}
		return nil, models.NewInternalError(err)
	}
	return &book, nil
}

func (r *bookRepository) ListByUser(ctx context.Context, userID uint) ([]models.Book, error) {
	var books []models.Book
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&books).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return books, nil
}

func (r *bookRepository) ListCurrentlyReading(ctx context.Context, userID uint) ([]models.Book, error) {
	var books []models.Book
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND currently_reading = ?", userID, true).
		Order("updated_at DESC").
		Find(&books).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return books, nil
}

func (r *bookRepository) Update(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Save(book).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Book{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
