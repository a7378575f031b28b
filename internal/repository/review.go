// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"readrover/internal/models"

	"gorm.io/gorm"
)

// ReviewRepository defines the interface for review data operations
type ReviewRepository interface {
	// Create inserts the review and updates the book's rating aggregates
	// in a single transaction.
	Create(ctx context.Context, review *models.Review) error
	ListByBook(ctx context.Context, bookID uint) ([]models.Review, error)
}

// reviewRepository implements ReviewRepository
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			return err
		}

		// Single-statement running average: both columns read their
		// pre-update values, so concurrent reviews cannot lose counts.
		return tx.Exec(
			`UPDATE books
			 SET average_rating = (average_rating * ratings_count + ?) / (ratings_count + 1),
			     ratings_count = ratings_count + 1
			 WHERE id = ?`,
			review.Rating, review.BookID,
		).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reviewRepository) ListByBook(ctx context.Context, bookID uint) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("book_id = ?", bookID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reviews, nil
}
