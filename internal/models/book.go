// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Book represents one entry in a user's catalog. Books are per-user: two
// readers tracking the same title each own their own row, keyed by the
// shared Google Books volume ID.
type Book struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	User             User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	GoogleBooksID    string         `gorm:"not null;index" json:"google_books_id"`
	Title            string         `gorm:"not null" json:"title"`
	Authors          []string       `gorm:"serializer:json" json:"authors"`
	Thumbnail        string         `json:"thumbnail"`
	PageCount        int            `json:"page_count"`
	CurrentlyReading bool           `gorm:"default:false;index" json:"currently_reading"`
	Progress         int            `gorm:"default:0" json:"progress"`
	PagesRead        int            `gorm:"default:0" json:"pages_read"`
	RatingsCount     int            `gorm:"default:0" json:"ratings_count"`
	AverageRating    float64        `gorm:"default:0" json:"average_rating"`
	FinishedAt       *time.Time     `json:"finished_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	Reviews []Review `gorm:"foreignKey:BookID" json:"reviews,omitempty"`
}
