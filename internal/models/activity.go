// Package models contains data structures for the application's domain models.
package models

import "time"

// ActivityKind classifies reading activities.
type ActivityKind string

const (
	// ActivityStarted is logged when a user marks a book as currently reading.
	ActivityStarted ActivityKind = "started"
	// ActivityFinished is logged when a user finishes a book.
	ActivityFinished ActivityKind = "finished"
	// ActivityProgress is logged on a progress update.
	ActivityProgress ActivityKind = "progress"
	// ActivityComment is logged for free-form reading notes.
	ActivityComment ActivityKind = "comment"
)

// Activity is an event in the friend feed: one user, one book, one kind.
// Who may see it is tracked as explicit ActivityVisibility rows rather than
// derived from the friend graph at read time, because thread participants
// gain access independent of friendship. Activities are never deleted.
type Activity struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    uint         `gorm:"not null;index" json:"user_id"`
	User      User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BookID    uint         `gorm:"not null;index" json:"book_id"`
	Book      Book         `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Kind      ActivityKind `gorm:"type:varchar(20);not null" json:"kind"`
	Content   string       `json:"content"`
	Progress  *int         `json:"progress,omitempty"`
	CreatedAt time.Time    `gorm:"index" json:"created_at"`

	Comments  []Comment            `gorm:"foreignKey:ActivityID" json:"comments,omitempty"`
	VisibleTo []ActivityVisibility `gorm:"foreignKey:ActivityID" json:"-"`
}

// Comment is a top-level comment on an activity. Comments are returned
// newest-first and are never edited or deleted.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActivityID uint      `gorm:"not null;index" json:"activity_id"`
	UserID     uint      `gorm:"not null" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"user"`
	Content    string    `gorm:"not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`

	Replies []Reply `gorm:"foreignKey:CommentID" json:"replies"`
}

// Reply is a threaded reply to a comment. Replies are returned oldest-first
// and cannot themselves be replied to.
type Reply struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;index" json:"comment_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Content   string    `gorm:"not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityVisibility is one member of an activity's visibleTo set. The
// composite unique index makes membership a true set: grants go through
// INSERT .. ON CONFLICT DO NOTHING, so re-granting is a no-op and grants
// are never lost under concurrent writers. Rows are never removed.
type ActivityVisibility struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActivityID uint      `gorm:"not null;uniqueIndex:idx_activity_viewer" json:"activity_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_activity_viewer;index" json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (ActivityVisibility) TableName() string {
	return "activity_visibilities"
}
