// Package models contains data structures for the application's domain models.
package models

import "time"

// NotificationKind classifies notification log entries.
type NotificationKind string

const (
	// NotificationFriendRequest is enqueued for the addressee of a new friend request.
	NotificationFriendRequest NotificationKind = "friend_request"
	// NotificationFriendAccepted is enqueued for the requester when a request is accepted.
	NotificationFriendAccepted NotificationKind = "friend_accepted"
	// NotificationComment is enqueued for an activity owner on a new comment.
	NotificationComment NotificationKind = "comment"
	// NotificationReply is enqueued for thread participants on a new reply.
	NotificationReply NotificationKind = "reply"
)

// Notification is one entry in a user's notification log. Delivery is
// fire-and-forget: a failed insert never fails the triggering operation.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	Kind      NotificationKind `gorm:"type:varchar(30);not null" json:"kind"`
	Content   string           `gorm:"not null" json:"content"`
	Read      bool             `gorm:"default:false" json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
