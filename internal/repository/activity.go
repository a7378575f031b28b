// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"readrover/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActivityRepository defines the interface for activity, comment and
// visibility data operations. Visibility grants are monotone set-adds
// backed by the unique (activity_id, user_id) index: granting twice, in
// any order, converges on the same set and never removes a member.
type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity, visibleTo []uint) error
	GetByID(ctx context.Context, id uint) (*models.Activity, error)
	// GetByIDResolved loads an activity with user, book, comments and
	// replies resolved for display. Comments are ordered newest-first,
	// replies within a comment oldest-first.
	GetByIDResolved(ctx context.Context, id uint) (*models.Activity, error)
	GetComment(ctx context.Context, activityID, commentID uint) (*models.Comment, error)
	// AddComment inserts the comment and extends the activity's visibility
	// to grantTo in a single transaction.
	AddComment(ctx context.Context, comment *models.Comment, grantTo []uint) error
	// AddReply inserts the reply and extends the activity's visibility to
	// grantTo in a single transaction.
	AddReply(ctx context.Context, reply *models.Reply, activityID uint, grantTo []uint) error
	// Grant adds the given users to the activity's visibility set.
	Grant(ctx context.Context, activityID uint, userIDs ...uint) error
	// GrantOwnedActivities adds viewerID to the visibility set of every
	// activity owned by ownerID.
	GrantOwnedActivities(ctx context.Context, ownerID, viewerID uint) error
	// FeedFor returns the newest activities visible to userID, resolved
	// for display.
	FeedFor(ctx context.Context, userID uint, limit int) ([]models.Activity, error)
	VisibleUserIDs(ctx context.Context, activityID uint) ([]uint, error)
}

// activityRepository implements ActivityRepository
type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

// grantTx inserts visibility rows with ON CONFLICT DO NOTHING so that
// re-granting an existing viewer is a no-op rather than an error.
func grantTx(tx *gorm.DB, activityID uint, userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	grants := make([]models.ActivityVisibility, 0, len(userIDs))
	for _, uid := range userIDs {
		grants = append(grants, models.ActivityVisibility{ActivityID: activityID, UserID: uid})
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "activity_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&grants).Error
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity, visibleTo []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(activity).Error; err != nil {
			return err
		}
		// The owner can always see their own activity.
		return grantTx(tx, activity.ID, append([]uint{activity.UserID}, visibleTo...))
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *activityRepository) GetByID(ctx context.Context, id uint) (*models.Activity, error) {
	var activity models.Activity
	if err := r.db.WithContext(ctx).First(&activity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Activity", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &activity, nil
}

// resolved applies the preloads needed to render an activity with all
// author identities resolved.
func resolved(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Book").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at DESC, comments.id DESC")
		}).
		Preload("Comments.User").
		Preload("Comments.Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("replies.created_at ASC, replies.id ASC")
		}).
		Preload("Comments.Replies.User")
}

func (r *activityRepository) GetByIDResolved(ctx context.Context, id uint) (*models.Activity, error) {
	var activity models.Activity
	if err := resolved(r.db.WithContext(ctx)).First(&activity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Activity", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &activity, nil
}

func (r *activityRepository) GetComment(ctx context.Context, activityID, commentID uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND activity_id = ?", commentID, activityID).
		First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", commentID)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *activityRepository) AddComment(ctx context.Context, comment *models.Comment, grantTo []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return grantTx(tx, comment.ActivityID, grantTo)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *activityRepository) AddReply(ctx context.Context, reply *models.Reply, activityID uint, grantTo []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		return grantTx(tx, activityID, grantTo)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *activityRepository) Grant(ctx context.Context, activityID uint, userIDs ...uint) error {
	if err := grantTx(r.db.WithContext(ctx), activityID, userIDs); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *activityRepository) GrantOwnedActivities(ctx context.Context, ownerID, viewerID uint) error {
	// One statement per owner keeps the pass atomic per activity without
	// loading activity rows into memory. Works on postgres and sqlite.
	err := r.db.WithContext(ctx).Exec(
		`INSERT INTO activity_visibilities (activity_id, user_id, created_at)
		 SELECT a.id, ?, ? FROM activities a WHERE a.user_id = ?
		 ON CONFLICT (activity_id, user_id) DO NOTHING`,
		viewerID, time.Now().UTC(), ownerID,
	).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *activityRepository) FeedFor(ctx context.Context, userID uint, limit int) ([]models.Activity, error) {
	var activities []models.Activity
	if err := resolved(r.db.WithContext(ctx)).
		Joins("JOIN activity_visibilities v ON v.activity_id = activities.id").
		Where("v.user_id = ?", userID).
		Order("activities.created_at DESC, activities.id DESC").
		Limit(limit).
		Find(&activities).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return activities, nil
}

func (r *activityRepository) VisibleUserIDs(ctx context.Context, activityID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.ActivityVisibility{}).
		Where("activity_id = ?", activityID).
		Order("user_id").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
