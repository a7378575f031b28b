package service

import (
	"context"
	"fmt"

	"readrover/internal/models"
	"readrover/internal/repository"
)

const (
	feedLimit     = 20
	maxCommentLen = 10000
)

// ActivityService provides feed, comment and reply business logic.
type ActivityService struct {
	activityRepo repository.ActivityRepository
	userRepo     repository.UserRepository
	notify       NotifyFunc
}

// AddCommentInput carries the parameters for AddComment.
type AddCommentInput struct {
	ActivityID uint
	AuthorID   uint
	Content    string
}

// AddReplyInput carries the parameters for AddReply.
type AddReplyInput struct {
	ActivityID uint
	CommentID  uint
	AuthorID   uint
	Content    string
}

// NewActivityService returns a new ActivityService.
func NewActivityService(
	activityRepo repository.ActivityRepository,
	userRepo repository.UserRepository,
	notify NotifyFunc,
) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		userRepo:     userRepo,
		notify:       notify,
	}
}

// AddComment prepends a comment to the activity's thread and extends the
// activity's visibility to the author and the owner. The insert and the
// visibility grants commit together or not at all.
func (s *ActivityService) AddComment(ctx context.Context, in AddCommentInput) (*models.Activity, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	activity, err := s.activityRepo.GetByID(ctx, in.ActivityID)
	if err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, in.AuthorID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ActivityID: in.ActivityID,
		UserID:     in.AuthorID,
		Content:    in.Content,
	}
	// A commenter may not be a friend of the owner (friend-of-a-friend
	// threads), so thread access is granted on the activity itself.
	if err := s.activityRepo.AddComment(ctx, comment, []uint{in.AuthorID, activity.UserID}); err != nil {
		return nil, err
	}

	if activity.UserID != in.AuthorID {
		s.notify(ctx, activity.UserID, models.NotificationComment,
			fmt.Sprintf("%s commented on your activity", author.Username))
	}

	return s.activityRepo.GetByIDResolved(ctx, in.ActivityID)
}

// AddReply appends a reply to a comment and extends the activity's
// visibility to the reply author, the activity owner and the comment's
// author.
func (s *ActivityService) AddReply(ctx context.Context, in AddReplyInput) (*models.Activity, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Reply too long (max 10000 characters)")
	}

	activity, err := s.activityRepo.GetByID(ctx, in.ActivityID)
	if err != nil {
		return nil, err
	}

	comment, err := s.activityRepo.GetComment(ctx, in.ActivityID, in.CommentID)
	if err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, in.AuthorID)
	if err != nil {
		return nil, err
	}

	reply := &models.Reply{
		CommentID: in.CommentID,
		UserID:    in.AuthorID,
		Content:   in.Content,
	}
	grants := []uint{in.AuthorID, activity.UserID, comment.UserID}
	if err := s.activityRepo.AddReply(ctx, reply, in.ActivityID, grants); err != nil {
		return nil, err
	}

	if activity.UserID != in.AuthorID {
		s.notify(ctx, activity.UserID, models.NotificationReply,
			fmt.Sprintf("%s replied on your activity", author.Username))
	}
	if comment.UserID != in.AuthorID && comment.UserID != activity.UserID {
		s.notify(ctx, comment.UserID, models.NotificationReply,
			fmt.Sprintf("%s replied to your comment", author.Username))
	}

	return s.activityRepo.GetByIDResolved(ctx, in.ActivityID)
}

// Feed returns the newest activities visible to the user, fully resolved
// for display.
func (s *ActivityService) Feed(ctx context.Context, userID uint) ([]models.Activity, error) {
	return s.activityRepo.FeedFor(ctx, userID, feedLimit)
}

// Get returns one activity for a viewer. An activity outside the viewer's
// visibility set reads as not found rather than forbidden, so the endpoint
// does not leak which IDs exist.
func (s *ActivityService) Get(ctx context.Context, viewerID, activityID uint) (*models.Activity, error) {
	visible, err := s.activityRepo.VisibleUserIDs(ctx, activityID)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, id := range visible {
		if id == viewerID {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, models.NewNotFoundError("Activity", activityID)
	}
	return s.activityRepo.GetByIDResolved(ctx, activityID)
}
