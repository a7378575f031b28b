package server

import (
	"readrover/internal/models"
	"readrover/internal/observability"
	"readrover/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed returns the authenticated user's activity feed
func (s *Server) GetFeed(c *fiber.Ctx) error {
	observability.FeedRequests.Inc()

	activities, err := s.activityService.Feed(c.Context(), currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"activities": activities})
}

// GetActivity returns a single activity with its comment thread.
// Activities outside the viewer's visibility respond 404, not 403, so the
// endpoint doesn't confirm that a hidden activity exists.
func (s *Server) GetActivity(c *fiber.Ctx) error {
	activityID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	activity, err := s.activityService.Get(c.Context(), currentUserID(c), activityID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(activity)
}

// GetComments returns just the comment thread of an activity
func (s *Server) GetComments(c *fiber.Ctx) error {
	activityID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	activity, err := s.activityService.Get(c.Context(), currentUserID(c), activityID)
	if err != nil {
		return serviceError(c, err)
	}
	comments := activity.Comments
	if comments == nil {
		comments = []models.Comment{}
	}
	return c.JSON(fiber.Map{"comments": comments})
}

type commentRequest struct {
	Content string `json:"content"`
}

// AddComment adds a top-level comment to an activity
func (s *Server) AddComment(c *fiber.Ctx) error {
	activityID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	activity, err := s.activityService.AddComment(c.Context(), service.AddCommentInput{
		ActivityID: activityID,
		AuthorID:   currentUserID(c),
		Content:    req.Content,
	})
	if err != nil {
		return serviceError(c, err)
	}

	observability.VisibilityGrants.WithLabelValues("comment").Inc()
	return c.Status(fiber.StatusCreated).JSON(activity)
}

// AddReply adds a reply to a comment on an activity
func (s *Server) AddReply(c *fiber.Ctx) error {
	activityID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	activity, err := s.activityService.AddReply(c.Context(), service.AddReplyInput{
		ActivityID: activityID,
		CommentID:  commentID,
		AuthorID:   currentUserID(c),
		Content:    req.Content,
	})
	if err != nil {
		return serviceError(c, err)
	}

	observability.VisibilityGrants.WithLabelValues("reply").Inc()
	return c.Status(fiber.StatusCreated).JSON(activity)
}
