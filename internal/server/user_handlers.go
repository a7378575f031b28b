package server

import (
	"readrover/internal/cache"
	"readrover/internal/models"
	"readrover/internal/service"

	"github.com/gofiber/fiber/v2"
)

// publicProfile is the shape cached and served for other users' profiles.
// It carries no email and no book list.
type publicProfile struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
}

// GetMyProfile returns the authenticated user's own profile
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.Context(), currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(user)
}

type updateProfileRequest struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
}

// UpdateMyProfile updates the authenticated user's profile fields
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	userID := currentUserID(c)
	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:   userID,
		Username: req.Username,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return serviceError(c, err)
	}

	cache.InvalidateProfile(c.Context(), userID)
	return c.JSON(user)
}

// SearchUsers finds users by username fragment
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	limit, _ := parsePagination(c, 20, 50)
	users, err := s.userService.SearchUsers(c.Context(), c.Query("q"), limit)
	if err != nil {
		return serviceError(c, err)
	}

	results := make([]publicProfile, 0, len(users))
	for _, u := range users {
		results = append(results, publicProfile{
			ID:       u.ID,
			Username: u.Username,
			Bio:      u.Bio,
			Avatar:   u.Avatar,
		})
	}
	return c.JSON(fiber.Map{"users": results})
}

// GetUserProfile returns another user's public profile, cache-aside
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx := c.Context()
	key := cache.ProfileKey(userID)
	cached := s.flags.Enabled("profile_cache", currentUserID(c))

	var profile publicProfile
	if cached && cache.GetJSON(ctx, key, &profile) {
		return c.JSON(profile)
	}

	user, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		return serviceError(c, err)
	}

	profile = publicProfile{
		ID:       user.ID,
		Username: user.Username,
		Bio:      user.Bio,
		Avatar:   user.Avatar,
	}
	if cached {
		cache.SetJSON(ctx, key, profile, cache.ProfileTTL)
	}
	return c.JSON(profile)
}

// GetMyNotifications lists the authenticated user's notification log
func (s *Server) GetMyNotifications(c *fiber.Ctx) error {
	notifs, err := s.userService.ListNotifications(c.Context(), currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"notifications": notifs})
}

// MarkNotificationRead marks one of the user's notifications as read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	notificationID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.MarkNotificationRead(c.Context(), currentUserID(c), notificationID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}
