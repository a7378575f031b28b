package server

import (
	"readrover/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// GetFriends lists the authenticated user's friends
func (s *Server) GetFriends(c *fiber.Ctx) error {
	friends, err := s.friendService.GetFriends(c.Context(), currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"friends": friends})
}

// GetPendingRequests lists friend requests waiting on the authenticated user
func (s *Server) GetPendingRequests(c *fiber.Ctx) error {
	requests, err := s.friendService.GetPendingRequests(c.Context(), currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

// SendFriendRequest creates a pending friend request to another user
func (s *Server) SendFriendRequest(c *fiber.Ctx) error {
	targetID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	friendship, err := s.friendService.SendFriendRequest(c.Context(), currentUserID(c), targetID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(friendship)
}

// AcceptFriendRequest accepts a pending request from the given user
func (s *Server) AcceptFriendRequest(c *fiber.Ctx) error {
	requesterID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	friendship, err := s.friendService.AcceptFriendRequest(c.Context(), currentUserID(c), requesterID)
	if err != nil {
		return serviceError(c, err)
	}

	observability.VisibilityGrants.WithLabelValues("acceptance").Inc()
	return c.JSON(friendship)
}

// AddFriendDirect establishes a friendship immediately, skipping the
// request/accept handshake. A pending request between the pair collapses
// into acceptance.
func (s *Server) AddFriendDirect(c *fiber.Ctx) error {
	friendID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	friendship, err := s.friendService.AddFriendDirect(c.Context(), currentUserID(c), friendID)
	if err != nil {
		return serviceError(c, err)
	}

	observability.VisibilityGrants.WithLabelValues("direct_add").Inc()
	return c.Status(fiber.StatusCreated).JSON(friendship)
}

// ResyncFriends re-grants the user's activities to every current friend.
// Grants are idempotent, so this is safe to call repeatedly.
func (s *Server) ResyncFriends(c *fiber.Ctx) error {
	if err := s.friendService.ResyncAllFriends(c.Context(), currentUserID(c)); err != nil {
		return serviceError(c, err)
	}

	observability.VisibilityGrants.WithLabelValues("resync").Inc()
	return c.JSON(fiber.Map{"message": "Visibility resynced"})
}
