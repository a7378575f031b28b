package service

import (
	"context"
	"fmt"

	"readrover/internal/models"
	"readrover/internal/repository"
)

// NotifyFunc enqueues a notification for a user. Implementations must be
// fire-and-forget: failures are logged by the implementation and never
// propagate into the calling operation.
type NotifyFunc func(ctx context.Context, userID uint, kind models.NotificationKind, content string)

// FriendService provides friend-request, friendship and visibility
// propagation business logic.
type FriendService struct {
	friendRepo   repository.FriendRepository
	userRepo     repository.UserRepository
	activityRepo repository.ActivityRepository
	notify       NotifyFunc
}

// NewFriendService returns a new FriendService.
func NewFriendService(
	friendRepo repository.FriendRepository,
	userRepo repository.UserRepository,
	activityRepo repository.ActivityRepository,
	notify NotifyFunc,
) *FriendService {
	return &FriendService{
		friendRepo:   friendRepo,
		userRepo:     userRepo,
		activityRepo: activityRepo,
		notify:       notify,
	}
}

// SendFriendRequest sends a friend request to the target user. The failure
// paths leave no trace: a rejected duplicate does not grow the pending set.
func (s *FriendService) SendFriendRequest(ctx context.Context, userID, targetUserID uint) (*models.Friendship, error) {
	if userID == targetUserID {
		return nil, models.NewValidationError("Cannot send friend request to yourself")
	}

	sender, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, targetUserID); err != nil {
		return nil, err
	}

	existing, err := s.friendRepo.GetFriendshipBetweenUsers(ctx, userID, targetUserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case models.FriendshipStatusAccepted:
			return nil, models.NewAlreadyFriendsError()
		case models.FriendshipStatusPending:
			if existing.RequesterID == userID {
				return nil, models.NewAlreadyRequestedError()
			}
			return nil, models.NewValidationError("You already have a pending friend request from this user")
		}
	}

	friendship := &models.Friendship{
		RequesterID: userID,
		AddresseeID: targetUserID,
		Status:      models.FriendshipStatusPending,
	}
	if err := s.friendRepo.Create(ctx, friendship); err != nil {
		return nil, err
	}

	s.notify(ctx, targetUserID, models.NotificationFriendRequest,
		fmt.Sprintf("%s sent you a friend request", sender.Username))

	return s.friendRepo.GetByID(ctx, friendship.ID)
}

// AcceptFriendRequest accepts the pending friend request from requesterID.
// On success the friendship is symmetric by construction and visibility is
// propagated across both users' activities.
func (s *FriendService) AcceptFriendRequest(ctx context.Context, userID, requesterID uint) (*models.Friendship, error) {
	accepter, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	friendship, err := s.friendRepo.GetFriendshipBetweenUsers(ctx, userID, requesterID)
	if err != nil {
		return nil, err
	}
	if friendship == nil ||
		friendship.Status != models.FriendshipStatusPending ||
		friendship.AddresseeID != userID {
		return nil, models.NewNoSuchRequestError()
	}

	if err := s.friendRepo.UpdateStatus(ctx, friendship.ID, models.FriendshipStatusAccepted); err != nil {
		return nil, err
	}

	s.notify(ctx, requesterID, models.NotificationFriendAccepted,
		fmt.Sprintf("%s accepted your friend request", accepter.Username))

	if err := s.PropagateNewFriendship(ctx, userID, requesterID); err != nil {
		return nil, err
	}

	return s.friendRepo.GetByID(ctx, friendship.ID)
}

// AddFriendDirect establishes a mutual friendship without the request
// flow and propagates visibility for the pair.
func (s *FriendService) AddFriendDirect(ctx context.Context, userID, friendID uint) (*models.Friendship, error) {
	if userID == friendID {
		return nil, models.NewValidationError("Cannot add yourself as a friend")
	}

	if _, err := s.userRepo.GetByID(ctx, friendID); err != nil {
		return nil, err
	}

	existing, err := s.friendRepo.GetFriendshipBetweenUsers(ctx, userID, friendID)
	if err != nil {
		return nil, err
	}

	var friendship *models.Friendship
	switch {
	case existing != nil && existing.Status == models.FriendshipStatusAccepted:
		return nil, models.NewAlreadyFriendsError()
	case existing != nil:
		// A pending request between the pair collapses into acceptance:
		// the end state is the same mutual friendship.
		if err := s.friendRepo.UpdateStatus(ctx, existing.ID, models.FriendshipStatusAccepted); err != nil {
			return nil, err
		}
		friendship = existing
	default:
		friendship = &models.Friendship{
			RequesterID: userID,
			AddresseeID: friendID,
			Status:      models.FriendshipStatusAccepted,
		}
		if err := s.friendRepo.Create(ctx, friendship); err != nil {
			return nil, err
		}
	}

	if err := s.PropagateNewFriendship(ctx, userID, friendID); err != nil {
		return nil, err
	}

	return s.friendRepo.GetByID(ctx, friendship.ID)
}

// GetFriends returns the list of friends for the user.
func (s *FriendService) GetFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.friendRepo.GetFriends(ctx, userID)
}

// GetPendingRequests returns pending friend requests for the user.
func (s *FriendService) GetPendingRequests(ctx context.Context, userID uint) ([]models.Friendship, error) {
	return s.friendRepo.GetPendingRequests(ctx, userID)
}

// PropagateNewFriendship unions each user into the visibility set of every
// activity the other owns. The operation is a monotone set union: running
// it twice, or with passes interleaved, converges on the same sets, which
// is what makes it safe to retry on any failure.
func (s *FriendService) PropagateNewFriendship(ctx context.Context, userA, userB uint) error {
	if err := s.activityRepo.GrantOwnedActivities(ctx, userA, userB); err != nil {
		return err
	}
	return s.activityRepo.GrantOwnedActivities(ctx, userB, userA)
}

// ResyncAllFriends re-establishes bidirectional visibility between the user
// and every current friend. It repairs any grant a missed incremental pass
// left out and is safe to run at any time, e.g. on session start.
func (s *FriendService) ResyncAllFriends(ctx context.Context, userID uint) error {
	friendIDs, err := s.friendRepo.GetFriendIDs(ctx, userID)
	if err != nil {
		return err
	}
	for _, friendID := range friendIDs {
		if err := s.PropagateNewFriendship(ctx, userID, friendID); err != nil {
			return err
		}
	}
	return nil
}
