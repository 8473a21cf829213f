package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sakif/gift-registry/internal/apperror"
	"github.com/sakif/gift-registry/internal/model"
	"github.com/sakif/gift-registry/internal/repository"
)

// FriendService manages the symmetric friendship graph. Friendships are
// created directly, without a request/accept handshake.
type FriendService struct {
	users   repository.UserRepository
	friends repository.FriendRepository
	logger  *slog.Logger
}

// NewFriendService creates a FriendService.
func NewFriendService(users repository.UserRepository, friends repository.FriendRepository, logger *slog.Logger) *FriendService {
	return &FriendService{users: users, friends: friends, logger: logger}
}

// Add befriends the viewer with otherID. The edge is undirected, so adding
// in either direction produces the same pair.
func (s *FriendService) Add(ctx context.Context, viewer *model.User, otherID int64) error {
	if viewer == nil {
		return apperror.Forbidden("authentication required")
	}
	if otherID == viewer.ID {
		return apperror.ValidationFailed("userId", "you cannot befriend yourself")
	}

	if _, err := s.users.GetByID(ctx, otherID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NotFound("user", otherID)
		}
		return apperror.Internal(err)
	}

	pair := model.NewFriendPair(viewer.ID, otherID)
	if err := s.friends.Create(ctx, &pair); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return apperror.Conflict("you are already friends with this user")
		}
		return apperror.Internal(err)
	}

	s.logger.Info("friendship created",
		slog.Int64("userLo", pair.UserLo),
		slog.Int64("userHi", pair.UserHi),
	)
	return nil
}

// Remove dissolves the friendship between the viewer and otherID.
func (s *FriendService) Remove(ctx context.Context, viewer *model.User, otherID int64) error {
	if viewer == nil {
		return apperror.Forbidden("authentication required")
	}

	if err := s.friends.Delete(ctx, viewer.ID, otherID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NotFound("friendship", otherID)
		}
		return apperror.Internal(err)
	}

	s.logger.Info("friendship removed",
		slog.Int64("userID", viewer.ID),
		slog.Int64("otherID", otherID),
	)
	return nil
}

// List returns the viewer's friends as users. Friends whose accounts have
// since disappeared are skipped.
func (s *FriendService) List(ctx context.Context, viewer *model.User) ([]model.User, error) {
	if viewer == nil {
		return nil, apperror.Forbidden("authentication required")
	}

	pairs, err := s.friends.ListByUser(ctx, viewer.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	friends := make([]model.User, 0, len(pairs))
	for _, pair := range pairs {
		user, err := s.users.GetByID(ctx, pair.Other(viewer.ID))
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				continue
			}
			return nil, apperror.Internal(err)
		}
		friends = append(friends, *user)
	}
	return friends, nil
}
