package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sakif/gift-registry/internal/apperror"
	"github.com/sakif/gift-registry/internal/model"
	"github.com/sakif/gift-registry/internal/repository"
)

// MaxCommentLength bounds a comment body.
const MaxCommentLength = 2000

// CommentService handles item commentary and its per-viewer anonymization.
type CommentService struct {
	access    *AccessService
	items     repository.ItemRepository
	wishlists repository.WishlistRepository
	comments  repository.CommentRepository
	logger    *slog.Logger
}

// NewCommentService creates a CommentService.
func NewCommentService(
	access *AccessService,
	items repository.ItemRepository,
	wishlists repository.WishlistRepository,
	comments repository.CommentRepository,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		access:    access,
		items:     items,
		wishlists: wishlists,
		comments:  comments,
		logger:    logger,
	}
}

// Anonymize renders comments for one viewer. Pure function of its inputs;
// comments must arrive in creation order.
//
// Identity rules per comment:
//   - written by the viewer       → IsOwnComment
//   - written by the item's owner → IsItemOwner
//   - anyone else                 → AnonymizedUserID, numbered 1,2,3… by
//     first appearance in this list
//
// The author→number map lives only for the duration of this call. The same
// commenter therefore gets a different number on the next page load — the
// inconsistency is deliberate: stable numbers could be correlated across
// requests to deanonymize a frequent commenter.
//
// Non-admin viewers get AuthorID stripped from every entry; admins keep it.
func (s *CommentService) Anonymize(viewer *model.User, itemOwnerID int64, comments []model.Comment) []model.AnnotatedComment {
	anonIDs := make(map[int64]int64)
	annotated := make([]model.AnnotatedComment, 0, len(comments))

	for _, c := range comments {
		a := model.AnnotatedComment{
			ID:        c.ID,
			ItemID:    c.ItemID,
			Body:      c.Body,
			AsAdmin:   c.AsAdmin,
			CreatedAt: c.CreatedAt,
		}

		switch {
		case viewer != nil && c.AuthorID == viewer.ID:
			a.IsOwnComment = true
		case c.AuthorID == itemOwnerID:
			a.IsItemOwner = true
		default:
			n, ok := anonIDs[c.AuthorID]
			if !ok {
				n = int64(len(anonIDs) + 1)
				anonIDs[c.AuthorID] = n
			}
			a.AnonymizedUserID = &n
		}

		if viewer.IsAdmin() {
			authorID := c.AuthorID
			a.AuthorID = &authorID
		}

		annotated = append(annotated, a)
	}
	return annotated
}

// ListByItem returns the item's comments, anonymized for the viewer.
// Invisible items yield NotFound.
func (s *CommentService) ListByItem(ctx context.Context, viewer *model.User, itemID int64) ([]model.AnnotatedComment, error) {
	dec, err := s.access.CanViewItem(ctx, viewer, itemID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !dec.Allowed() {
		return nil, apperror.NotFound("item", itemID)
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	list, err := s.wishlists.GetByID(ctx, item.WishlistID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	comments, err := s.comments.ListByItem(ctx, itemID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return s.Anonymize(viewer, list.OwnerID, comments), nil
}

// Create posts a comment on an item the viewer can see.
//
// asAdmin is an explicit request to post as an official admin remark. It is
// silently forced to false for non-admin authors — submitting asAdmin=true
// as a regular user is ignored, not rejected.
func (s *CommentService) Create(ctx context.Context, viewer *model.User, itemID int64, body string, asAdmin bool) (*model.Comment, error) {
	dec, err := s.access.CanViewItem(ctx, viewer, itemID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !dec.Allowed() {
		return nil, apperror.NotFound("item", itemID)
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperror.ValidationFailed("body", "comment body is required")
	}
	if len(body) > MaxCommentLength {
		return nil, apperror.ValidationFailed("body", "comment is too long")
	}

	comment := &model.Comment{
		ItemID:   itemID,
		AuthorID: viewer.ID,
		Body:     body,
		AsAdmin:  asAdmin && viewer.IsAdmin(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			slog.Int64("itemID", itemID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Internal(err)
	}

	s.logger.Info("comment created", slog.Int64("commentID", comment.ID), slog.Int64("itemID", itemID))
	return comment, nil
}

// Update rewrites a comment's body. Author or admin only; viewers who can't
// see the item get NotFound instead of Forbidden.
func (s *CommentService) Update(ctx context.Context, viewer *model.User, commentID int64, body string) (*model.Comment, error) {
	comment, err := s.visibleComment(ctx, viewer, commentID)
	if err != nil {
		return nil, err
	}

	dec, err := s.access.CanManageComment(ctx, viewer, commentID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !dec.Allowed() {
		return nil, apperror.Forbidden(dec.Reason())
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperror.ValidationFailed("body", "comment body is required")
	}
	if len(body) > MaxCommentLength {
		return nil, apperror.ValidationFailed("body", "comment is too long")
	}

	comment.Body = body
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, apperror.Internal(err)
	}
	return comment, nil
}

// Delete removes a comment. Author or admin only.
func (s *CommentService) Delete(ctx context.Context, viewer *model.User, commentID int64) error {
	if _, err := s.visibleComment(ctx, viewer, commentID); err != nil {
		return err
	}

	dec, err := s.access.CanManageComment(ctx, viewer, commentID)
	if err != nil {
		return apperror.Internal(err)
	}
	if !dec.Allowed() {
		return apperror.Forbidden(dec.Reason())
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NotFound("comment", commentID)
		}
		return apperror.Internal(err)
	}

	s.logger.Info("comment deleted", slog.Int64("commentID", commentID))
	return nil
}

// visibleComment loads a comment and applies the item's visibility to it,
// so a comment on an invisible item is NotFound rather than Forbidden.
func (s *CommentService) visibleComment(ctx context.Context, viewer *model.User, commentID int64) (*model.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("comment", commentID)
		}
		return nil, apperror.Internal(err)
	}

	dec, err := s.access.CanViewItem(ctx, viewer, comment.ItemID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !dec.Allowed() {
		return nil, apperror.NotFound("comment", commentID)
	}
	return comment, nil
}
