package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/safari-community/internal/apperror"
	"github.com/sakif/safari-community/internal/model"
	"github.com/sakif/safari-community/internal/repository"
)

const (
	MaxTitleLength   = 100
	MaxContentLength = 50000
)

// PostService handles posts, their comments, and reaction counters.
type PostService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	presets  repository.PresetRepository
	logger   *slog.Logger
}

func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	presets repository.PresetRepository,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		posts:    posts,
		comments: comments,
		presets:  presets,
		logger:   logger,
	}
}

// Create validates and saves a new post. presetID is a weak reference —
// stored as given, tolerated as missing on every read.
func (s *PostService) Create(ctx context.Context, owner, title, content, presetID string, isPublic bool, imageURL string) (*model.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "post title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("post title must be %d characters or less", MaxTitleLength))
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperror.ValidationFailed("content", "post content is required")
	}
	if len(content) > MaxContentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("post content must be %d characters or less", MaxContentLength))
	}

	post := &model.Post{
		Title:     title,
		Content:   content,
		PresetID:  presetID,
		CreatedBy: owner,
		IsPublic:  isPublic,
		ImageURL:  imageURL,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info("post created",
		slog.String("id", post.ID),
		slog.String("owner", owner),
	)

	return post, nil
}

// CreateFromPreset shares a preset as a post. The preset must be public or
// owned by the caller.
func (s *PostService) CreateFromPreset(ctx context.Context, caller, presetID string) (*model.Post, error) {
	preset, err := s.presets.GetByID(ctx, presetID)
	if err != nil {
		return nil, err
	}
	if !preset.IsPublic {
		if err := authorize(preset.CreatedBy, caller); err != nil {
			return nil, err
		}
	}

	title := "Shared Preset: " + preset.Name
	content := fmt.Sprintf("Preset Description: %s\nPrograms: %s",
		preset.Description, strings.Join(preset.Programs, ", "))

	return s.Create(ctx, caller, title, content, preset.ID, true, "")
}

// List returns the public feed, newest first. Private posts never appear in
// listings — owners reach them by id.
func (s *PostService) List(ctx context.Context, limit, offset int) ([]model.Post, error) {
	return s.posts.List(ctx, true, repository.ListOptions{Limit: limit, Offset: offset})
}

// Get returns one post. Public posts are readable by anyone, including
// anonymous callers; a private post is readable only by its creator.
func (s *PostService) Get(ctx context.Context, caller, id string) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsPublic {
		if err := authorize(post.CreatedBy, caller); err != nil {
			return nil, err
		}
	}
	return post, nil
}

// Update applies a partial update. Only the creator may do it.
func (s *PostService) Update(ctx context.Context, caller, id string, patch model.PostPatch) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(post.CreatedBy, caller); err != nil {
		return nil, err
	}

	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if trimmed == "" {
			return nil, apperror.ValidationFailed("title", "post title is required")
		}
		if len(trimmed) > MaxTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("post title must be %d characters or less", MaxTitleLength))
		}
		patch.Title = &trimmed
	}
	if patch.Content != nil && len(*patch.Content) > MaxContentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("post content must be %d characters or less", MaxContentLength))
	}

	return s.posts.Update(ctx, id, patch)
}

// Delete removes a post and its comments. Only the creator may do it.
// The comment cascade rides the store's foreign key, so the post and its
// comments go in one statement.
func (s *PostService) Delete(ctx context.Context, caller, id string) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(post.CreatedBy, caller); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("post deleted", slog.String("id", id))
	return nil
}

// React records a like or dislike as an atomic counter increment.
func (s *PostService) React(ctx context.Context, id string, like bool) error {
	return s.posts.IncrementReaction(ctx, id, like)
}

// Scrap bumps the post's scrap counter.
func (s *PostService) Scrap(ctx context.Context, id string) error {
	return s.posts.IncrementScrap(ctx, id, 1)
}

// AddComment creates a comment and bumps the post's comment counter.
//
// Two independent store calls, no transaction: a crash between them leaves
// the counter one short. Accepted — the counter is advisory, the comment
// row is the source of truth.
func (s *PostService) AddComment(ctx context.Context, caller, postID, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "comment content is required")
	}

	// Confirms the post exists (and yields InvalidID for malformed ids)
	// before the insert.
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:    postID,
		CreatedBy: caller,
		Content:   content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	if err := s.posts.IncrementComments(ctx, postID, 1); err != nil {
		s.logger.Error("comment counter increment failed",
			slog.String("postID", postID),
			slog.String("error", err.Error()),
		)
	}

	return comment, nil
}

// ListComments returns a post's comments. Public read.
func (s *PostService) ListComments(ctx context.Context, postID string, limit, offset int) ([]model.Comment, error) {
	return s.comments.ListByPost(ctx, postID, repository.ListOptions{Limit: limit, Offset: offset})
}

// DeleteComment removes a comment and decrements the post's counter. Only
// the comment's creator may do it.
func (s *PostService) DeleteComment(ctx context.Context, caller, id string) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(comment.CreatedBy, caller); err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.posts.IncrementComments(ctx, comment.PostID, -1); err != nil {
		s.logger.Error("comment counter decrement failed",
			slog.String("postID", comment.PostID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// ReactToComment records a like or dislike on a comment.
func (s *PostService) ReactToComment(ctx context.Context, id string, like bool) error {
	return s.comments.IncrementReaction(ctx, id, like)
}
