// Package repository defines the store contracts the service layer programs
// against. The sqlite subpackage provides the concrete implementation;
// tests substitute in-memory mocks.
//
// Identifier semantics shared by every store: get/update/delete with a
// malformed id fail with apperror.ErrInvalidID (the input could never match
// any record), while a well-formed id with no current match fails with
// apperror.ErrNotFound. Updates are partial merges — only fields present in
// the patch change; absent fields are never nulled.
package repository

import (
	"context"

	"github.com/sakif/safari-community/internal/model"
)

// ListOptions paginate list queries. Limits are clamped by the stores;
// the hard cap is 100 rows per page.
type ListOptions struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	// Create inserts a new local account. A duplicate email is a conflict.
	Create(ctx context.Context, user *model.User) error
	// Upsert inserts on first login or refreshes username/provider on
	// subsequent logins, keyed by email. Users are never deleted.
	Upsert(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	List(ctx context.Context, opts ListOptions) ([]model.Category, error)
	GetByID(ctx context.Context, id string) (*model.Category, error)
	Update(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error)
	Delete(ctx context.Context, id string) error

	// EnsureDefault returns the id of the owner's fallback category,
	// creating it if absent. Safe to call concurrently for the same owner:
	// at most one fallback row per owner ever exists.
	EnsureDefault(ctx context.Context, owner string) (string, error)
}

type ProgramRepository interface {
	Create(ctx context.Context, program *model.Program) error
	// List returns programs, optionally filtered to one category.
	List(ctx context.Context, categoryID string, opts ListOptions) ([]model.Program, error)
	GetByID(ctx context.Context, id string) (*model.Program, error)
	Update(ctx context.Context, id string, patch model.ProgramPatch) (*model.Program, error)
	Delete(ctx context.Context, id string) error

	// RetargetCategory repoints every program referencing fromCategoryID to
	// toCategoryID and reports how many rows moved. Used by the category
	// deletion cascade.
	RetargetCategory(ctx context.Context, fromCategoryID, toCategoryID string) (int64, error)
}

type PresetRepository interface {
	Create(ctx context.Context, preset *model.Preset) error
	List(ctx context.Context, opts ListOptions) ([]model.Preset, error)
	GetByID(ctx context.Context, id string) (*model.Preset, error)
	Update(ctx context.Context, id string, patch model.PresetPatch) (*model.Preset, error)
	Delete(ctx context.Context, id string) error

	// ExistsByOwnerAndName reports whether the owner already has a preset
	// with this name, ignoring excludeID (pass "" on create, the preset's
	// own id on rename).
	ExistsByOwnerAndName(ctx context.Context, owner, name, excludeID string) (bool, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	// List returns posts newest-first; publicOnly restricts to is_public.
	List(ctx context.Context, publicOnly bool, opts ListOptions) ([]model.Post, error)
	GetByID(ctx context.Context, id string) (*model.Post, error)
	Update(ctx context.Context, id string, patch model.PostPatch) (*model.Post, error)
	Delete(ctx context.Context, id string) error

	// Counter mutations are atomic "n = n + delta" statements at the store,
	// never read-modify-write, so concurrent reactions cannot lose updates.
	IncrementReaction(ctx context.Context, id string, like bool) error
	IncrementScrap(ctx context.Context, id string, delta int64) error
	IncrementComments(ctx context.Context, id string, delta int64) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	ListByPost(ctx context.Context, postID string, opts ListOptions) ([]model.Comment, error)
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	Delete(ctx context.Context, id string) error
	IncrementReaction(ctx context.Context, id string, like bool) error
}
