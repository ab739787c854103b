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

const MaxNameLength = 100

// CategoryService handles category CRUD, the fallback-category provisioning,
// and the deletion cascade onto programs.
type CategoryService struct {
	categories repository.CategoryRepository
	programs   repository.ProgramRepository
	logger     *slog.Logger
}

func NewCategoryService(
	categories repository.CategoryRepository,
	programs repository.ProgramRepository,
	logger *slog.Logger,
) *CategoryService {
	return &CategoryService{
		categories: categories,
		programs:   programs,
		logger:     logger,
	}
}

// Create validates and saves a new category owned by the caller.
func (s *CategoryService) Create(ctx context.Context, owner, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "category name is required")
	}
	if len(name) > MaxNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("category name must be %d characters or less", MaxNameLength))
	}

	category := &model.Category{
		Name:      name,
		CreatedBy: owner,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("category created",
		slog.String("id", category.ID),
		slog.String("owner", owner),
	)

	return category, nil
}

// List returns categories. Reads are public — no caller identity involved.
func (s *CategoryService) List(ctx context.Context, limit, offset int) ([]model.Category, error) {
	return s.categories.List(ctx, repository.ListOptions{Limit: limit, Offset: offset})
}

// Get returns one category. Public read.
func (s *CategoryService) Get(ctx context.Context, id string) (*model.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// Update renames a category. Only the creator may do it.
func (s *CategoryService) Update(ctx context.Context, caller, id string, patch model.CategoryPatch) (*model.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(category.CreatedBy, caller); err != nil {
		return nil, err
	}

	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return nil, apperror.ValidationFailed("name", "category name is required")
		}
		if len(trimmed) > MaxNameLength {
			return nil, apperror.ValidationFailed("name",
				fmt.Sprintf("category name must be %d characters or less", MaxNameLength))
		}
		patch.Name = &trimmed
	}

	return s.categories.Update(ctx, id, patch)
}

// Delete removes a category and retargets every program that referenced it
// to the owner's fallback category.
//
// The cascade is a sequence of independent store calls with no rollback. A
// crash after the retarget but before the delete leaves the category in
// place with no programs attached; re-running the delete completes it.
// Callers must treat the operation as non-atomic.
func (s *CategoryService) Delete(ctx context.Context, caller, id string) error {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(category.CreatedBy, caller); err != nil {
		return err
	}
	if category.IsDefault() {
		return apperror.ValidationFailed("id", "the fallback category cannot be deleted")
	}

	fallbackID, err := s.categories.EnsureDefault(ctx, category.CreatedBy)
	if err != nil {
		return fmt.Errorf("service/category: provisioning fallback for %s: %w", category.CreatedBy, err)
	}

	moved, err := s.programs.RetargetCategory(ctx, id, fallbackID)
	if err != nil {
		return fmt.Errorf("service/category: retargeting programs of %s: %w", id, err)
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("category deleted",
		slog.String("id", id),
		slog.Int64("programsRetargeted", moved),
	)

	return nil
}

// EnsureDefault exposes fallback provisioning for the program service.
func (s *CategoryService) EnsureDefault(ctx context.Context, owner string) (string, error) {
	return s.categories.EnsureDefault(ctx, owner)
}
