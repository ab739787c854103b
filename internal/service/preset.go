package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/safari-community/internal/apperror"
	"github.com/sakif/safari-community/internal/model"
	"github.com/sakif/safari-community/internal/repository"
)

// PresetService handles preset CRUD with the per-owner name uniqueness
// guard.
type PresetService struct {
	presets    repository.PresetRepository
	categories repository.CategoryRepository
	logger     *slog.Logger
}

func NewPresetService(
	presets repository.PresetRepository,
	categories repository.CategoryRepository,
	logger *slog.Logger,
) *PresetService {
	return &PresetService{
		presets:    presets,
		categories: categories,
		logger:     logger,
	}
}

// Create validates and saves a new preset.
//
// Uniqueness guard: the (name, owner) pair must be free before any insert
// is attempted. The store's unique index backs this check up under races —
// either path surfaces a conflict.
//
// Category references are weak: ids that are malformed or point at no
// existing category are silently dropped rather than rejected, matching how
// every dereference of the list must tolerate a missing target anyway.
func (s *PresetService) Create(ctx context.Context, owner, name, description string, categoryIDs, programs []string, isPublic bool) (*model.Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "preset name is required")
	}
	if len(name) > MaxNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("preset name must be %d characters or less", MaxNameLength))
	}

	taken, err := s.presets.ExistsByOwnerAndName(ctx, owner, name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Conflict(fmt.Sprintf("preset %q already exists for this owner", name))
	}

	preset := &model.Preset{
		Name:        name,
		Description: strings.TrimSpace(description),
		CategoryIDs: s.validCategoryIDs(ctx, categoryIDs),
		Programs:    programs,
		CreatedBy:   owner,
		IsPublic:    isPublic,
	}
	if err := s.presets.Create(ctx, preset); err != nil {
		return nil, err
	}

	s.logger.Info("preset created",
		slog.String("id", preset.ID),
		slog.String("owner", owner),
	)

	return preset, nil
}

// List returns presets. Public read.
func (s *PresetService) List(ctx context.Context, limit, offset int) ([]model.Preset, error) {
	return s.presets.List(ctx, repository.ListOptions{Limit: limit, Offset: offset})
}

// Get returns one preset. Public read.
func (s *PresetService) Get(ctx context.Context, id string) (*model.Preset, error) {
	return s.presets.GetByID(ctx, id)
}

// Update applies a partial update. Only the creator may do it. A rename
// re-runs the uniqueness guard against the owner's other presets.
func (s *PresetService) Update(ctx context.Context, caller, id string, patch model.PresetPatch) (*model.Preset, error) {
	preset, err := s.presets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(preset.CreatedBy, caller); err != nil {
		return nil, err
	}

	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return nil, apperror.ValidationFailed("name", "preset name is required")
		}
		if trimmed != preset.Name {
			taken, err := s.presets.ExistsByOwnerAndName(ctx, preset.CreatedBy, trimmed, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperror.Conflict(fmt.Sprintf("preset %q already exists for this owner", trimmed))
			}
		}
		patch.Name = &trimmed
	}

	if patch.CategoryIDs != nil {
		valid := s.validCategoryIDs(ctx, *patch.CategoryIDs)
		patch.CategoryIDs = &valid
	}

	return s.presets.Update(ctx, id, patch)
}

// Delete removes a preset. Only the creator may do it.
func (s *PresetService) Delete(ctx context.Context, caller, id string) error {
	preset, err := s.presets.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(preset.CreatedBy, caller); err != nil {
		return err
	}

	if err := s.presets.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("preset deleted", slog.String("id", id))
	return nil
}

// validCategoryIDs keeps only ids that reference an existing category.
func (s *PresetService) validCategoryIDs(ctx context.Context, ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := s.categories.GetByID(ctx, id); err != nil {
			if errors.Is(err, apperror.ErrInvalidID) || errors.Is(err, apperror.ErrNotFound) {
				continue
			}
			// A store failure shouldn't silently shrink the list; keep the
			// id and let the weak-reference rule handle it on read.
			s.logger.Warn("category lookup failed while validating preset",
				slog.String("categoryID", id),
				slog.String("error", err.Error()),
			)
		}
		valid = append(valid, id)
	}
	return valid
}
