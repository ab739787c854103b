package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/safari-community/internal/apperror"
	"github.com/sakif/safari-community/internal/model"
	"github.com/sakif/safari-community/internal/repository"
)

// ProgramService handles program CRUD. Programs created or updated without
// an explicit category land in the owner's fallback category.
type ProgramService struct {
	programs   repository.ProgramRepository
	categories repository.CategoryRepository
	logger     *slog.Logger
}

func NewProgramService(
	programs repository.ProgramRepository,
	categories repository.CategoryRepository,
	logger *slog.Logger,
) *ProgramService {
	return &ProgramService{
		programs:   programs,
		categories: categories,
		logger:     logger,
	}
}

// Create validates and saves a new program. An empty categoryID triggers
// fallback provisioning; a non-empty one must reference an existing
// category.
func (s *ProgramService) Create(ctx context.Context, owner, name, categoryID string) (*model.Program, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "program name is required")
	}
	if len(name) > MaxNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("program name must be %d characters or less", MaxNameLength))
	}

	if categoryID == "" {
		fallbackID, err := s.categories.EnsureDefault(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("service/program: provisioning fallback for %s: %w", owner, err)
		}
		categoryID = fallbackID
	} else {
		// Propagates InvalidID for a malformed id, NotFound for a missing one.
		if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
			return nil, err
		}
	}

	program := &model.Program{
		Name:       name,
		CategoryID: categoryID,
		CreatedBy:  owner,
	}
	if err := s.programs.Create(ctx, program); err != nil {
		return nil, err
	}

	s.logger.Info("program created",
		slog.String("id", program.ID),
		slog.String("categoryID", categoryID),
	)

	return program, nil
}

// List returns programs, optionally filtered to one category. Public read.
func (s *ProgramService) List(ctx context.Context, categoryID string, limit, offset int) ([]model.Program, error) {
	if categoryID != "" {
		if _, err := xid.FromString(categoryID); err != nil {
			return nil, apperror.InvalidID("category", categoryID)
		}
	}
	return s.programs.List(ctx, categoryID, repository.ListOptions{Limit: limit, Offset: offset})
}

// Get returns one program. Public read.
func (s *ProgramService) Get(ctx context.Context, id string) (*model.Program, error) {
	return s.programs.GetByID(ctx, id)
}

// Update applies a partial update. Only the creator may do it. Setting the
// category to "" reassigns the program to the caller's fallback category;
// any other value must reference an existing category.
func (s *ProgramService) Update(ctx context.Context, caller, id string, patch model.ProgramPatch) (*model.Program, error) {
	program, err := s.programs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(program.CreatedBy, caller); err != nil {
		return nil, err
	}

	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return nil, apperror.ValidationFailed("name", "program name is required")
		}
		if len(trimmed) > MaxNameLength {
			return nil, apperror.ValidationFailed("name",
				fmt.Sprintf("program name must be %d characters or less", MaxNameLength))
		}
		patch.Name = &trimmed
	}

	if patch.CategoryID != nil {
		if *patch.CategoryID == "" {
			fallbackID, err := s.categories.EnsureDefault(ctx, program.CreatedBy)
			if err != nil {
				return nil, fmt.Errorf("service/program: provisioning fallback for %s: %w", program.CreatedBy, err)
			}
			patch.CategoryID = &fallbackID
		} else {
			if _, err := s.categories.GetByID(ctx, *patch.CategoryID); err != nil {
				return nil, err
			}
		}
	}

	return s.programs.Update(ctx, id, patch)
}

// Delete removes a program. Only the creator may do it.
func (s *ProgramService) Delete(ctx context.Context, caller, id string) error {
	program, err := s.programs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(program.CreatedBy, caller); err != nil {
		return err
	}

	if err := s.programs.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("program deleted", slog.String("id", id))
	return nil
}
