package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/safari-community/internal/apperror"
	"github.com/sakif/safari-community/internal/model"
	"github.com/sakif/safari-community/internal/repository"
)

var _ repository.PresetRepository = (*PresetStore)(nil)

// PresetStore persists presets. The category id list and program name list
// are stored as JSON columns — they are opaque weak references, never
// queried by element, so a join table buys nothing here.
type PresetStore struct {
	db *DB
}

func NewPresetStore(db *DB) *PresetStore {
	return &PresetStore{db: db}
}

func (s *PresetStore) Create(ctx context.Context, preset *model.Preset) error {
	preset.ID = xid.New().String()
	preset.CreatedAt = time.Now()

	categoryIDs, programs, err := marshalPresetLists(preset.CategoryIDs, preset.Programs)
	if err != nil {
		return err
	}

	_, err = s.db.conn.ExecContext(ctx,
		`INSERT INTO presets (id, name, description, category_ids, programs, created_by, is_public, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		preset.ID,
		preset.Name,
		preset.Description,
		categoryIDs,
		programs,
		preset.CreatedBy,
		preset.IsPublic,
		preset.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// Backs up the service-level uniqueness guard under races.
			return apperror.Conflict(fmt.Sprintf("preset %q already exists for this owner", preset.Name))
		}
		return fmt.Errorf("sqlite: creating preset: %w", err)
	}

	return nil
}

func (s *PresetStore) List(ctx context.Context, opts repository.ListOptions) ([]model.Preset, error) {
	limit := clampLimit(opts.Limit)
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, name, description, category_ids, programs, created_by, is_public, created_at
		 FROM presets ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing presets: %w", err)
	}
	defer rows.Close()

	presets := make([]model.Preset, 0, limit)
	for rows.Next() {
		p, err := scanPreset(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning preset row: %w", err)
		}
		presets = append(presets, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating presets: %w", err)
	}

	return presets, nil
}

func (s *PresetStore) GetByID(ctx context.Context, id string) (*model.Preset, error) {
	if err := parseID("preset", id); err != nil {
		return nil, err
	}

	row := s.db.conn.QueryRowContext(ctx,
		`SELECT id, name, description, category_ids, programs, created_by, is_public, created_at
		 FROM presets WHERE id = ?`, id,
	)
	p, err := scanPreset(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("preset", id)
		}
		return nil, fmt.Errorf("sqlite: getting preset %s: %w", id, err)
	}

	return p, nil
}

// Update applies a partial merge: only fields present in the patch change.
func (s *PresetStore) Update(ctx context.Context, id string, patch model.PresetPatch) (*model.Preset, error) {
	if err := parseID("preset", id); err != nil {
		return nil, err
	}

	sets := []string{}
	args := []any{}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.CategoryIDs != nil {
		encoded, err := json.Marshal(*patch.CategoryIDs)
		if err != nil {
			return nil, fmt.Errorf("sqlite: encoding category ids: %w", err)
		}
		sets = append(sets, "category_ids = ?")
		args = append(args, string(encoded))
	}
	if patch.Programs != nil {
		encoded, err := json.Marshal(*patch.Programs)
		if err != nil {
			return nil, fmt.Errorf("sqlite: encoding programs: %w", err)
		}
		sets = append(sets, "programs = ?")
		args = append(args, string(encoded))
	}
	if patch.IsPublic != nil {
		sets = append(sets, "is_public = ?")
		args = append(args, *patch.IsPublic)
	}

	if len(sets) > 0 {
		query := `UPDATE presets SET ` + joinSets(sets) + ` WHERE id = ?`
		args = append(args, id)

		result, err := s.db.conn.ExecContext(ctx, query, args...)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, apperror.Conflict("preset rename collides with an existing preset of this owner")
			}
			return nil, fmt.Errorf("sqlite: updating preset %s: %w", id, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if affected == 0 {
			return nil, apperror.NotFound("preset", id)
		}
	}

	return s.GetByID(ctx, id)
}

func (s *PresetStore) Delete(ctx context.Context, id string) error {
	if err := parseID("preset", id); err != nil {
		return err
	}

	result, err := s.db.conn.ExecContext(ctx,
		`DELETE FROM presets WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting preset %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("preset", id)
	}

	return nil
}

// ExistsByOwnerAndName reports whether the owner already has a preset with
// this name, ignoring excludeID.
func (s *PresetStore) ExistsByOwnerAndName(ctx context.Context, owner, name, excludeID string) (bool, error) {
	var count int
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM presets WHERE created_by = ? AND name = ? AND id != ?`,
		owner, name, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking preset name %q for %s: %w", name, owner, err)
	}
	return count > 0, nil
}

func marshalPresetLists(categoryIDs, programs []string) (string, string, error) {
	if categoryIDs == nil {
		categoryIDs = []string{}
	}
	if programs == nil {
		programs = []string{}
	}
	encodedCategories, err := json.Marshal(categoryIDs)
	if err != nil {
		return "", "", fmt.Errorf("sqlite: encoding category ids: %w", err)
	}
	encodedPrograms, err := json.Marshal(programs)
	if err != nil {
		return "", "", fmt.Errorf("sqlite: encoding programs: %w", err)
	}
	return string(encodedCategories), string(encodedPrograms), nil
}

// scanPreset reads one preset row, decoding the JSON list columns.
func scanPreset(scan func(dest ...any) error) (*model.Preset, error) {
	var (
		p           model.Preset
		categoryIDs string
		programs    string
	)
	if err := scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&categoryIDs,
		&programs,
		&p.CreatedBy,
		&p.IsPublic,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(categoryIDs), &p.CategoryIDs); err != nil {
		return nil, fmt.Errorf("sqlite: decoding preset category ids: %w", err)
	}
	if err := json.Unmarshal([]byte(programs), &p.Programs); err != nil {
		return nil, fmt.Errorf("sqlite: decoding preset programs: %w", err)
	}

	return &p, nil
}
