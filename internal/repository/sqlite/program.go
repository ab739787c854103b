package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/safari-community/internal/apperror"
	"github.com/sakif/safari-community/internal/model"
	"github.com/sakif/safari-community/internal/repository"
)

var _ repository.ProgramRepository = (*ProgramStore)(nil)

// ProgramStore persists programs. The category reference is a weak string
// id — referential integrity is not store-enforced, and the retarget
// cascade keeps it from dangling after a category deletion.
type ProgramStore struct {
	db *DB
}

func NewProgramStore(db *DB) *ProgramStore {
	return &ProgramStore{db: db}
}

func (s *ProgramStore) Create(ctx context.Context, program *model.Program) error {
	program.ID = xid.New().String()

	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO programs (id, name, category_id, created_by) VALUES (?, ?, ?, ?)`,
		program.ID,
		program.Name,
		program.CategoryID,
		program.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating program: %w", err)
	}

	return nil
}

// List returns programs, optionally filtered to one category id.
func (s *ProgramStore) List(ctx context.Context, categoryID string, opts repository.ListOptions) ([]model.Program, error) {
	limit := clampLimit(opts.Limit)
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT id, name, category_id, created_by FROM programs`
	args := []any{}
	if categoryID != "" {
		query += ` WHERE category_id = ?`
		args = append(args, categoryID)
	}
	query += ` ORDER BY id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing programs: %w", err)
	}
	defer rows.Close()

	programs := make([]model.Program, 0, limit)
	for rows.Next() {
		var p model.Program
		if err := rows.Scan(&p.ID, &p.Name, &p.CategoryID, &p.CreatedBy); err != nil {
			return nil, fmt.Errorf("sqlite: scanning program row: %w", err)
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating programs: %w", err)
	}

	return programs, nil
}

func (s *ProgramStore) GetByID(ctx context.Context, id string) (*model.Program, error) {
	if err := parseID("program", id); err != nil {
		return nil, err
	}

	var p model.Program
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id, name, category_id, created_by FROM programs WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.CategoryID, &p.CreatedBy)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("program", id)
		}
		return nil, fmt.Errorf("sqlite: getting program %s: %w", id, err)
	}

	return &p, nil
}

// Update applies a partial merge: only fields present in the patch change.
func (s *ProgramStore) Update(ctx context.Context, id string, patch model.ProgramPatch) (*model.Program, error) {
	if err := parseID("program", id); err != nil {
		return nil, err
	}

	sets := []string{}
	args := []any{}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *patch.CategoryID)
	}

	if len(sets) > 0 {
		query := `UPDATE programs SET ` + joinSets(sets) + ` WHERE id = ?`
		args = append(args, id)

		result, err := s.db.conn.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("sqlite: updating program %s: %w", id, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if affected == 0 {
			return nil, apperror.NotFound("program", id)
		}
	}

	return s.GetByID(ctx, id)
}

func (s *ProgramStore) Delete(ctx context.Context, id string) error {
	if err := parseID("program", id); err != nil {
		return err
	}

	result, err := s.db.conn.ExecContext(ctx,
		`DELETE FROM programs WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting program %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("program", id)
	}

	return nil
}

// RetargetCategory repoints every program referencing fromCategoryID to
// toCategoryID. One statement, so the cascade moves all rows or none.
func (s *ProgramStore) RetargetCategory(ctx context.Context, fromCategoryID, toCategoryID string) (int64, error) {
	result, err := s.db.conn.ExecContext(ctx,
		`UPDATE programs SET category_id = ? WHERE category_id = ?`,
		toCategoryID, fromCategoryID,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: retargeting programs from category %s: %w", fromCategoryID, err)
	}

	moved, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	return moved, nil
}
