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

var _ repository.CategoryRepository = (*CategoryStore)(nil)

// CategoryStore persists categories, including the lazily-created per-owner
// fallback category.
type CategoryStore struct {
	db *DB
}

func NewCategoryStore(db *DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func (s *CategoryStore) Create(ctx context.Context, category *model.Category) error {
	category.ID = xid.New().String()

	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO categories (id, name, created_by) VALUES (?, ?, ?)`,
		category.ID,
		category.Name,
		category.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// Only the fallback name is constrained (partial unique index).
			return apperror.Conflict(fmt.Sprintf("category %q already exists for this owner", category.Name))
		}
		return fmt.Errorf("sqlite: creating category: %w", err)
	}

	return nil
}

func (s *CategoryStore) List(ctx context.Context, opts repository.ListOptions) ([]model.Category, error) {
	limit := clampLimit(opts.Limit)
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, name, created_by FROM categories
		 ORDER BY id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.Category, 0, limit)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedBy); err != nil {
			return nil, fmt.Errorf("sqlite: scanning category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating categories: %w", err)
	}

	return categories, nil
}

func (s *CategoryStore) GetByID(ctx context.Context, id string) (*model.Category, error) {
	if err := parseID("category", id); err != nil {
		return nil, err
	}

	var c model.Category
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id, name, created_by FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedBy)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("category", id)
		}
		return nil, fmt.Errorf("sqlite: getting category %s: %w", id, err)
	}

	return &c, nil
}

// Update applies a partial merge: only fields present in the patch change.
func (s *CategoryStore) Update(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	if err := parseID("category", id); err != nil {
		return nil, err
	}

	if patch.Name != nil {
		result, err := s.db.conn.ExecContext(ctx,
			`UPDATE categories SET name = ? WHERE id = ?`,
			*patch.Name, id,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, apperror.Conflict("category rename collides with the fallback category")
			}
			return nil, fmt.Errorf("sqlite: updating category %s: %w", id, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if affected == 0 {
			return nil, apperror.NotFound("category", id)
		}
	}

	return s.GetByID(ctx, id)
}

func (s *CategoryStore) Delete(ctx context.Context, id string) error {
	if err := parseID("category", id); err != nil {
		return err
	}

	result, err := s.db.conn.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting category %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("category", id)
	}

	return nil
}

// EnsureDefault returns the id of the owner's fallback category, creating
// it if absent.
//
// Idempotent under concurrency: the partial unique index on
// categories(created_by) WHERE name = 'uncategorized' guarantees at most one
// fallback row per owner. INSERT OR IGNORE swallows the race where another
// request created it between our lookup and insert; the re-read picks up
// whichever insert won.
func (s *CategoryStore) EnsureDefault(ctx context.Context, owner string) (string, error) {
	id, err := s.defaultID(ctx, owner)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("sqlite: looking up default category for %s: %w", owner, err)
	}

	_, err = s.db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO categories (id, name, created_by) VALUES (?, ?, ?)`,
		xid.New().String(),
		model.DefaultCategoryName,
		owner,
	)
	if err != nil {
		return "", fmt.Errorf("sqlite: creating default category for %s: %w", owner, err)
	}

	id, err = s.defaultID(ctx, owner)
	if err != nil {
		return "", fmt.Errorf("sqlite: re-reading default category for %s: %w", owner, err)
	}

	return id, nil
}

func (s *CategoryStore) defaultID(ctx context.Context, owner string) (string, error) {
	var id string
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id FROM categories WHERE name = ? AND created_by = ?`,
		model.DefaultCategoryName, owner,
	).Scan(&id)
	return id, err
}
