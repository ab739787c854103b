package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/safari-community/internal/apperror"
	"github.com/sakif/safari-community/internal/model"
	"github.com/sakif/safari-community/internal/repository"
)

var _ repository.PostRepository = (*PostStore)(nil)

// PostStore persists posts. Counters move only through the Increment*
// methods — single atomic "n = n + delta" statements — so concurrent
// reactions never lose updates to read-modify-write races.
type PostStore struct {
	db *DB
}

func NewPostStore(db *DB) *PostStore {
	return &PostStore{db: db}
}

func (s *PostStore) Create(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()

	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO posts (id, title, content, preset_id, created_by, is_public, image_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.Title,
		post.Content,
		post.PresetID,
		post.CreatedBy,
		post.IsPublic,
		post.ImageURL,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	return nil
}

const postColumns = `id, title, content, preset_id, created_by, is_public, image_url,
	like_count, dislike_count, comment_count, scrap_count, created_at, updated_at`

// List returns posts newest-first. publicOnly restricts to is_public rows
// (the anonymous feed); owners see their private posts via GetByID.
func (s *PostStore) List(ctx context.Context, publicOnly bool, opts repository.ListOptions) ([]model.Post, error) {
	limit := clampLimit(opts.Limit)
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	args := []any{}
	if publicOnly {
		query += ` WHERE is_public = 1`
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0, limit)
	for rows.Next() {
		var p model.Post
		if err := scanPost(rows.Scan, &p); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

func (s *PostStore) GetByID(ctx context.Context, id string) (*model.Post, error) {
	if err := parseID("post", id); err != nil {
		return nil, err
	}

	var p model.Post
	row := s.db.conn.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id,
	)
	if err := scanPost(row.Scan, &p); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	return &p, nil
}

// Update applies a partial merge. Counters are not touchable here — the
// patch has no fields for them.
func (s *PostStore) Update(ctx context.Context, id string, patch model.PostPatch) (*model.Post, error) {
	if err := parseID("post", id); err != nil {
		return nil, err
	}

	sets := []string{}
	args := []any{}
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *patch.Content)
	}
	if patch.PresetID != nil {
		sets = append(sets, "preset_id = ?")
		args = append(args, *patch.PresetID)
	}
	if patch.IsPublic != nil {
		sets = append(sets, "is_public = ?")
		args = append(args, *patch.IsPublic)
	}
	if patch.ImageURL != nil {
		sets = append(sets, "image_url = ?")
		args = append(args, *patch.ImageURL)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = ?")
		args = append(args, time.Now())

		query := `UPDATE posts SET ` + joinSets(sets) + ` WHERE id = ?`
		args = append(args, id)

		result, err := s.db.conn.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("sqlite: updating post %s: %w", id, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if affected == 0 {
			return nil, apperror.NotFound("post", id)
		}
	}

	return s.GetByID(ctx, id)
}

// Delete removes the post. The comments table declares ON DELETE CASCADE on
// post_id, so the store drops the post's comments in the same statement.
func (s *PostStore) Delete(ctx context.Context, id string) error {
	if err := parseID("post", id); err != nil {
		return err
	}

	result, err := s.db.conn.ExecContext(ctx,
		`DELETE FROM posts WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("post", id)
	}

	return nil
}

// IncrementReaction bumps like_count or dislike_count by one.
func (s *PostStore) IncrementReaction(ctx context.Context, id string, like bool) error {
	column := "dislike_count"
	if like {
		column = "like_count"
	}
	return s.increment(ctx, id, column, 1)
}

// IncrementScrap bumps scrap_count by delta.
func (s *PostStore) IncrementScrap(ctx context.Context, id string, delta int64) error {
	return s.increment(ctx, id, "scrap_count", delta)
}

// IncrementComments bumps comment_count by delta (+1 on comment create,
// -1 on comment delete).
func (s *PostStore) IncrementComments(ctx context.Context, id string, delta int64) error {
	return s.increment(ctx, id, "comment_count", delta)
}

// increment is the single write path for counters. column is always one of
// our own constants, never user input.
func (s *PostStore) increment(ctx context.Context, id, column string, delta int64) error {
	if err := parseID("post", id); err != nil {
		return err
	}

	result, err := s.db.conn.ExecContext(ctx,
		fmt.Sprintf(`UPDATE posts SET %s = %s + ? WHERE id = ?`, column, column),
		delta, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing %s on post %s: %w", column, id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("post", id)
	}

	return nil
}

func scanPost(scan func(dest ...any) error, p *model.Post) error {
	return scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&p.PresetID,
		&p.CreatedBy,
		&p.IsPublic,
		&p.ImageURL,
		&p.LikeCount,
		&p.DislikeCount,
		&p.CommentCount,
		&p.ScrapCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}
