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

var _ repository.CommentRepository = (*CommentStore)(nil)

// CommentStore persists comments. Rows are tied to their post by a foreign
// key with ON DELETE CASCADE.
type CommentStore struct {
	db *DB
}

func NewCommentStore(db *DB) *CommentStore {
	return &CommentStore{db: db}
}

func (s *CommentStore) Create(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	comment.CreatedAt = time.Now()

	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, post_id, created_by, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		comment.ID,
		comment.PostID,
		comment.CreatedBy,
		comment.Content,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}

	return nil
}

func (s *CommentStore) ListByPost(ctx context.Context, postID string, opts repository.ListOptions) ([]model.Comment, error) {
	if err := parseID("post", postID); err != nil {
		return nil, err
	}

	limit := clampLimit(opts.Limit)
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, post_id, created_by, content, like_count, dislike_count, created_at
		 FROM comments WHERE post_id = ?
		 ORDER BY created_at LIMIT ? OFFSET ?`,
		postID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for post %s: %w", postID, err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0, limit)
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.CreatedBy, &c.Content,
			&c.LikeCount, &c.DislikeCount, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}

func (s *CommentStore) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	if err := parseID("comment", id); err != nil {
		return nil, err
	}

	var c model.Comment
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id, post_id, created_by, content, like_count, dislike_count, created_at
		 FROM comments WHERE id = ?`, id,
	).Scan(
		&c.ID, &c.PostID, &c.CreatedBy, &c.Content,
		&c.LikeCount, &c.DislikeCount, &c.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}

	return &c, nil
}

func (s *CommentStore) Delete(ctx context.Context, id string) error {
	if err := parseID("comment", id); err != nil {
		return err
	}

	result, err := s.db.conn.ExecContext(ctx,
		`DELETE FROM comments WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("comment", id)
	}

	return nil
}

// IncrementReaction bumps like_count or dislike_count by one, atomically.
func (s *CommentStore) IncrementReaction(ctx context.Context, id string, like bool) error {
	if err := parseID("comment", id); err != nil {
		return err
	}

	column := "dislike_count"
	if like {
		column = "like_count"
	}

	result, err := s.db.conn.ExecContext(ctx,
		fmt.Sprintf(`UPDATE comments SET %s = %s + 1 WHERE id = ?`, column, column),
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing %s on comment %s: %w", column, id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("comment", id)
	}

	return nil
}
