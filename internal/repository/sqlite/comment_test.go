package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/safari-community/internal/apperror"
	"github.com/sakif/safari-community/internal/model"
	"github.com/sakif/safari-community/internal/repository"
)

func TestCommentCreateAndListByPost(t *testing.T) {
	db := newTestDB(t)
	posts := NewPostStore(db)
	comments := NewCommentStore(db)
	ctx := context.Background()

	p := createTestPost(t, posts, "hello", "lion@safari.example", true)
	other := createTestPost(t, posts, "other", "lion@safari.example", true)

	first := &model.Comment{PostID: p.ID, CreatedBy: "zebra@safari.example", Content: "first"}
	if err := comments.Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	second := &model.Comment{PostID: p.ID, CreatedBy: "zebra@safari.example", Content: "second"}
	if err := comments.Create(ctx, second); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	elsewhere := &model.Comment{PostID: other.ID, CreatedBy: "zebra@safari.example", Content: "elsewhere"}
	if err := comments.Create(ctx, elsewhere); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := comments.ListByPost(ctx, p.ID, repository.ListOptions{})
	if err != nil {
		t.Fatalf("ListByPost() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByPost() returned %d comments, want 2", len(got))
	}
	// Oldest first, unlike the post feed.
	if got[0].Content != "first" || got[1].Content != "second" {
		t.Errorf("comment order = [%s, %s], want oldest first", got[0].Content, got[1].Content)
	}
}

func TestCommentCreate_MissingPostRejected(t *testing.T) {
	comments := NewCommentStore(newTestDB(t))

	// The foreign key has nothing to reference.
	c := &model.Comment{PostID: "9m4e2mr0ui3e8a215n4g", CreatedBy: "zebra@safari.example", Content: "orphan"}
	if err := comments.Create(context.Background(), c); err == nil {
		t.Error("Create() should fail for a comment on a missing post")
	}
}

func TestCommentDelete(t *testing.T) {
	db := newTestDB(t)
	posts := NewPostStore(db)
	comments := NewCommentStore(db)
	ctx := context.Background()

	p := createTestPost(t, posts, "hello", "lion@safari.example", true)
	c := &model.Comment{PostID: p.ID, CreatedBy: "zebra@safari.example", Content: "bye"}
	if err := comments.Create(ctx, c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := comments.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := comments.GetByID(ctx, c.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestCommentIncrementReaction(t *testing.T) {
	db := newTestDB(t)
	posts := NewPostStore(db)
	comments := NewCommentStore(db)
	ctx := context.Background()

	p := createTestPost(t, posts, "hello", "lion@safari.example", true)
	c := &model.Comment{PostID: p.ID, CreatedBy: "zebra@safari.example", Content: "hot take"}
	if err := comments.Create(ctx, c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := comments.IncrementReaction(ctx, c.ID, true); err != nil {
		t.Fatalf("IncrementReaction(like) error = %v", err)
	}
	if err := comments.IncrementReaction(ctx, c.ID, false); err != nil {
		t.Fatalf("IncrementReaction(dislike) error = %v", err)
	}

	got, err := comments.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.LikeCount != 1 || got.DislikeCount != 1 {
		t.Errorf("counters = like %d / dislike %d, want 1 / 1", got.LikeCount, got.DislikeCount)
	}
}
