package service

// Hand-written in-memory mocks for the repository interfaces. They keep
// records in maps, mint sequential ids, and let individual tests force
// errors through the fail* hooks.

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/sakif/safari-community/internal/apperror"
	"github.com/sakif/safari-community/internal/model"
	"github.com/sakif/safari-community/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// -------------------------------------------------------------------------
// categories
// -------------------------------------------------------------------------

type mockCategoryRepo struct {
	categories map[string]*model.Category
	nextID     int
	failEnsure error
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[string]*model.Category)}
}

func (m *mockCategoryRepo) Create(_ context.Context, c *model.Category) error {
	m.nextID++
	c.ID = fmt.Sprintf("cat-%d", m.nextID)
	stored := *c
	m.categories[c.ID] = &stored
	return nil
}

func (m *mockCategoryRepo) List(_ context.Context, _ repository.ListOptions) ([]model.Category, error) {
	out := make([]model.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id string) (*model.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, apperror.NotFound("category", id)
	}
	out := *c
	return &out, nil
}

func (m *mockCategoryRepo) Update(_ context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, apperror.NotFound("category", id)
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	out := *c
	return &out, nil
}

func (m *mockCategoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.categories[id]; !ok {
		return apperror.NotFound("category", id)
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepo) EnsureDefault(ctx context.Context, owner string) (string, error) {
	if m.failEnsure != nil {
		return "", m.failEnsure
	}
	for id, c := range m.categories {
		if c.CreatedBy == owner && c.Name == model.DefaultCategoryName {
			return id, nil
		}
	}
	c := &model.Category{Name: model.DefaultCategoryName, CreatedBy: owner}
	if err := m.Create(ctx, c); err != nil {
		return "", err
	}
	return c.ID, nil
}

// -------------------------------------------------------------------------
// programs
// -------------------------------------------------------------------------

type mockProgramRepo struct {
	programs map[string]*model.Program
	nextID   int
}

func newMockProgramRepo() *mockProgramRepo {
	return &mockProgramRepo{programs: make(map[string]*model.Program)}
}

func (m *mockProgramRepo) Create(_ context.Context, p *model.Program) error {
	m.nextID++
	p.ID = fmt.Sprintf("prog-%d", m.nextID)
	stored := *p
	m.programs[p.ID] = &stored
	return nil
}

func (m *mockProgramRepo) List(_ context.Context, categoryID string, _ repository.ListOptions) ([]model.Program, error) {
	out := []model.Program{}
	for _, p := range m.programs {
		if categoryID == "" || p.CategoryID == categoryID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProgramRepo) GetByID(_ context.Context, id string) (*model.Program, error) {
	p, ok := m.programs[id]
	if !ok {
		return nil, apperror.NotFound("program", id)
	}
	out := *p
	return &out, nil
}

func (m *mockProgramRepo) Update(_ context.Context, id string, patch model.ProgramPatch) (*model.Program, error) {
	p, ok := m.programs[id]
	if !ok {
		return nil, apperror.NotFound("program", id)
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
	out := *p
	return &out, nil
}

func (m *mockProgramRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.programs[id]; !ok {
		return apperror.NotFound("program", id)
	}
	delete(m.programs, id)
	return nil
}

func (m *mockProgramRepo) RetargetCategory(_ context.Context, from, to string) (int64, error) {
	var moved int64
	for _, p := range m.programs {
		if p.CategoryID == from {
			p.CategoryID = to
			moved++
		}
	}
	return moved, nil
}

// -------------------------------------------------------------------------
// presets
// -------------------------------------------------------------------------

type mockPresetRepo struct {
	presets map[string]*model.Preset
	nextID  int
}

func newMockPresetRepo() *mockPresetRepo {
	return &mockPresetRepo{presets: make(map[string]*model.Preset)}
}

func (m *mockPresetRepo) Create(_ context.Context, p *model.Preset) error {
	m.nextID++
	p.ID = fmt.Sprintf("preset-%d", m.nextID)
	stored := *p
	m.presets[p.ID] = &stored
	return nil
}

func (m *mockPresetRepo) List(_ context.Context, _ repository.ListOptions) ([]model.Preset, error) {
	out := make([]model.Preset, 0, len(m.presets))
	for _, p := range m.presets {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockPresetRepo) GetByID(_ context.Context, id string) (*model.Preset, error) {
	p, ok := m.presets[id]
	if !ok {
		return nil, apperror.NotFound("preset", id)
	}
	out := *p
	return &out, nil
}

func (m *mockPresetRepo) Update(_ context.Context, id string, patch model.PresetPatch) (*model.Preset, error) {
	p, ok := m.presets[id]
	if !ok {
		return nil, apperror.NotFound("preset", id)
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.CategoryIDs != nil {
		p.CategoryIDs = *patch.CategoryIDs
	}
	if patch.Programs != nil {
		p.Programs = *patch.Programs
	}
	if patch.IsPublic != nil {
		p.IsPublic = *patch.IsPublic
	}
	out := *p
	return &out, nil
}

func (m *mockPresetRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.presets[id]; !ok {
		return apperror.NotFound("preset", id)
	}
	delete(m.presets, id)
	return nil
}

func (m *mockPresetRepo) ExistsByOwnerAndName(_ context.Context, owner, name, excludeID string) (bool, error) {
	for id, p := range m.presets {
		if id != excludeID && p.CreatedBy == owner && p.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// -------------------------------------------------------------------------
// posts
// -------------------------------------------------------------------------

type mockPostRepo struct {
	posts          map[string]*model.Post
	nextID         int
	failIncrements error
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: make(map[string]*model.Post)}
}

func (m *mockPostRepo) Create(_ context.Context, p *model.Post) error {
	m.nextID++
	p.ID = fmt.Sprintf("post-%d", m.nextID)
	stored := *p
	m.posts[p.ID] = &stored
	return nil
}

func (m *mockPostRepo) List(_ context.Context, publicOnly bool, _ repository.ListOptions) ([]model.Post, error) {
	out := []model.Post{}
	for _, p := range m.posts {
		if !publicOnly || p.IsPublic {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPostRepo) GetByID(_ context.Context, id string) (*model.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	out := *p
	return &out, nil
}

func (m *mockPostRepo) Update(_ context.Context, id string, patch model.PostPatch) (*model.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.PresetID != nil {
		p.PresetID = *patch.PresetID
	}
	if patch.IsPublic != nil {
		p.IsPublic = *patch.IsPublic
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	out := *p
	return &out, nil
}

func (m *mockPostRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.posts[id]; !ok {
		return apperror.NotFound("post", id)
	}
	delete(m.posts, id)
	return nil
}

func (m *mockPostRepo) IncrementReaction(_ context.Context, id string, like bool) error {
	p, ok := m.posts[id]
	if !ok {
		return apperror.NotFound("post", id)
	}
	if like {
		p.LikeCount++
	} else {
		p.DislikeCount++
	}
	return nil
}

func (m *mockPostRepo) IncrementScrap(_ context.Context, id string, delta int64) error {
	p, ok := m.posts[id]
	if !ok {
		return apperror.NotFound("post", id)
	}
	p.ScrapCount += delta
	return nil
}

func (m *mockPostRepo) IncrementComments(_ context.Context, id string, delta int64) error {
	if m.failIncrements != nil {
		return m.failIncrements
	}
	p, ok := m.posts[id]
	if !ok {
		return apperror.NotFound("post", id)
	}
	p.CommentCount += delta
	return nil
}

// -------------------------------------------------------------------------
// comments
// -------------------------------------------------------------------------

type mockCommentRepo struct {
	comments map[string]*model.Comment
	nextID   int
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{comments: make(map[string]*model.Comment)}
}

func (m *mockCommentRepo) Create(_ context.Context, c *model.Comment) error {
	m.nextID++
	c.ID = fmt.Sprintf("comment-%d", m.nextID)
	stored := *c
	m.comments[c.ID] = &stored
	return nil
}

func (m *mockCommentRepo) ListByPost(_ context.Context, postID string, _ repository.ListOptions) ([]model.Comment, error) {
	out := []model.Comment{}
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCommentRepo) GetByID(_ context.Context, id string) (*model.Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment", id)
	}
	out := *c
	return &out, nil
}

func (m *mockCommentRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.comments[id]; !ok {
		return apperror.NotFound("comment", id)
	}
	delete(m.comments, id)
	return nil
}

func (m *mockCommentRepo) IncrementReaction(_ context.Context, id string, like bool) error {
	c, ok := m.comments[id]
	if !ok {
		return apperror.NotFound("comment", id)
	}
	if like {
		c.LikeCount++
	} else {
		c.DislikeCount++
	}
	return nil
}

// -------------------------------------------------------------------------
// users
// -------------------------------------------------------------------------

type mockUserRepo struct {
	users  map[string]*model.User // keyed by email
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *model.User) error {
	if _, ok := m.users[u.Email]; ok {
		return apperror.Conflict(fmt.Sprintf("account already exists for %s", u.Email))
	}
	m.nextID++
	u.ID = fmt.Sprintf("user-%d", m.nextID)
	stored := *u
	m.users[u.Email] = &stored
	return nil
}

func (m *mockUserRepo) Upsert(_ context.Context, u *model.User) error {
	if existing, ok := m.users[u.Email]; ok {
		u.ID = existing.ID
		existing.Username = u.Username
		existing.AuthProvider = u.AuthProvider
		return nil
	}
	m.nextID++
	u.ID = fmt.Sprintf("user-%d", m.nextID)
	stored := *u
	m.users[u.Email] = &stored
	return nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	out := *u
	return &out, nil
}
