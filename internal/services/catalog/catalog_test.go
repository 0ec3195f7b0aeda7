package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cookieflix/cookieflix-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) ListCategories(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *RepoMock) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *RepoMock) ListDesigns(ctx context.Context, categoryID *int64, limit, offset int) ([]*models.Design, error) {
	args := m.Called(ctx, categoryID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Design), args.Error(1)
}

func (m *RepoMock) GetDesign(ctx context.Context, id int64) (*models.Design, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Design), args.Error(1)
}

func (m *RepoMock) ListVotedDesigns(ctx context.Context, userID int64, categoryID *int64) ([]*models.Design, error) {
	args := m.Called(ctx, userID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Design), args.Error(1)
}

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestCatalogService_ListCategories(t *testing.T) {
	categories := []*models.Category{
		{ID: 1, Name: "Classici", Slug: "classici", IsActive: true},
		{ID: 2, Name: "Cioccolato", Slug: "cioccolato", IsActive: true},
	}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, c *CacheMock)
		want       []*models.Category
		wantErr    bool
	}{
		{
			name: "cache hit",
			setupMocks: func(_ *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, "categories:20:0", mock.Anything).
					Return(true, nil).
					Run(func(args mock.Arguments) {
						ptr := args.Get(2).(*[]*models.Category)
						*ptr = categories
					}).Once()
			},
			want: categories,
		},
		{
			name: "cache miss then repo",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, "categories:20:0", mock.Anything).Return(false, nil).Once()
				r.On("ListCategories", mock.Anything, 20, 0).Return(categories, nil).Once()
				c.On("Set", mock.Anything, "categories:20:0", categories, 10*time.Minute).Return(nil).Once()
			},
			want: categories,
		},
		{
			name: "cache failure falls back to repo",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, "categories:20:0", mock.Anything).
					Return(false, errors.New("redis down")).Once()
				r.On("ListCategories", mock.Anything, 20, 0).Return(categories, nil).Once()
				c.On("Set", mock.Anything, "categories:20:0", categories, 10*time.Minute).
					Return(errors.New("redis down")).Once()
			},
			want: categories,
		},
		{
			name: "repo error",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, "categories:20:0", mock.Anything).Return(false, nil).Once()
				r.On("ListCategories", mock.Anything, 20, 0).Return(nil, errors.New("db error")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			svc := NewCatalogService(repo, cache, newNoopLogger())

			tt.setupMocks(repo, cache)

			got, err := svc.ListCategories(context.Background(), 20, 0)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestCatalogService_ListDesigns(t *testing.T) {
	category := &models.Category{ID: 3, Slug: "cioccolato", IsActive: true}
	designs := []*models.Design{{ID: 42, CategoryID: 3, IsActive: true}}

	tests := []struct {
		name         string
		categorySlug *string
		setupMocks   func(r *RepoMock)
		want         []*models.Design
		wantErr      error
	}{
		{
			name:         "all designs without filter",
			categorySlug: nil,
			setupMocks: func(r *RepoMock) {
				r.On("ListDesigns", mock.Anything, (*int64)(nil), 20, 0).Return(designs, nil).Once()
			},
			want: designs,
		},
		{
			name:         "filter by category slug",
			categorySlug: strPtr("cioccolato"),
			setupMocks: func(r *RepoMock) {
				r.On("GetCategoryBySlug", mock.Anything, "cioccolato").Return(category, nil).Once()
				r.On("ListDesigns", mock.Anything, &category.ID, 20, 0).Return(designs, nil).Once()
			},
			want: designs,
		},
		{
			name:         "unknown category slug",
			categorySlug: strPtr("missing"),
			setupMocks: func(r *RepoMock) {
				r.On("GetCategoryBySlug", mock.Anything, "missing").
					Return(nil, errors.New("not found")).Once()
			},
			wantErr: ErrCategoryNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := NewCatalogService(repo, new(CacheMock), newNoopLogger())

			tt.setupMocks(repo)

			got, err := svc.ListDesigns(context.Background(), tt.categorySlug, 20, 0)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			repo.AssertExpectations(t)
		})
	}
}

func strPtr(s string) *string { return &s }
