// Package services содержит бизнес-логику каталога: категории и дизайны печенья.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cookieflix/cookieflix-backend/internal/lib/sl"
	"github.com/cookieflix/cookieflix-backend/internal/models"
)

// ErrCategoryNotFound возвращается, когда указанная категория не существует.
var ErrCategoryNotFound = errors.New("category not found")

// categoriesCacheTTL время жизни кеша списка категорий; справочник меняется редко.
const categoriesCacheTTL = 10 * time.Minute

// CatalogRepository определяет методы для чтения каталога из хранилища.
type CatalogRepository interface {
	// ListCategories возвращает активные категории с пагинацией.
	ListCategories(ctx context.Context, limit, offset int) ([]*models.Category, error)
	// GetCategoryBySlug возвращает активную категорию по slug.
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	// ListDesigns возвращает активные дизайны, опционально в одной категории.
	ListDesigns(ctx context.Context, categoryID *int64, limit, offset int) ([]*models.Design, error)
	// GetDesign возвращает дизайн по ID вместе с числом голосов.
	GetDesign(ctx context.Context, id int64) (*models.Design, error)
	// ListVotedDesigns возвращает дизайны, за которые голосовал пользователь.
	ListVotedDesigns(ctx context.Context, userID int64, categoryID *int64) ([]*models.Design, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(ctx context.Context, key string) error
}

// CatalogService реализует чтение каталога с кешированием списка категорий.
type CatalogService struct {
	repo  CatalogRepository
	cache Cache
	log   *slog.Logger
}

// NewCatalogService создает новый экземпляр CatalogService.
func NewCatalogService(repo CatalogRepository, cache Cache, log *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// ListCategories возвращает активные категории, используя кеш или репозиторий.
func (s *CatalogService) ListCategories(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	var result []*models.Category
	cacheKey := fmt.Sprintf("categories:%d:%d", limit, offset)
	found, err := s.cache.Get(ctx, cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read categories from cache", sl.Err(err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.ListCategories(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cacheKey, result, categoriesCacheTTL); err != nil {
		s.log.Warn("failed to cache categories", slog.String("key", cacheKey), sl.Err(err))
	}
	return result, nil
}

// GetCategory возвращает активную категорию по slug.
func (s *CatalogService) GetCategory(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.repo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// ListDesigns возвращает активные дизайны, опционально отфильтрованные
// по slug категории.
func (s *CatalogService) ListDesigns(ctx context.Context, categorySlug *string, limit, offset int) ([]*models.Design, error) {
	var categoryID *int64
	if categorySlug != nil {
		category, err := s.repo.GetCategoryBySlug(ctx, *categorySlug)
		if err != nil {
			return nil, ErrCategoryNotFound
		}
		categoryID = &category.ID
	}
	return s.repo.ListDesigns(ctx, categoryID, limit, offset)
}

// GetDesign возвращает дизайн по ID вместе с числом голосов.
func (s *CatalogService) GetDesign(ctx context.Context, id int64) (*models.Design, error) {
	return s.repo.GetDesign(ctx, id)
}

// ListVotedDesigns возвращает дизайны, за которые голосовал пользователь,
// опционально в одной категории.
func (s *CatalogService) ListVotedDesigns(ctx context.Context, userID int64, categorySlug *string) ([]*models.Design, error) {
	var categoryID *int64
	if categorySlug != nil {
		category, err := s.repo.GetCategoryBySlug(ctx, *categorySlug)
		if err != nil {
			return nil, ErrCategoryNotFound
		}
		categoryID = &category.ID
	}
	return s.repo.ListVotedDesigns(ctx, userID, categoryID)
}
