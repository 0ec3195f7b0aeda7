// Package services содержит бизнес-логику административных сводок и выборок.
package services

import (
	"context"
	"log/slog"

	"github.com/cookieflix/cookieflix-backend/internal/models"
)

// StatsRepository определяет методы хранилища для административных сводок.
type StatsRepository interface {
	// CountUsersStats агрегирует статистику по пользователям.
	CountUsersStats(ctx context.Context) (*models.UsersStats, error)
	// CountSubscriptionsStats агрегирует статистику по подпискам.
	CountSubscriptionsStats(ctx context.Context) (*models.SubscriptionsStats, error)
	// ListCategoriesAdmin возвращает категории с числом дизайнов и общим количеством.
	ListCategoriesAdmin(ctx context.Context, search *string, isActive *bool, limit, offset int) ([]*models.Category, []int, int, error)
	// ListDesignsAdmin возвращает дизайны по фильтрам с общим количеством.
	ListDesignsAdmin(ctx context.Context, search *string, categoryID *int64, isActive *bool, limit, offset int) ([]*models.Design, int, error)
}

// AdminCategory категория со счётчиком дизайнов для административной выборки.
type AdminCategory struct {
	models.Category
	DesignCount int `json:"design_count"`
}

// AdminCategoriesPage страница административной выборки категорий.
type AdminCategoriesPage struct {
	Categories []AdminCategory `json:"categories"`
	Total      int             `json:"total"`
}

// AdminDesignsPage страница административной выборки дизайнов.
type AdminDesignsPage struct {
	Designs []*models.Design `json:"designs"`
	Total   int              `json:"total"`
}

// StatsService реализует административные сводки.
type StatsService struct {
	repo StatsRepository
	log  *slog.Logger
}

// NewStatsService создает новый экземпляр StatsService.
func NewStatsService(repo StatsRepository, log *slog.Logger) *StatsService {
	return &StatsService{repo: repo, log: log}
}

// UsersStats возвращает агрегированную статистику по пользователям.
func (s *StatsService) UsersStats(ctx context.Context) (*models.UsersStats, error) {
	return s.repo.CountUsersStats(ctx)
}

// SubscriptionsStats возвращает агрегированную статистику по подпискам.
func (s *StatsService) SubscriptionsStats(ctx context.Context) (*models.SubscriptionsStats, error) {
	return s.repo.CountSubscriptionsStats(ctx)
}

// Categories возвращает страницу категорий для администратора.
func (s *StatsService) Categories(ctx context.Context, search *string, isActive *bool, limit, offset int) (*AdminCategoriesPage, error) {
	categories, designCounts, total, err := s.repo.ListCategoriesAdmin(ctx, search, isActive, limit, offset)
	if err != nil {
		return nil, err
	}
	page := &AdminCategoriesPage{
		Categories: make([]AdminCategory, 0, len(categories)),
		Total:      total,
	}
	for i, category := range categories {
		page.Categories = append(page.Categories, AdminCategory{
			Category:    *category,
			DesignCount: designCounts[i],
		})
	}
	return page, nil
}

// Designs возвращает страницу дизайнов для администратора.
func (s *StatsService) Designs(ctx context.Context, search *string, categoryID *int64, isActive *bool, limit, offset int) (*AdminDesignsPage, error) {
	designs, total, err := s.repo.ListDesignsAdmin(ctx, search, categoryID, isActive, limit, offset)
	if err != nil {
		return nil, err
	}
	return &AdminDesignsPage{Designs: designs, Total: total}, nil
}
