// Package services содержит бизнес-логику голосования за дизайны.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cookieflix/cookieflix-backend/internal/models"
	activityservice "github.com/cookieflix/cookieflix-backend/internal/services/activity"
	"github.com/cookieflix/cookieflix-backend/internal/storage/repository"
)

// Ошибки голосования, по которым обработчики выбирают HTTP-статус.
var (
	ErrSubscriptionRequired = errors.New("active subscription required")
	ErrDesignNotFound       = errors.New("design not found")
	ErrAlreadyVoted         = errors.New("already voted for this design")
	ErrQuotaExhausted       = errors.New("monthly vote quota exhausted")
)

// MonthlyQuota количество голосов на категорию в календарный месяц.
const MonthlyQuota = 3

// VoteRepository определяет методы хранилища, нужные сервису голосования.
type VoteRepository interface {
	// GetActiveSubscriptionByUserID возвращает активную подписку пользователя.
	GetActiveSubscriptionByUserID(ctx context.Context, userID int64) (*models.Subscription, error)
	// GetDesign возвращает дизайн по ID вместе с числом голосов.
	GetDesign(ctx context.Context, id int64) (*models.Design, error)
	// HasVote сообщает, голосовал ли пользователь за дизайн.
	HasVote(ctx context.Context, userID, designID int64) (bool, error)
	// CreateVote атомарно вставляет голос, если месячная квота не исчерпана.
	// Второй результат false означает, что квота не позволила вставку.
	CreateVote(ctx context.Context, vote models.Vote, categoryID int64, quota int, monthStart, nextMonthStart time.Time) (int64, bool, error)
	// CountMonthlyCategoryVotes подсчитывает голоса пользователя в категории за окно.
	CountMonthlyCategoryVotes(ctx context.Context, userID, categoryID int64, monthStart, nextMonthStart time.Time) (int, error)
}

// VoteResult возвращается после успешного голоса.
type VoteResult struct {
	VoteID         int64 `json:"vote_id"`
	DesignID       int64 `json:"design_id"`
	VotesRemaining int   `json:"votes_remaining"`
}

// ActivityRecorder фиксирует действия пользователя в журнале активности.
type ActivityRecorder interface {
	Record(ctx context.Context, userID *int64, action string, payload map[string]any)
}

// VotingService реализует голосование с месячной квотой по категориям.
type VotingService struct {
	repo     VoteRepository
	recorder ActivityRecorder
	log      *slog.Logger
}

// NewVotingService создает новый экземпляр VotingService.
func NewVotingService(repo VoteRepository, recorder ActivityRecorder, log *slog.Logger) *VotingService {
	return &VotingService{repo: repo, recorder: recorder, log: log}
}

// Vote регистрирует голос пользователя за дизайн. Порядок проверок:
// активная подписка, существование дизайна, повторный голос, квота.
// Квота проверяется атомарно вместе со вставкой, поэтому параллельные
// запросы не могут превысить лимит.
func (s *VotingService) Vote(ctx context.Context, userID, designID int64) (*VoteResult, error) {
	if _, err := s.repo.GetActiveSubscriptionByUserID(ctx, userID); err != nil {
		return nil, ErrSubscriptionRequired
	}

	design, err := s.repo.GetDesign(ctx, designID)
	if err != nil || !design.IsActive {
		return nil, ErrDesignNotFound
	}

	// повторный голос проверяется до квоты: иначе при исчерпанной квоте
	// условная вставка не дошла бы до уникального индекса
	voted, err := s.repo.HasVote(ctx, userID, designID)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, ErrAlreadyVoted
	}

	monthStart, nextMonthStart := monthWindow(time.Now().UTC())
	vote := models.Vote{UserID: userID, DesignID: designID}
	voteID, inserted, err := s.repo.CreateVote(ctx, vote, design.CategoryID, MonthlyQuota, monthStart, nextMonthStart)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, ErrAlreadyVoted
	}
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrQuotaExhausted
	}

	used, err := s.repo.CountMonthlyCategoryVotes(ctx, userID, design.CategoryID, monthStart, nextMonthStart)
	if err != nil {
		used = MonthlyQuota
	}

	s.recorder.Record(ctx, &userID, activityservice.ActionVoteCast,
		map[string]any{"design_id": designID, "category_id": design.CategoryID})

	s.log.Info("vote registered",
		slog.Int64("user_id", userID),
		slog.Int64("design_id", designID),
		slog.Int64("vote_id", voteID))

	return &VoteResult{
		VoteID:         voteID,
		DesignID:       designID,
		VotesRemaining: MonthlyQuota - used,
	}, nil
}

// VotesRemaining возвращает остаток квоты пользователя в категории за текущий месяц.
func (s *VotingService) VotesRemaining(ctx context.Context, userID, categoryID int64) (int, error) {
	monthStart, nextMonthStart := monthWindow(time.Now().UTC())
	used, err := s.repo.CountMonthlyCategoryVotes(ctx, userID, categoryID, monthStart, nextMonthStart)
	if err != nil {
		return 0, err
	}
	return MonthlyQuota - used, nil
}

// monthWindow возвращает границы календарного месяца UTC, содержащего t.
func monthWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
