package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cookieflix/cookieflix-backend/internal/models"
	services "github.com/cookieflix/cookieflix-backend/internal/services/voting"
	"github.com/cookieflix/cookieflix-backend/internal/storage/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type VoteRepoMock struct {
	mock.Mock
}

func (m *VoteRepoMock) GetActiveSubscriptionByUserID(ctx context.Context, userID int64) (*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *VoteRepoMock) GetDesign(ctx context.Context, id int64) (*models.Design, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Design), args.Error(1)
}

func (m *VoteRepoMock) HasVote(ctx context.Context, userID, designID int64) (bool, error) {
	args := m.Called(ctx, userID, designID)
	return args.Bool(0), args.Error(1)
}

func (m *VoteRepoMock) CreateVote(ctx context.Context, vote models.Vote, categoryID int64, quota int, monthStart, nextMonthStart time.Time) (int64, bool, error) {
	args := m.Called(ctx, vote, categoryID, quota, monthStart, nextMonthStart)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *VoteRepoMock) CountMonthlyCategoryVotes(ctx context.Context, userID, categoryID int64, monthStart, nextMonthStart time.Time) (int, error) {
	args := m.Called(ctx, userID, categoryID, monthStart, nextMonthStart)
	return args.Int(0), args.Error(1)
}

type RecorderStub struct{}

func (RecorderStub) Record(_ context.Context, _ *int64, _ string, _ map[string]any) {}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestVotingService_Vote(t *testing.T) {
	activeSub := &models.Subscription{ID: 10, UserID: 1, IsActive: true}
	design := &models.Design{ID: 42, CategoryID: 3, IsActive: true}

	tests := []struct {
		name       string
		setupMocks func(r *VoteRepoMock)
		wantResult *services.VoteResult
		wantErr    error
	}{
		{
			name: "successful vote",
			setupMocks: func(r *VoteRepoMock) {
				r.On("GetActiveSubscriptionByUserID", mock.Anything, int64(1)).Return(activeSub, nil).Once()
				r.On("GetDesign", mock.Anything, int64(42)).Return(design, nil).Once()
				r.On("HasVote", mock.Anything, int64(1), int64(42)).Return(false, nil).Once()
				r.On("CreateVote", mock.Anything, mock.MatchedBy(func(v models.Vote) bool {
					return v.UserID == 1 && v.DesignID == 42
				}), int64(3), services.MonthlyQuota, mock.Anything, mock.Anything).
					Return(int64(100), true, nil).Once()
				r.On("CountMonthlyCategoryVotes", mock.Anything, int64(1), int64(3), mock.Anything, mock.Anything).
					Return(2, nil).Once()
			},
			wantResult: &services.VoteResult{VoteID: 100, DesignID: 42, VotesRemaining: 1},
		},
		{
			name: "no active subscription",
			setupMocks: func(r *VoteRepoMock) {
				r.On("GetActiveSubscriptionByUserID", mock.Anything, int64(1)).
					Return(nil, errors.New("not found")).Once()
			},
			wantErr: services.ErrSubscriptionRequired,
		},
		{
			name: "design not found",
			setupMocks: func(r *VoteRepoMock) {
				r.On("GetActiveSubscriptionByUserID", mock.Anything, int64(1)).Return(activeSub, nil).Once()
				r.On("GetDesign", mock.Anything, int64(42)).Return(nil, errors.New("not found")).Once()
			},
			wantErr: services.ErrDesignNotFound,
		},
		{
			name: "inactive design treated as missing",
			setupMocks: func(r *VoteRepoMock) {
				r.On("GetActiveSubscriptionByUserID", mock.Anything, int64(1)).Return(activeSub, nil).Once()
				r.On("GetDesign", mock.Anything, int64(42)).
					Return(&models.Design{ID: 42, CategoryID: 3, IsActive: false}, nil).Once()
			},
			wantErr: services.ErrDesignNotFound,
		},
		{
			name: "duplicate vote wins over exhausted quota",
			setupMocks: func(r *VoteRepoMock) {
				r.On("GetActiveSubscriptionByUserID", mock.Anything, int64(1)).Return(activeSub, nil).Once()
				r.On("GetDesign", mock.Anything, int64(42)).Return(design, nil).Once()
				// CreateVote не вызывается: повторный голос определяется до квоты
				r.On("HasVote", mock.Anything, int64(1), int64(42)).Return(true, nil).Once()
			},
			wantErr: services.ErrAlreadyVoted,
		},
		{
			name: "concurrent duplicate caught by unique index",
			setupMocks: func(r *VoteRepoMock) {
				r.On("GetActiveSubscriptionByUserID", mock.Anything, int64(1)).Return(activeSub, nil).Once()
				r.On("GetDesign", mock.Anything, int64(42)).Return(design, nil).Once()
				r.On("HasVote", mock.Anything, int64(1), int64(42)).Return(false, nil).Once()
				r.On("CreateVote", mock.Anything, mock.Anything, int64(3), services.MonthlyQuota, mock.Anything, mock.Anything).
					Return(int64(0), false, repository.ErrAlreadyExists).Once()
			},
			wantErr: services.ErrAlreadyVoted,
		},
		{
			name: "quota exhausted",
			setupMocks: func(r *VoteRepoMock) {
				r.On("GetActiveSubscriptionByUserID", mock.Anything, int64(1)).Return(activeSub, nil).Once()
				r.On("GetDesign", mock.Anything, int64(42)).Return(design, nil).Once()
				r.On("HasVote", mock.Anything, int64(1), int64(42)).Return(false, nil).Once()
				r.On("CreateVote", mock.Anything, mock.Anything, int64(3), services.MonthlyQuota, mock.Anything, mock.Anything).
					Return(int64(0), false, nil).Once()
			},
			wantErr: services.ErrQuotaExhausted,
		},
		{
			name: "storage error",
			setupMocks: func(r *VoteRepoMock) {
				r.On("GetActiveSubscriptionByUserID", mock.Anything, int64(1)).Return(activeSub, nil).Once()
				r.On("GetDesign", mock.Anything, int64(42)).Return(design, nil).Once()
				r.On("HasVote", mock.Anything, int64(1), int64(42)).Return(false, nil).Once()
				r.On("CreateVote", mock.Anything, mock.Anything, int64(3), services.MonthlyQuota, mock.Anything, mock.Anything).
					Return(int64(0), false, errors.New("db error")).Once()
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(VoteRepoMock)
			svc := services.NewVotingService(repo, RecorderStub{}, newNoopLogger())

			tt.setupMocks(repo)

			got, err := svc.Vote(context.Background(), 1, 42)
			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantResult, got)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestVotingService_VotesRemaining(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *VoteRepoMock)
		want       int
		wantErr    bool
	}{
		{
			name: "two votes used",
			setupMocks: func(r *VoteRepoMock) {
				r.On("CountMonthlyCategoryVotes", mock.Anything, int64(1), int64(3), mock.Anything, mock.Anything).
					Return(2, nil).Once()
			},
			want: 1,
		},
		{
			name: "no votes used",
			setupMocks: func(r *VoteRepoMock) {
				r.On("CountMonthlyCategoryVotes", mock.Anything, int64(1), int64(3), mock.Anything, mock.Anything).
					Return(0, nil).Once()
			},
			want: services.MonthlyQuota,
		},
		{
			name: "storage error",
			setupMocks: func(r *VoteRepoMock) {
				r.On("CountMonthlyCategoryVotes", mock.Anything, int64(1), int64(3), mock.Anything, mock.Anything).
					Return(0, errors.New("db error")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(VoteRepoMock)
			svc := services.NewVotingService(repo, RecorderStub{}, newNoopLogger())

			tt.setupMocks(repo)

			got, err := svc.VotesRemaining(context.Background(), 1, 3)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			repo.AssertExpectations(t)
		})
	}
}
