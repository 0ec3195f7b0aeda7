// Package services содержит бизнес-логику жизненного цикла подписки:
// тарифы, оформление через платёжного провайдера, вебхуки биллинга
// и предпочитаемые категории.
package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/cookieflix/cookieflix-backend/internal/lib/sl"
	"github.com/cookieflix/cookieflix-backend/internal/models"
	"github.com/cookieflix/cookieflix-backend/internal/paymentprovider"
	activityservice "github.com/cookieflix/cookieflix-backend/internal/services/activity"
	"github.com/cookieflix/cookieflix-backend/internal/storage/repository"
)

// Ошибки уровня сервиса, по которым обработчики выбирают HTTP-статус.
var (
	ErrPlanNotFound          = errors.New("plan not found")
	ErrInvalidBillingPeriod  = errors.New("invalid billing period")
	ErrAlreadySubscribed     = errors.New("active subscription already exists")
	ErrPriceNotMapped        = errors.New("no price configured for plan and period")
	ErrNoActiveSubscription  = errors.New("no active subscription")
	ErrCategoryQuotaExceeded = errors.New("too many categories for plan")
	ErrUnknownCategory       = errors.New("unknown or inactive category")
	ErrSessionNotFound       = errors.New("checkout session not found")
	ErrUserMismatch          = errors.New("session belongs to another user")
)

// Статусы подтверждения оформления.
const (
	ConfirmStatusRequiresLogin = "requires_login"
	ConfirmStatusPending       = "pending"
	ConfirmStatusSuccess       = "success"
)

// SubscriptionRepository определяет методы хранилища, нужные сервису подписок.
type SubscriptionRepository interface {
	// ListPlans возвращает активные тарифы с пагинацией.
	ListPlans(ctx context.Context, limit, offset int) ([]*models.Plan, error)
	// GetPlanBySlug возвращает активный тариф по slug.
	GetPlanBySlug(ctx context.Context, slug string) (*models.Plan, error)
	// GetPlan возвращает тариф по ID независимо от активности.
	GetPlan(ctx context.Context, id int64) (*models.Plan, error)
	// CreateSubscription вставляет подписку и возвращает её ID.
	CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error)
	// GetActiveSubscriptionByUserID возвращает активную подписку пользователя.
	GetActiveSubscriptionByUserID(ctx context.Context, userID int64) (*models.Subscription, error)
	// GetSubscriptionByProviderID возвращает подписку по ID у провайдера.
	GetSubscriptionByProviderID(ctx context.Context, providerSubscriptionID string) (*models.Subscription, error)
	// UpdateSubscriptionPeriod продлевает или деактивирует подписку по вебхуку.
	UpdateSubscriptionPeriod(ctx context.Context, providerSubscriptionID string, periodEnd time.Time, isActive bool) (int, error)
	// DeactivateSubscription выключает подписку по ID у провайдера.
	DeactivateSubscription(ctx context.Context, providerSubscriptionID string) (int, error)
	// GetUser возвращает пользователя по ID.
	GetUser(ctx context.Context, id int64) (*models.User, error)
	// SetProviderCustomerID сохраняет идентификатор клиента у провайдера.
	SetProviderCustomerID(ctx context.Context, userID int64, customerID string) error
	// GetCategoriesByIDs возвращает активные категории по списку ID.
	GetCategoriesByIDs(ctx context.Context, ids []int64) ([]*models.Category, error)
	// ReplacePreferredCategories атомарно заменяет набор категорий пользователя.
	ReplacePreferredCategories(ctx context.Context, userID int64, categoryIDs []int64) error
}

// PaymentProvider описывает операции платёжного провайдера.
type PaymentProvider interface {
	CreateCustomer(ctx context.Context, req paymentprovider.CreateCustomerRequest) (*paymentprovider.CreateCustomerResponse, error)
	CreateCheckoutSession(ctx context.Context, req paymentprovider.CreateCheckoutSessionRequest) (*paymentprovider.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*paymentprovider.CheckoutSession, error)
}

// NotificationPublisher публикует сообщения биллинга в очередь уведомлений.
type NotificationPublisher interface {
	Publish(routingKey string, message any) error
}

// ActivityRecorder фиксирует действия пользователя в журнале активности.
type ActivityRecorder interface {
	Record(ctx context.Context, userID *int64, activityType string, payload map[string]any)
}

// ConfirmResult результат подтверждения оформления.
type ConfirmResult struct {
	Status         string `json:"status"`
	SubscriptionID *int64 `json:"subscription_id,omitempty"`
}

// CheckoutLink ссылка на хостовую страницу оплаты провайдера.
type CheckoutLink struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// SubscriptionService реализует жизненный цикл подписки.
type SubscriptionService struct {
	repo        SubscriptionRepository
	provider    PaymentProvider
	publisher   NotificationPublisher
	recorder    ActivityRecorder
	frontendURL string
	log         *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, provider PaymentProvider,
	publisher NotificationPublisher, recorder ActivityRecorder,
	frontendURL string, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:        repo,
		provider:    provider,
		publisher:   publisher,
		recorder:    recorder,
		frontendURL: frontendURL,
		log:         log,
	}
}

// priceTable сопоставляет (slug тарифа, период оплаты) идентификатору цены
// у платёжного провайдера. Таблица статическая: цены заводятся в кабинете
// провайдера вместе с тарифами.
var priceTable = map[string]map[string]string{
	"starter": {
		models.PeriodMonthly:    "price_starter_monthly",
		models.PeriodQuarterly:  "price_starter_quarterly",
		models.PeriodSemiannual: "price_starter_semiannual",
		models.PeriodAnnual:     "price_starter_annual",
	},
	"hobbista": {
		models.PeriodMonthly:    "price_hobbista_monthly",
		models.PeriodQuarterly:  "price_hobbista_quarterly",
		models.PeriodSemiannual: "price_hobbista_semiannual",
		models.PeriodAnnual:     "price_hobbista_annual",
	},
	"creativo": {
		models.PeriodMonthly:    "price_creativo_monthly",
		models.PeriodQuarterly:  "price_creativo_quarterly",
		models.PeriodSemiannual: "price_creativo_semiannual",
		models.PeriodAnnual:     "price_creativo_annual",
	},
	"professional": {
		models.PeriodMonthly:    "price_professional_monthly",
		models.PeriodQuarterly:  "price_professional_quarterly",
		models.PeriodSemiannual: "price_professional_semiannual",
		models.PeriodAnnual:     "price_professional_annual",
	},
}

// PriceID возвращает идентификатор цены у провайдера для тарифа и периода.
func PriceID(planSlug, billingPeriod string) (string, bool) {
	periods, ok := priceTable[planSlug]
	if !ok {
		return "", false
	}
	priceID, ok := periods[billingPeriod]
	return priceID, ok
}

// ListPlans возвращает активные тарифы.
func (s *SubscriptionService) ListPlans(ctx context.Context, limit, offset int) ([]*models.Plan, error) {
	return s.repo.ListPlans(ctx, limit, offset)
}

// GetPlan возвращает активный тариф по slug.
func (s *SubscriptionService) GetPlan(ctx context.Context, slug string) (*models.Plan, error) {
	plan, err := s.repo.GetPlanBySlug(ctx, slug)
	if err != nil {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// MySubscription возвращает активную подписку пользователя вместе с тарифом.
func (s *SubscriptionService) MySubscription(ctx context.Context, userID int64) (*models.SubscriptionWithPlan, error) {
	sub, err := s.repo.GetActiveSubscriptionByUserID(ctx, userID)
	if err != nil {
		return nil, ErrNoActiveSubscription
	}
	plan, err := s.repo.GetPlan(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}
	return &models.SubscriptionWithPlan{Subscription: *sub, Plan: plan}, nil
}

// CreateCheckout создаёт сессию оформления у провайдера и возвращает ссылку
// на хостовую страницу оплаты. Клиент у провайдера создаётся лениво при
// первом оформлении и сохраняется за пользователем.
func (s *SubscriptionService) CreateCheckout(ctx context.Context, userID int64, planSlug, billingPeriod string) (*CheckoutLink, error) {
	if !models.ValidBillingPeriod(billingPeriod) {
		return nil, ErrInvalidBillingPeriod
	}
	plan, err := s.repo.GetPlanBySlug(ctx, planSlug)
	if err != nil {
		return nil, ErrPlanNotFound
	}
	if _, err := s.repo.GetActiveSubscriptionByUserID(ctx, userID); err == nil {
		return nil, ErrAlreadySubscribed
	}
	priceID, ok := PriceID(plan.Slug, billingPeriod)
	if !ok {
		return nil, ErrPriceNotMapped
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	customerID, err := s.ensureProviderCustomer(ctx, user)
	if err != nil {
		return nil, err
	}

	session, err := s.provider.CreateCheckoutSession(ctx, paymentprovider.CreateCheckoutSessionRequest{
		Customer:   customerID,
		PriceID:    priceID,
		Mode:       "subscription",
		SuccessURL: s.frontendURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.frontendURL + "/checkout/cancel",
		Metadata: map[string]string{
			"user_id":        strconv.FormatInt(userID, 10),
			"plan_id":        strconv.FormatInt(plan.ID, 10),
			"billing_period": billingPeriod,
		},
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("checkout session created",
		slog.Int64("user_id", userID),
		slog.String("plan", plan.Slug),
		slog.String("session_id", session.ID))

	return &CheckoutLink{SessionID: session.ID, CheckoutURL: session.URL}, nil
}

// ConfirmCheckout проверяет состояние сессии оформления. Пока провайдер не
// подтвердил оплату, возвращается статус pending. Активация идемпотентна:
// повторное подтверждение той же сессии возвращает существующую подписку.
func (s *SubscriptionService) ConfirmCheckout(ctx context.Context, userID *int64, sessionID string) (*ConfirmResult, error) {
	session, err := s.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	if session.PaymentStatus != paymentprovider.PaymentStatusPaid {
		return &ConfirmResult{Status: ConfirmStatusPending}, nil
	}
	if userID == nil {
		return &ConfirmResult{Status: ConfirmStatusRequiresLogin}, nil
	}
	metaUserID, err := strconv.ParseInt(session.Metadata["user_id"], 10, 64)
	if err != nil || metaUserID != *userID {
		return nil, ErrUserMismatch
	}

	subID, err := s.activateFromSession(ctx, session)
	if err != nil {
		return nil, err
	}
	return &ConfirmResult{Status: ConfirmStatusSuccess, SubscriptionID: &subID}, nil
}

// activateFromSession переводит подписку в активное состояние по оплаченной
// сессии. Повторный вызов для той же сессии находит существующую запись по
// provider_subscription_id и не создаёт дубликата.
func (s *SubscriptionService) activateFromSession(ctx context.Context, session *paymentprovider.CheckoutSession) (int64, error) {
	providerSubID := session.Subscription
	if providerSubID == "" {
		providerSubID = session.ID
	}
	if existing, err := s.repo.GetSubscriptionByProviderID(ctx, providerSubID); err == nil {
		return existing.ID, nil
	}

	userID, err := strconv.ParseInt(session.Metadata["user_id"], 10, 64)
	if err != nil {
		return 0, err
	}
	planID, err := strconv.ParseInt(session.Metadata["plan_id"], 10, 64)
	if err != nil {
		return 0, err
	}
	billingPeriod := session.Metadata["billing_period"]
	days, err := models.PeriodLength(billingPeriod)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	end := now.AddDate(0, 0, days)
	sub := models.Subscription{
		UserID:                 userID,
		PlanID:                 planID,
		StartDate:              now,
		EndDate:                end,
		IsActive:               true,
		BillingPeriod:          billingPeriod,
		NextBillingDate:        end,
		ProviderCustomerID:     &session.Customer,
		ProviderSubscriptionID: &providerSubID,
	}
	subID, err := s.repo.CreateSubscription(ctx, sub)
	if errors.Is(err, repository.ErrAlreadyExists) {
		// параллельное подтверждение уже активировало подписку
		existing, err := s.repo.GetActiveSubscriptionByUserID(ctx, userID)
		if err != nil {
			return 0, err
		}
		return existing.ID, nil
	}
	if err != nil {
		return 0, err
	}

	s.recorder.Record(ctx, &userID, activityservice.ActionSubscriptionActivated,
		map[string]any{"subscription_id": subID, "plan_id": planID, "billing_period": billingPeriod})
	s.log.Info("subscription activated",
		slog.Int64("user_id", userID),
		slog.Int64("subscription_id", subID))
	return subID, nil
}

// SetPreferredCategories заменяет набор предпочитаемых категорий пользователя.
// Размер набора ограничен тарифом активной подписки.
func (s *SubscriptionService) SetPreferredCategories(ctx context.Context, userID int64, categoryIDs []int64) error {
	sub, err := s.repo.GetActiveSubscriptionByUserID(ctx, userID)
	if err != nil {
		return ErrNoActiveSubscription
	}
	plan, err := s.repo.GetPlan(ctx, sub.PlanID)
	if err != nil {
		return err
	}
	if len(categoryIDs) > plan.CategoriesCount {
		return ErrCategoryQuotaExceeded
	}
	categories, err := s.repo.GetCategoriesByIDs(ctx, categoryIDs)
	if err != nil {
		return err
	}
	if len(categories) != len(categoryIDs) {
		return ErrUnknownCategory
	}
	return s.repo.ReplacePreferredCategories(ctx, userID, categoryIDs)
}

// ensureProviderCustomer возвращает ID клиента у провайдера, создавая его
// при первом обращении.
func (s *SubscriptionService) ensureProviderCustomer(ctx context.Context, user *models.User) (string, error) {
	if user.ProviderCustomerID != nil {
		return *user.ProviderCustomerID, nil
	}
	customer, err := s.provider.CreateCustomer(ctx, paymentprovider.CreateCustomerRequest{
		Email: user.Email,
		Name:  user.FullName,
	})
	if err != nil {
		return "", err
	}
	if err := s.repo.SetProviderCustomerID(ctx, user.ID, customer.ID); err != nil {
		return "", err
	}
	return customer.ID, nil
}

// publishBilling отправляет уведомление биллинга в очередь. Ошибка публикации
// логируется и не прерывает обработку: очередь не критична для согласованности.
func (s *SubscriptionService) publishBilling(notification models.BillingNotification) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish("billing", notification); err != nil {
		s.log.Error("failed to publish billing notification",
			slog.String("type", notification.Type), sl.Err(err))
	}
}
