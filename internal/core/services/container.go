package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/expense_tracker_app/internal/core/analytics"
	"github.com/SscSPs/expense_tracker_app/internal/core/events"
	portsrepo "github.com/SscSPs/expense_tracker_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_tracker_app/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker_app/internal/middleware"
	"github.com/SscSPs/expense_tracker_app/internal/platform/config"
)

// Container holds the wired services together with the concrete
// components whose lifecycle the process manages.
type Container struct {
	Services  *portssvc.ServiceContainer
	Hub       *events.Hub
	RateStore *ExchangeRateStore
	Analytics *AnalyticsView
}

// NewContainer creates the services with their dependencies. A failure to
// read the rate cache is logged and the store starts empty.
func NewContainer(ctx context.Context, cfg *config.Config, repos portsrepo.RepositoryProvider, provider portssvc.RateProvider, cal analytics.Calendar) (*Container, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	hub := events.NewHub()

	rateStore := NewExchangeRateStore(provider, repos.RateCache, WithClock(cal.Now))
	if err := rateStore.Restore(ctx); err != nil {
		logger.Warn("Failed to restore cached exchange rates", slog.String("error", err.Error()))
	}

	expenseService := NewExpenseService(repos.ExpenseRepo,
		WithEventPublisher(hub),
		WithExpenseCalendar(cal),
	)

	view, err := NewAnalyticsView(ctx, repos.ExpenseRepo, rateStore, hub,
		WithTargetCurrency(cfg.HomeCurrency),
		WithAnalyticsCalendar(cal),
	)
	if err != nil {
		rateStore.Close()
		return nil, fmt.Errorf("create analytics view: %w", err)
	}

	return &Container{
		Services: &portssvc.ServiceContainer{
			Expense:      expenseService,
			ExchangeRate: rateStore,
			Analytics:    view,
		},
		Hub:       hub,
		RateStore: rateStore,
		Analytics: view,
	}, nil
}

// Close detaches the analytics view and cancels in-flight rate requests.
func (c *Container) Close() {
	c.Analytics.Close()
	c.RateStore.Close()
}
