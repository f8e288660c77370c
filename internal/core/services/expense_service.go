package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/expense_tracker_app/internal/apperrors"
	"github.com/SscSPs/expense_tracker_app/internal/core/analytics"
	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_tracker_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_tracker_app/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker_app/internal/dto"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// AllCategories disables the category filter of the expense list.
const AllCategories = "All"

// UndatedGroupKey titles the date group holding expenses without a date.
const UndatedGroupKey = "undated"

// expenseServiceImpl implements the ExpenseSvcFacade interface
type expenseServiceImpl struct {
	BaseService
	expenseRepo portsrepo.ExpenseRepositoryFacade
	publisher   portssvc.EventPublisher
	validate    *validator.Validate
	calendar    analytics.Calendar
}

// ExpenseServiceOption is a functional option for configuring the expense service
type ExpenseServiceOption func(*expenseServiceImpl)

// WithEventPublisher sets where change events go after each mutation.
func WithEventPublisher(publisher portssvc.EventPublisher) ExpenseServiceOption {
	return func(s *expenseServiceImpl) {
		s.publisher = publisher
	}
}

// WithExpenseCalendar sets the calendar used for timestamps and day grouping.
func WithExpenseCalendar(cal analytics.Calendar) ExpenseServiceOption {
	return func(s *expenseServiceImpl) {
		s.calendar = cal
	}
}

// NewExpenseService creates a new expense service with the provided options
func NewExpenseService(repo portsrepo.ExpenseRepositoryFacade, options ...ExpenseServiceOption) portssvc.ExpenseSvcFacade {
	svc := &expenseServiceImpl{
		expenseRepo: repo,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		calendar:    analytics.DefaultCalendar(),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ExpenseSvcFacade = (*expenseServiceImpl)(nil)

func (s *expenseServiceImpl) validateRequest(req dto.ExpenseRequest) error {
	if req.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", apperrors.ErrValidation)
	}
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", apperrors.ErrValidation, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return nil
}

// CreateExpense validates and stores a new expense.
func (s *expenseServiceImpl) CreateExpense(ctx context.Context, req dto.ExpenseRequest) (*domain.Expense, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	now := s.calendar.Today()
	expense := domain.Expense{
		ID:            uuid.NewString(),
		Amount:        req.Amount,
		Category:      blankToNil(req.Category),
		Date:          req.Date,
		Currency:      blankToNil(req.Currency),
		PaymentMethod: req.PaymentMethod,
		Note:          req.Note,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.expenseRepo.SaveExpense(ctx, expense); err != nil {
		s.LogError(ctx, err, "Failed to save expense", slog.String("expense_id", expense.ID))
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.LogInfo(ctx, "Expense created", slog.String("expense_id", expense.ID), slog.String("category", expense.CategoryOrDefault()))
	s.publish(ctx, domain.ChangeCreated, expense.ID)
	return &expense, nil
}

// GetExpense retrieves a specific expense by its ID.
func (s *expenseServiceImpl) GetExpense(ctx context.Context, expenseID string) (*domain.Expense, error) {
	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense %s: %w", expenseID, err)
	}
	return expense, nil
}

// UpdateExpense replaces every editable field of an existing expense.
func (s *expenseServiceImpl) UpdateExpense(ctx context.Context, expenseID string, req dto.ExpenseRequest) (*domain.Expense, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to find expense %s for update: %w", expenseID, err)
	}

	updated := *existing
	updated.Amount = req.Amount
	updated.Category = blankToNil(req.Category)
	updated.Date = req.Date
	updated.Currency = blankToNil(req.Currency)
	updated.PaymentMethod = req.PaymentMethod
	updated.Note = req.Note
	updated.UpdatedAt = s.calendar.Today()

	if err := s.expenseRepo.UpdateExpense(ctx, updated); err != nil {
		s.LogError(ctx, err, "Failed to update expense", slog.String("expense_id", expenseID))
		return nil, fmt.Errorf("failed to update expense %s: %w", expenseID, err)
	}

	s.LogInfo(ctx, "Expense updated", slog.String("expense_id", expenseID))
	s.publish(ctx, domain.ChangeUpdated, expenseID)
	return &updated, nil
}

// DeleteExpense removes an expense.
func (s *expenseServiceImpl) DeleteExpense(ctx context.Context, expenseID string) error {
	if err := s.expenseRepo.DeleteExpense(ctx, expenseID); err != nil {
		return fmt.Errorf("failed to delete expense %s: %w", expenseID, err)
	}

	s.LogInfo(ctx, "Expense deleted", slog.String("expense_id", expenseID))
	s.publish(ctx, domain.ChangeDeleted, expenseID)
	return nil
}

func (s *expenseServiceImpl) publish(ctx context.Context, kind domain.ChangeKind, expenseID string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, domain.ExpenseChanged{Kind: kind, ExpenseID: expenseID, OccurredAt: s.calendar.Today()})
}

// ListExpenses filters by category and sorts by date or amount, newest or
// largest first. Undated expenses sort after dated ones.
func (s *expenseServiceImpl) ListExpenses(ctx context.Context, params dto.ListExpensesParams) ([]domain.Expense, error) {
	all, err := s.expenseRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	list := make([]domain.Expense, 0, len(all))
	for _, e := range all {
		if params.Category != "" && params.Category != AllCategories && e.CategoryOrDefault() != params.Category {
			continue
		}
		list = append(list, e)
	}

	sortByDateDesc(list)
	if params.SortBy == "amount" {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Amount.GreaterThan(list[j].Amount)
		})
	}
	return list, nil
}

// GroupByDate buckets the list by calendar day, newest day first.
func (s *expenseServiceImpl) GroupByDate(ctx context.Context, params dto.ListExpensesParams) ([]domain.ExpenseGroup, error) {
	list, err := s.ListExpenses(ctx, params)
	if err != nil {
		return nil, err
	}

	var groups []domain.ExpenseGroup
	index := make(map[string]int)
	for _, e := range list {
		key := UndatedGroupKey
		var day *time.Time
		if e.HasDate() {
			d := s.calendar.StartOfDay(*e.Date)
			day = &d
			key = d.Format(time.DateOnly)
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, domain.ExpenseGroup{Key: key, Date: day})
		}
		groups[i].Expenses = append(groups[i].Expenses, e)
		groups[i].Total = groups[i].Total.Add(e.Amount)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Date, groups[j].Date
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.After(*b)
	})
	return groups, nil
}

// GroupByCategory buckets the list by category name in alphabetical order,
// each bucket sorted newest first.
func (s *expenseServiceImpl) GroupByCategory(ctx context.Context, params dto.ListExpensesParams) ([]domain.ExpenseGroup, error) {
	list, err := s.ListExpenses(ctx, params)
	if err != nil {
		return nil, err
	}

	var groups []domain.ExpenseGroup
	index := make(map[string]int)
	for _, e := range list {
		key := e.CategoryOrDefault()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, domain.ExpenseGroup{Key: key})
		}
		groups[i].Expenses = append(groups[i].Expenses, e)
		groups[i].Total = groups[i].Total.Add(e.Amount)
	}

	for i := range groups {
		sortByDateDesc(groups[i].Expenses)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups, nil
}

// blankToNil treats a blank optional field as absent.
func blankToNil(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return v
}

func sortByDateDesc(list []domain.Expense) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.HasDate() || !b.HasDate() {
			return a.HasDate() && !b.HasDate()
		}
		return a.Date.After(*b.Date)
	})
}
