package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/model"
)

// ErrNotRegistered возвращается, когда запись расходов адресована
// пользователю, которого нет в базе. Вызывающая сторона обязана показать
// ошибку и сохранить сессию — молчаливая потеря данных недопустима.
var ErrNotRegistered = errors.New("user is not registered")

// Repository определяет интерфейс для работы с хранилищем данных.
type Repository interface {
	CreateUser(ctx context.Context, userID int64, name string) error
	UserExists(ctx context.Context, userID int64) (bool, error)
	GetRecord(ctx context.Context, userID int64) (*model.UserRecord, error)
	UpdateFinanceFields(ctx context.Context, userID int64, fields map[string]any) (int64, error)
	ListRecords(ctx context.Context) ([]model.UserRecord, error)
}

// FinanceTracker предоставляет операции над записями пользователей:
// регистрацию, фиксацию собранных диалогом расходов и выборки.
type FinanceTracker struct {
	repo Repository
}

// NewFinanceTracker создает новый экземпляр FinanceTracker.
func NewFinanceTracker(repo Repository) *FinanceTracker {
	return &FinanceTracker{
		repo: repo,
	}
}

// RegisterUser создает запись пользователя. Возвращает false, если
// пользователь уже был зарегистрирован.
func (s *FinanceTracker) RegisterUser(ctx context.Context, userID int64, name string) (bool, error) {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check registration: %w", err)
	}
	if exists {
		return false, nil
	}
	if err := s.repo.CreateUser(ctx, userID, name); err != nil {
		return false, fmt.Errorf("failed to register user: %w", err)
	}
	return true, nil
}

// Имена полей, которые диалог обязан накопить к моменту записи.
var (
	textFields   = []string{"category1", "category2", "category3"}
	amountFields = []string{"expenses1", "expenses2", "expenses3"}
)

// SaveExpenses атомарно записывает все три пары категория/сумма в строку
// пользователя. Ноль обновленных строк означает незарегистрированного
// пользователя и превращается в ErrNotRegistered.
func (s *FinanceTracker) SaveExpenses(ctx context.Context, userID int64, fields map[string]any) error {
	columns, err := financeColumns(fields)
	if err != nil {
		return err
	}

	rows, err := s.repo.UpdateFinanceFields(ctx, userID, columns)
	if err != nil {
		return fmt.Errorf("failed to save expenses: %w", err)
	}
	if rows == 0 {
		return ErrNotRegistered
	}
	return nil
}

// Record возвращает запись пользователя (nil, если ее нет).
func (s *FinanceTracker) Record(ctx context.Context, userID int64) (*model.UserRecord, error) {
	return s.repo.GetRecord(ctx, userID)
}

// ListRecords возвращает записи всех пользователей.
func (s *FinanceTracker) ListRecords(ctx context.Context) ([]model.UserRecord, error) {
	return s.repo.ListRecords(ctx)
}

// financeColumns проверяет, что диалог накопил все шесть полей нужных
// типов, и собирает карту колонок для UPDATE.
func financeColumns(fields map[string]any) (map[string]any, error) {
	columns := make(map[string]any, len(textFields)+len(amountFields))
	for _, name := range textFields {
		value, ok := fields[name].(string)
		if !ok || value == "" {
			return nil, fmt.Errorf("incomplete dialog data: missing %s", name)
		}
		columns[name] = value
	}
	for _, name := range amountFields {
		value, ok := fields[name].(float64)
		if !ok || value < 0 {
			return nil, fmt.Errorf("incomplete dialog data: missing %s", name)
		}
		columns[name] = value
	}
	return columns, nil
}
