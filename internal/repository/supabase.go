package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/supabase-community/supabase-go"

	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/model"
)

const usersTable = "users"

// SupabaseRepository хранит записи пользователей в таблице users.
type SupabaseRepository struct {
	client *supabase.Client
}

func NewSupabaseRepository(url, key string) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, err
	}

	return &SupabaseRepository{
		client: client,
	}, nil
}

// CreateUser создает строку пользователя с регистрационными данными.
// Финансовые колонки заполняются позже, при завершении диалога.
func (r *SupabaseRepository) CreateUser(ctx context.Context, userID int64, name string) error {
	row := struct {
		TelegramID int64  `json:"telegram_id"`
		Name       string `json:"name"`
	}{TelegramID: userID, Name: name}

	_, _, err := r.client.From(usersTable).Insert(row, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UserExists проверяет, есть ли у пользователя строка в таблице.
func (r *SupabaseRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	_, count, err := r.client.From(usersTable).
		Select("telegram_id", "exact", false).
		Eq("telegram_id", strconv.FormatInt(userID, 10)).
		Execute()
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return count > 0, nil
}

// GetRecord возвращает запись пользователя или nil, если ее нет.
func (r *SupabaseRepository) GetRecord(ctx context.Context, userID int64) (*model.UserRecord, error) {
	data, _, err := r.client.From(usersTable).
		Select("*", "", false).
		Eq("telegram_id", strconv.FormatInt(userID, 10)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	var records []model.UserRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// UpdateFinanceFields записывает все шесть финансовых колонок одним
// UPDATE-запросом. count=exact заставляет postgrest вернуть число
// обновленных строк: ноль значит, что пользователь не зарегистрирован.
func (r *SupabaseRepository) UpdateFinanceFields(ctx context.Context, userID int64, fields map[string]any) (int64, error) {
	_, count, err := r.client.From(usersTable).
		Update(fields, "", "exact").
		Eq("telegram_id", strconv.FormatInt(userID, 10)).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("failed to update finance fields: %w", err)
	}
	return count, nil
}

// ListRecords возвращает все записи таблицы users.
func (r *SupabaseRepository) ListRecords(ctx context.Context) ([]model.UserRecord, error) {
	data, _, err := r.client.From(usersTable).
		Select("*", "", false).
		Order("telegram_id.asc", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	var records []model.UserRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}
	return records, nil
}
