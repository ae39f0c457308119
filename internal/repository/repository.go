package repository

import (
	"context"

	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/model"
)

// Repository определяет контракт хранилища записей пользователей.
type Repository interface {
	// Пользователи
	CreateUser(ctx context.Context, userID int64, name string) error
	UserExists(ctx context.Context, userID int64) (bool, error)
	GetRecord(ctx context.Context, userID int64) (*model.UserRecord, error)

	// Финансовые поля: одна атомарная запись всех шести колонок.
	// Возвращает число обновленных строк — ноль означает, что строки
	// пользователя в базе нет.
	UpdateFinanceFields(ctx context.Context, userID int64, fields map[string]any) (int64, error)

	ListRecords(ctx context.Context) ([]model.UserRecord, error)
}
