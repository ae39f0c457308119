package model

// UserRecord представляет строку таблицы users: регистрационные данные
// пользователя и последний сохраненный набор расходов. На пользователя
// хранится ровно одна запись, ключ — telegram_id.
type UserRecord struct {
	TelegramID int64   `json:"telegram_id"`
	Name       string  `json:"name"`
	Category1  string  `json:"category1"`
	Expenses1  float64 `json:"expenses1"`
	Category2  string  `json:"category2"`
	Expenses2  float64 `json:"expenses2"`
	Category3  string  `json:"category3"`
	Expenses3  float64 `json:"expenses3"`
}

// HasExpenses сообщает, сохранял ли пользователь расходы хотя бы один раз.
// Частичных записей в хранилище не бывает, поэтому достаточно проверить
// первую категорию.
func (u *UserRecord) HasExpenses() bool {
	return u.Category1 != ""
}
