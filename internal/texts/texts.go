// Package texts хранит шаблоны сообщений бота, загружаемые из messages.json.
package texts

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
)

const tipsKey = "financial_tips"

// Store отображает ключ шаблона в готовую строку сообщения.
type Store struct {
	messages map[string]string
	tips     []string
}

// Load читает файл шаблонов. Значения-строки становятся шаблонами,
// массив financial_tips — списком советов.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages file: %w", err)
	}
	return Parse(data)
}

// Parse разбирает содержимое messages.json.
func Parse(data []byte) (*Store, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse messages file: %w", err)
	}

	store := &Store{messages: make(map[string]string, len(raw))}
	for key, value := range raw {
		if key == tipsKey {
			if err := json.Unmarshal(value, &store.tips); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", tipsKey, err)
			}
			continue
		}
		var text string
		if err := json.Unmarshal(value, &text); err != nil {
			return nil, fmt.Errorf("failed to parse message %q: %w", key, err)
		}
		store.messages[key] = text
	}
	if len(store.tips) == 0 {
		return nil, fmt.Errorf("messages file has no %s", tipsKey)
	}
	return store, nil
}

// Resolve подставляет аргументы в шаблон по ключу. Неизвестный ключ
// возвращается как есть, чтобы ответ пользователю не пропадал молча.
func (s *Store) Resolve(key string, args ...any) string {
	template, ok := s.messages[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return template
	}
	return fmt.Sprintf(template, args...)
}

// Has сообщает, есть ли шаблон с таким ключом.
func (s *Store) Has(key string) bool {
	_, ok := s.messages[key]
	return ok
}

// RandomTip возвращает случайный совет по экономии.
func (s *Store) RandomTip() string {
	return s.tips[rand.Intn(len(s.tips))]
}

// Tips возвращает все советы (для тестов и диагностики).
func (s *Store) Tips() []string {
	return s.tips
}
