// Package session хранит диалоговое состояние пользователей в памяти.
package session

import (
	"log/slog"
	"sync"
	"time"
)

// StepNone означает, что активного диалога у пользователя нет.
const StepNone = -1

// Session — текущее состояние диалога одного пользователя: номер шага и
// накопленные поля. Сессия с Step == StepNone всегда имеет пустой набор полей.
type Session struct {
	ID        string
	Step      int
	Fields    map[string]any
	UpdatedAt time.Time
}

// Active сообщает, идет ли у пользователя диалог.
func (s Session) Active() bool {
	return s.Step != StepNone
}

// Reset возвращает сессию в пустое состояние.
func (s *Session) Reset() {
	s.ID = ""
	s.Step = StepNone
	s.Fields = make(map[string]any)
}

type entry struct {
	mu   sync.Mutex
	sess Session
}

// Store — потокобезопасное хранилище сессий. Доступ к сессии одного
// пользователя сериализуется отдельным замком, поэтому read-modify-write
// в Do атомарен для каждого пользователя, а разные пользователи
// обрабатываются параллельно.
type Store struct {
	mu      sync.Mutex
	entries map[int64]*entry

	ttl  time.Duration
	done chan struct{}
	wg   sync.WaitGroup
	log  *slog.Logger
}

// NewStore создает хранилище. При ttl > 0 запускается фоновая очистка
// диалогов, неактивных дольше ttl.
func NewStore(ttl time.Duration, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{
		entries: make(map[int64]*entry),
		ttl:     ttl,
		done:    make(chan struct{}),
		log:     log,
	}
	if ttl > 0 {
		s.wg.Add(1)
		go s.janitor()
	}
	return s
}

func (s *Store) entryFor(userID int64) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID]
	if !ok {
		e = &entry{}
		e.sess.Reset()
		s.entries[userID] = e
	}
	return e
}

// Get возвращает копию сессии пользователя. Для неизвестного пользователя
// возвращается пустая сессия — ошибки «нет сессии» не существует.
func (s *Store) Get(userID int64) Session {
	e := s.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot(&e.sess)
}

// Put перезаписывает сессию пользователя.
func (s *Store) Put(userID int64, sess Session) {
	e := s.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sess = snapshot(&sess)
	if !e.sess.Active() && len(e.sess.Fields) != 0 {
		e.sess.Fields = make(map[string]any)
	}
	e.sess.UpdatedAt = time.Now()
}

// Clear сбрасывает сессию в пустое состояние. Повторный вызов ничего
// не меняет.
func (s *Store) Clear(userID int64) {
	s.Do(userID, func(sess *Session) {
		sess.Reset()
	})
}

// Do выполняет fn над сессией пользователя под его персональным замком.
// Два сообщения одного пользователя не могут изменять сессию одновременно.
func (s *Store) Do(userID int64, fn func(*Session)) {
	e := s.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.sess)
	if !e.sess.Active() && len(e.sess.Fields) != 0 {
		// Инвариант: без активного диалога полей быть не должно
		e.sess.Fields = make(map[string]any)
	}
	if e.sess.Fields == nil {
		e.sess.Fields = make(map[string]any)
	}
	e.sess.UpdatedAt = time.Now()
}

// Close останавливает фоновую очистку.
func (s *Store) Close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	s.wg.Wait()
}

func (s *Store) janitor() {
	defer s.wg.Done()
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep(time.Now())
		}
	}
}

// sweep сбрасывает диалоги, по которым давно не было сообщений.
func (s *Store) sweep(now time.Time) {
	s.mu.Lock()
	stale := make([]*entry, 0)
	ids := make([]int64, 0)
	for id, e := range s.entries {
		stale = append(stale, e)
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for i, e := range stale {
		e.mu.Lock()
		if e.sess.Active() && now.Sub(e.sess.UpdatedAt) > s.ttl {
			s.log.Info("session expired",
				slog.Int64("user_id", ids[i]),
				slog.String("session_id", e.sess.ID),
			)
			e.sess.Reset()
		}
		e.mu.Unlock()
	}
}

func snapshot(sess *Session) Session {
	out := *sess
	out.Fields = make(map[string]any, len(sess.Fields))
	for k, v := range sess.Fields {
		out.Fields[k] = v
	}
	return out
}
