package cache

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lespal/lespal_server/internal/model"
)

// DefaultTTL is the staleness window for cached song/lesson lists.
const DefaultTTL = 2 * time.Minute

// Snapshot is the cached client state for one user: the two record
// lists plus their staleness timestamps. This is the blob that gets
// persisted; its JSON form must survive a round trip but is otherwise
// an implementation detail.
type Snapshot struct {
	Songs     []*model.Song   `json:"songs"`
	Lessons   []*model.Lesson `json:"lessons"`
	TSSongs   time.Time       `json:"ts_songs"`
	TSLessons time.Time       `json:"ts_lessons"`
}

// Store holds per-user snapshots with a time-based staleness policy.
// Concurrent refreshes are not deduplicated; last write wins.
type Store struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]*Snapshot
	ttl       time.Duration
	path      string // optional persistence file, empty = memory only
	now       func() time.Time
}

// NewStore создаёт новый store с окном устаревания ttl.
// path — необязательный файл для сохранения между перезапусками.
func NewStore(ttl time.Duration, path string) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		snapshots: make(map[uuid.UUID]*Snapshot),
		ttl:       ttl,
		path:      path,
		now:       time.Now,
	}
}

// Songs возвращает кешированные песни пользователя и признак свежести.
// Пустой кеш всегда считается устаревшим.
func (s *Store) Songs(userID uuid.UUID) ([]*model.Song, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[userID]
	if !ok || len(snap.Songs) == 0 {
		return nil, false
	}
	return snap.Songs, s.now().Sub(snap.TSSongs) <= s.ttl
}

// Lessons возвращает кешированные уроки пользователя и признак свежести
func (s *Store) Lessons(userID uuid.UUID) ([]*model.Lesson, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[userID]
	if !ok || len(snap.Lessons) == 0 {
		return nil, false
	}
	return snap.Lessons, s.now().Sub(snap.TSLessons) <= s.ttl
}

// SetSongs обновляет песни и их метку времени
func (s *Store) SetSongs(userID uuid.UUID, songs []*model.Song) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot(userID)
	snap.Songs = songs
	snap.TSSongs = s.now()
}

// SetLessons обновляет уроки и их метку времени
func (s *Store) SetLessons(userID uuid.UUID, lessons []*model.Lesson) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot(userID)
	snap.Lessons = lessons
	snap.TSLessons = s.now()
}

// Clear сбрасывает кеш пользователя (например после записи)
func (s *Store) Clear(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snapshots, userID)
}

func (s *Store) snapshot(userID uuid.UUID) *Snapshot {
	snap, ok := s.snapshots[userID]
	if !ok {
		snap = &Snapshot{}
		s.snapshots[userID] = snap
	}
	return snap
}

// Save сохраняет все снапшоты в файл
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}

	s.mu.RLock()
	data, err := json.Marshal(s.snapshots)
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o600)
}

// Load читает снапшоты из файла. Отсутствующий файл не является ошибкой.
func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	snapshots := make(map[uuid.UUID]*Snapshot)
	if err := json.Unmarshal(data, &snapshots); err != nil {
		return err
	}

	s.mu.Lock()
	s.snapshots = snapshots
	s.mu.Unlock()

	return nil
}
