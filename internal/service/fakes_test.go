package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lespal/lespal_server/internal/model"
	"github.com/lespal/lespal_server/internal/repository"
)

// In-memory stores mirroring the behavior of the real repositories,
// including the error contracts of the redeem transaction.

type fakeUserStore struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserStore(users ...*model.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Create(_ context.Context, user *model.User) error {
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return s.users[id], nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*model.User, error) {
	users := []*model.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

type fakeLinkStore struct {
	links  []*model.TeacherStudentLink
	nextID int64
}

func (s *fakeLinkStore) add(teacherID, studentID uuid.UUID) {
	s.nextID++
	s.links = append(s.links, &model.TeacherStudentLink{
		ID:        s.nextID,
		TeacherID: teacherID,
		StudentID: studentID,
		CreatedAt: time.Now(),
	})
}

func (s *fakeLinkStore) has(teacherID, studentID uuid.UUID) bool {
	for _, l := range s.links {
		if l.TeacherID == teacherID && l.StudentID == studentID {
			return true
		}
	}
	return false
}

func (s *fakeLinkStore) Has(_ context.Context, teacherID, studentID uuid.UUID) (bool, error) {
	return s.has(teacherID, studentID), nil
}

func (s *fakeLinkStore) Delete(_ context.Context, teacherID, studentID uuid.UUID) error {
	kept := s.links[:0]
	for _, l := range s.links {
		if l.TeacherID != teacherID || l.StudentID != studentID {
			kept = append(kept, l)
		}
	}
	s.links = kept
	return nil
}

func (s *fakeLinkStore) ListByStudent(_ context.Context, studentID uuid.UUID) ([]*model.TeacherStudentLink, error) {
	out := []*model.TeacherStudentLink{}
	for _, l := range s.links {
		if l.StudentID == studentID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *fakeLinkStore) ListByTeacher(_ context.Context, teacherID uuid.UUID) ([]*model.TeacherStudentLink, error) {
	out := []*model.TeacherStudentLink{}
	for _, l := range s.links {
		if l.TeacherID == teacherID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeInviteStore struct {
	codes      map[string]*model.InviteCode
	links      *fakeLinkStore
	collisions int // сколько ближайших Create вернут коллизию
	nextID     int64
	now        func() time.Time
}

func newFakeInviteStore(links *fakeLinkStore) *fakeInviteStore {
	return &fakeInviteStore{
		codes: make(map[string]*model.InviteCode),
		links: links,
		now:   time.Now,
	}
}

func (s *fakeInviteStore) Create(_ context.Context, code *model.InviteCode) error {
	if s.collisions > 0 {
		s.collisions--
		return repository.ErrCodeCollision
	}
	if _, exists := s.codes[code.Code]; exists {
		return repository.ErrCodeCollision
	}
	s.nextID++
	code.ID = s.nextID
	code.CreatedAt = s.now()
	s.codes[code.Code] = code
	return nil
}

func (s *fakeInviteStore) ListByTeacher(_ context.Context, teacherID uuid.UUID) ([]*model.InviteCode, error) {
	out := []*model.InviteCode{}
	for _, c := range s.codes {
		if c.TeacherID == teacherID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeInviteStore) Redeem(_ context.Context, code string, studentID uuid.UUID) (uuid.UUID, error) {
	c, ok := s.codes[code]
	if !ok || !c.IsRedeemable(s.now()) {
		return uuid.Nil, model.ErrInvalidOrExpiredCode
	}
	if s.links.has(c.TeacherID, studentID) {
		// Связь уже есть: откат, код остаётся непогашенным
		return uuid.Nil, model.ErrAlreadyLinked
	}
	s.links.add(c.TeacherID, studentID)
	usedAt := s.now()
	c.UsedBy = &studentID
	c.UsedAt = &usedAt
	return c.TeacherID, nil
}

type fakeSecretStore struct {
	values map[uuid.UUID]map[string]string
}

func newFakeSecretStore() *fakeSecretStore {
	return &fakeSecretStore{values: make(map[uuid.UUID]map[string]string)}
}

func (s *fakeSecretStore) Upsert(_ context.Context, userID uuid.UUID, name, value string) error {
	if s.values[userID] == nil {
		s.values[userID] = make(map[string]string)
	}
	s.values[userID][name] = value
	return nil
}

func (s *fakeSecretStore) Get(_ context.Context, userID uuid.UUID, name string) (string, error) {
	return s.values[userID][name], nil
}

func (s *fakeSecretStore) Delete(_ context.Context, userID uuid.UUID, name string) error {
	delete(s.values[userID], name)
	return nil
}

type fakeSongStore struct {
	songs map[uuid.UUID]*model.Song
}

func newFakeSongStore() *fakeSongStore {
	return &fakeSongStore{songs: make(map[uuid.UUID]*model.Song)}
}

func (s *fakeSongStore) Create(_ context.Context, song *model.Song) error {
	song.ID = uuid.New()
	song.CreatedAt = time.Now()
	song.UpdatedAt = song.CreatedAt
	s.songs[song.ID] = song
	return nil
}

func (s *fakeSongStore) GetByID(_ context.Context, id uuid.UUID) (*model.Song, error) {
	return s.songs[id], nil
}

func (s *fakeSongStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*model.Song, error) {
	out := []*model.Song{}
	for _, song := range s.songs {
		if song.UserID == userID {
			out = append(out, song)
		}
	}
	return out, nil
}

func (s *fakeSongStore) Update(_ context.Context, song *model.Song) error {
	song.UpdatedAt = time.Now()
	s.songs[song.ID] = song
	return nil
}

func (s *fakeSongStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.songs, id)
	return nil
}

type fakeLessonStore struct {
	lessons map[uuid.UUID]*model.Lesson
}

func newFakeLessonStore() *fakeLessonStore {
	return &fakeLessonStore{lessons: make(map[uuid.UUID]*model.Lesson)}
}

func (s *fakeLessonStore) Create(_ context.Context, lesson *model.Lesson) error {
	lesson.ID = uuid.New()
	lesson.CreatedAt = time.Now()
	lesson.UpdatedAt = lesson.CreatedAt
	s.lessons[lesson.ID] = lesson
	return nil
}

func (s *fakeLessonStore) GetByID(_ context.Context, id uuid.UUID) (*model.Lesson, error) {
	return s.lessons[id], nil
}

func (s *fakeLessonStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*model.Lesson, error) {
	out := []*model.Lesson{}
	for _, lesson := range s.lessons {
		if lesson.UserID == userID {
			out = append(out, lesson)
		}
	}
	return out, nil
}

func (s *fakeLessonStore) GetLatestByUser(_ context.Context, userID uuid.UUID) (*model.Lesson, error) {
	var latest *model.Lesson
	for _, lesson := range s.lessons {
		if lesson.UserID != userID {
			continue
		}
		if latest == nil || lesson.Date.After(latest.Date) {
			latest = lesson
		}
	}
	return latest, nil
}

func (s *fakeLessonStore) Update(_ context.Context, lesson *model.Lesson) error {
	lesson.UpdatedAt = time.Now()
	s.lessons[lesson.ID] = lesson
	return nil
}

func (s *fakeLessonStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.lessons, id)
	return nil
}
