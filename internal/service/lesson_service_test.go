package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lespal/lespal_server/internal/cache"
	"github.com/lespal/lespal_server/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLessons(t *testing.T) (*LessonService, *fakeLessonStore, *fakeUserStore, *fakeLinkStore) {
	t.Helper()
	links := &fakeLinkStore{}
	users := newFakeUserStore()
	sharing := NewSharingService(newFakeInviteStore(links), links, users, zap.NewNop())
	lessons := newFakeLessonStore()
	svc := NewLessonService(lessons, sharing, cache.NewStore(cache.DefaultTTL, ""), zap.NewNop())
	return svc, lessons, users, links
}

func TestCreateLesson_RemainingDefaultsFromPrevious(t *testing.T) {
	svc, _, users, _ := newTestLessons(t)
	student := addUser(users, model.RoleStudent)
	actor := Self(student.ID)

	first := &model.Lesson{Date: time.Now().AddDate(0, 0, -7)}
	five := 5
	require.NoError(t, svc.Create(context.Background(), actor, first, &five))
	assert.Equal(t, 5, first.RemainingLessons)

	second := &model.Lesson{Date: time.Now()}
	require.NoError(t, svc.Create(context.Background(), actor, second, nil))
	assert.Equal(t, 4, second.RemainingLessons, "previous minus one")
}

func TestCreateLesson_RemainingNeverNegative(t *testing.T) {
	svc, _, users, _ := newTestLessons(t)
	student := addUser(users, model.RoleStudent)
	actor := Self(student.ID)

	zero := 0
	first := &model.Lesson{Date: time.Now().AddDate(0, 0, -7)}
	require.NoError(t, svc.Create(context.Background(), actor, first, &zero))

	second := &model.Lesson{Date: time.Now()}
	require.NoError(t, svc.Create(context.Background(), actor, second, nil))
	assert.Equal(t, 0, second.RemainingLessons)
}

func TestCreateLesson_NoPreviousDefaultsToZero(t *testing.T) {
	svc, _, users, _ := newTestLessons(t)
	student := addUser(users, model.RoleStudent)

	lesson := &model.Lesson{Date: time.Now()}
	require.NoError(t, svc.Create(context.Background(), Self(student.ID), lesson, nil))
	assert.Equal(t, 0, lesson.RemainingLessons)
}

func TestLessonOwnershipEnforced(t *testing.T) {
	svc, store, users, _ := newTestLessons(t)
	owner := addUser(users, model.RoleStudent)
	intruder := addUser(users, model.RoleStudent)

	lesson := &model.Lesson{Date: time.Now()}
	require.NoError(t, svc.Create(context.Background(), Self(owner.ID), lesson, nil))

	err := svc.Delete(context.Background(), Self(intruder.ID), lesson.ID)
	assert.ErrorIs(t, err, model.ErrForbidden)

	got, _ := store.GetByID(context.Background(), lesson.ID)
	assert.NotNil(t, got, "lesson survives the rejected delete")
}

func TestTeacherCreatesUnderStudentAccount(t *testing.T) {
	svc, store, users, links := newTestLessons(t)
	teacher := addUser(users, model.RoleTeacher)
	student := addUser(users, model.RoleStudent)
	links.add(teacher.ID, student.ID)

	lesson := &model.Lesson{Date: time.Now(), Notes: "worked on barre chords"}
	require.NoError(t, svc.Create(context.Background(), TeacherViewing(teacher.ID, student.ID), lesson, nil))

	got, _ := store.GetByID(context.Background(), lesson.ID)
	require.NotNil(t, got)
	assert.Equal(t, student.ID, got.UserID, "stored under the student's account")
}

func TestLessonServiceNeglected(t *testing.T) {
	svc, _, users, _ := newTestLessons(t)
	student := addUser(users, model.RoleStudent)
	actor := Self(student.ID)

	practiced := &model.Song{ID: uuid.New(), Title: "Yesterday", Status: model.StatusRehearsing, UserID: student.ID}
	forgotten := &model.Song{ID: uuid.New(), Title: "Blackbird", Status: model.StatusRehearsing, UserID: student.ID}

	lesson := &model.Lesson{Date: time.Now(), Topics: practiced.ID.String()}
	require.NoError(t, svc.Create(context.Background(), actor, lesson, nil))

	neglected, err := svc.Neglected(context.Background(), actor, []*model.Song{practiced, forgotten})
	require.NoError(t, err)
	require.Len(t, neglected, 1)
	assert.Equal(t, "Blackbird", neglected[0].Title)
}

func TestLessonTopicIDs(t *testing.T) {
	l := &model.Lesson{Topics: "a, b,,c "}
	assert.Equal(t, []string{"a", "b", "c"}, l.TopicIDs())

	empty := &model.Lesson{Topics: ""}
	assert.Empty(t, empty.TopicIDs())
}
