package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lespal/lespal_server/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSharing(t *testing.T) (*SharingService, *fakeInviteStore, *fakeLinkStore, *fakeUserStore) {
	t.Helper()
	links := &fakeLinkStore{}
	invites := newFakeInviteStore(links)
	users := newFakeUserStore()
	return NewSharingService(invites, links, users, zap.NewNop()), invites, links, users
}

func addUser(users *fakeUserStore, role string) *model.User {
	u := &model.User{ID: uuid.New(), Role: role}
	users.users[u.ID] = u
	return u
}

func TestCreateInviteCode(t *testing.T) {
	svc, _, _, users := newTestSharing(t)
	teacher := addUser(users, model.RoleTeacher)

	code, err := svc.CreateInviteCode(context.Background(), teacher.ID)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{6}$`), code.Code)
	assert.Equal(t, teacher.ID, code.TeacherID)
	require.NotNil(t, code.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), *code.ExpiresAt, time.Minute)
	assert.Nil(t, code.UsedBy)
}

func TestCreateInviteCode_StudentForbidden(t *testing.T) {
	svc, _, _, users := newTestSharing(t)
	student := addUser(users, model.RoleStudent)

	_, err := svc.CreateInviteCode(context.Background(), student.ID)
	assert.ErrorIs(t, err, model.ErrNotATeacher)
}

func TestCreateInviteCode_RetriesOnCollision(t *testing.T) {
	svc, invites, _, users := newTestSharing(t)
	teacher := addUser(users, model.RoleTeacher)

	invites.collisions = 2

	code, err := svc.CreateInviteCode(context.Background(), teacher.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, code.Code)
}

func TestRedeemInviteCode(t *testing.T) {
	svc, _, links, users := newTestSharing(t)
	teacher := addUser(users, model.RoleTeacher)
	student := addUser(users, model.RoleStudent)

	code, err := svc.CreateInviteCode(context.Background(), teacher.ID)
	require.NoError(t, err)

	// Регистр не важен
	gotTeacher, err := svc.RedeemInviteCode(context.Background(), student.ID, "  "+code.Code+" ")
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, gotTeacher)
	assert.True(t, links.has(teacher.ID, student.ID))
}

func TestRedeemInviteCode_SecondAttemptFails(t *testing.T) {
	svc, _, links, users := newTestSharing(t)
	teacher := addUser(users, model.RoleTeacher)
	first := addUser(users, model.RoleStudent)
	second := addUser(users, model.RoleStudent)

	code, err := svc.CreateInviteCode(context.Background(), teacher.ID)
	require.NoError(t, err)

	_, err = svc.RedeemInviteCode(context.Background(), first.ID, code.Code)
	require.NoError(t, err)

	// Повторное погашение — та же ошибка, что и для неизвестного кода
	_, err = svc.RedeemInviteCode(context.Background(), second.ID, code.Code)
	assert.ErrorIs(t, err, model.ErrInvalidOrExpiredCode)
	assert.False(t, links.has(teacher.ID, second.ID))
}

func TestRedeemInviteCode_ExpiredSameErrorAsUnknown(t *testing.T) {
	svc, invites, _, users := newTestSharing(t)
	teacher := addUser(users, model.RoleTeacher)
	student := addUser(users, model.RoleStudent)

	expired := time.Now().Add(-time.Hour)
	invites.codes["OLD123"] = &model.InviteCode{
		ID:        99,
		TeacherID: teacher.ID,
		Code:      "OLD123",
		ExpiresAt: &expired,
	}

	_, errExpired := svc.RedeemInviteCode(context.Background(), student.ID, "OLD123")
	_, errUnknown := svc.RedeemInviteCode(context.Background(), student.ID, "NOSUCH")

	assert.ErrorIs(t, errExpired, model.ErrInvalidOrExpiredCode)
	assert.ErrorIs(t, errUnknown, model.ErrInvalidOrExpiredCode)
}

func TestRedeemInviteCode_AlreadyLinkedKeepsCodeUnused(t *testing.T) {
	svc, invites, links, users := newTestSharing(t)
	teacher := addUser(users, model.RoleTeacher)
	student := addUser(users, model.RoleStudent)

	links.add(teacher.ID, student.ID)

	code, err := svc.CreateInviteCode(context.Background(), teacher.ID)
	require.NoError(t, err)

	_, err = svc.RedeemInviteCode(context.Background(), student.ID, code.Code)
	assert.ErrorIs(t, err, model.ErrAlreadyLinked)

	// Код не погашен и пригоден для другого студента
	assert.Nil(t, invites.codes[code.Code].UsedBy)

	other := addUser(users, model.RoleStudent)
	_, err = svc.RedeemInviteCode(context.Background(), other.ID, code.Code)
	assert.NoError(t, err)
}

func TestRedeemInviteCode_EmptyCode(t *testing.T) {
	svc, _, _, users := newTestSharing(t)
	student := addUser(users, model.RoleStudent)

	_, err := svc.RedeemInviteCode(context.Background(), student.ID, "   ")
	assert.ErrorIs(t, err, model.ErrInvalidOrExpiredCode)
}

func TestUnlinkTeacher_Idempotent(t *testing.T) {
	svc, _, links, users := newTestSharing(t)
	teacher := addUser(users, model.RoleTeacher)
	student := addUser(users, model.RoleStudent)

	// Связи нет — это не ошибка
	require.NoError(t, svc.UnlinkTeacher(context.Background(), student.ID, teacher.ID))

	links.add(teacher.ID, student.ID)
	require.NoError(t, svc.UnlinkTeacher(context.Background(), student.ID, teacher.ID))
	assert.False(t, links.has(teacher.ID, student.ID))

	// Повторный unlink — по-прежнему no-op
	assert.NoError(t, svc.UnlinkTeacher(context.Background(), student.ID, teacher.ID))
}

func TestResolveScope_Self(t *testing.T) {
	svc, _, _, users := newTestSharing(t)
	student := addUser(users, model.RoleStudent)

	userID, err := svc.ResolveScope(context.Background(), Self(student.ID))
	require.NoError(t, err)
	assert.Equal(t, student.ID, userID)
}

func TestResolveScope_TeacherViewingLinkedStudent(t *testing.T) {
	svc, _, links, users := newTestSharing(t)
	teacher := addUser(users, model.RoleTeacher)
	student := addUser(users, model.RoleStudent)
	links.add(teacher.ID, student.ID)

	userID, err := svc.ResolveScope(context.Background(), TeacherViewing(teacher.ID, student.ID))
	require.NoError(t, err)
	assert.Equal(t, student.ID, userID, "reads and writes land on the student's account")
}

func TestResolveScope_UnlinkedStudentForbidden(t *testing.T) {
	svc, _, _, users := newTestSharing(t)
	teacher := addUser(users, model.RoleTeacher)
	student := addUser(users, model.RoleStudent)

	_, err := svc.ResolveScope(context.Background(), TeacherViewing(teacher.ID, student.ID))
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestResolveScope_StudentCannotView(t *testing.T) {
	svc, _, links, users := newTestSharing(t)
	a := addUser(users, model.RoleStudent)
	b := addUser(users, model.RoleStudent)
	links.add(a.ID, b.ID)

	_, err := svc.ResolveScope(context.Background(), TeacherViewing(a.ID, b.ID))
	assert.ErrorIs(t, err, model.ErrForbidden)
}
