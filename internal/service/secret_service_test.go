package service

import (
	"context"
	"testing"

	"github.com/lespal/lespal_server/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSecrets(t *testing.T) (*SecretService, *fakeSecretStore, *fakeLinkStore, *fakeUserStore) {
	t.Helper()
	secrets := newFakeSecretStore()
	links := &fakeLinkStore{}
	users := newFakeUserStore()
	return NewSecretService(secrets, links, users, zap.NewNop()), secrets, links, users
}

func TestResolveEffectiveSecret_OwnKeyWins(t *testing.T) {
	svc, secrets, links, users := newTestSecrets(t)
	teacher := addUser(users, model.RoleTeacher)
	student := addUser(users, model.RoleStudent)
	links.add(teacher.ID, student.ID)

	require.NoError(t, secrets.Upsert(context.Background(), teacher.ID, model.SecretGeminiAPIKey, "teacher-key"))
	require.NoError(t, secrets.Upsert(context.Background(), student.ID, model.SecretGeminiAPIKey, "own-key"))

	value, err := svc.ResolveEffectiveSecret(context.Background(), Self(student.ID), model.SecretGeminiAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "own-key", value)
}

func TestResolveEffectiveSecret_StudentInheritsTeacherKey(t *testing.T) {
	svc, secrets, links, users := newTestSecrets(t)
	teacher := addUser(users, model.RoleTeacher)
	student := addUser(users, model.RoleStudent)
	links.add(teacher.ID, student.ID)

	require.NoError(t, secrets.Upsert(context.Background(), teacher.ID, model.SecretGeminiAPIKey, "teacher-key"))

	value, err := svc.ResolveEffectiveSecret(context.Background(), Self(student.ID), model.SecretGeminiAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "teacher-key", value)
}

func TestResolveEffectiveSecret_FirstTeacherOfMany(t *testing.T) {
	svc, secrets, links, users := newTestSecrets(t)
	first := addUser(users, model.RoleTeacher)
	second := addUser(users, model.RoleTeacher)
	student := addUser(users, model.RoleStudent)
	links.add(first.ID, student.ID)
	links.add(second.ID, student.ID)

	require.NoError(t, secrets.Upsert(context.Background(), first.ID, model.SecretGeminiAPIKey, "first-key"))
	require.NoError(t, secrets.Upsert(context.Background(), second.ID, model.SecretGeminiAPIKey, "second-key"))

	value, err := svc.ResolveEffectiveSecret(context.Background(), Self(student.ID), model.SecretGeminiAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "first-key", value, "first link by grant order wins")
}

func TestResolveEffectiveSecret_TeacherViewingStudentInherits(t *testing.T) {
	svc, secrets, links, users := newTestSecrets(t)
	teacher := addUser(users, model.RoleTeacher)
	student := addUser(users, model.RoleStudent)
	links.add(teacher.ID, student.ID)

	require.NoError(t, secrets.Upsert(context.Background(), student.ID, model.SecretGeminiAPIKey, "student-key"))

	value, err := svc.ResolveEffectiveSecret(context.Background(), TeacherViewing(teacher.ID, student.ID), model.SecretGeminiAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "student-key", value)
}

func TestResolveEffectiveSecret_SwitchingViewedStudentSwitchesKey(t *testing.T) {
	svc, secrets, links, users := newTestSecrets(t)
	teacher := addUser(users, model.RoleTeacher)
	first := addUser(users, model.RoleStudent)
	second := addUser(users, model.RoleStudent)
	links.add(teacher.ID, first.ID)
	links.add(teacher.ID, second.ID)

	require.NoError(t, secrets.Upsert(context.Background(), first.ID, model.SecretGeminiAPIKey, "first-student-key"))
	require.NoError(t, secrets.Upsert(context.Background(), second.ID, model.SecretGeminiAPIKey, "second-student-key"))

	value, err := svc.ResolveEffectiveSecret(context.Background(), TeacherViewing(teacher.ID, first.ID), model.SecretGeminiAPIKey)
	require.NoError(t, err)
	require.Equal(t, "first-student-key", value)

	// Переключение на другого студента не должно отдавать чужой ключ
	value, err = svc.ResolveEffectiveSecret(context.Background(), TeacherViewing(teacher.ID, second.ID), model.SecretGeminiAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "second-student-key", value)

	value, err = svc.ResolveEffectiveSecret(context.Background(), Self(teacher.ID), model.SecretGeminiAPIKey)
	require.NoError(t, err)
	assert.Empty(t, value, "у учителя нет собственного ключа")
}

func TestResolveEffectiveSecret_UnlinkStopsInheritance(t *testing.T) {
	svc, secrets, links, users := newTestSecrets(t)
	teacher := addUser(users, model.RoleTeacher)
	student := addUser(users, model.RoleStudent)
	links.add(teacher.ID, student.ID)

	require.NoError(t, secrets.Upsert(context.Background(), teacher.ID, model.SecretGeminiAPIKey, "teacher-key"))

	value, err := svc.ResolveEffectiveSecret(context.Background(), Self(student.ID), model.SecretGeminiAPIKey)
	require.NoError(t, err)
	require.Equal(t, "teacher-key", value)

	require.NoError(t, links.Delete(context.Background(), teacher.ID, student.ID))

	value, err = svc.ResolveEffectiveSecret(context.Background(), Self(student.ID), model.SecretGeminiAPIKey)
	require.NoError(t, err)
	assert.Empty(t, value, "после разрыва связи ключ учителя недоступен")
}

func TestResolveEffectiveSecret_AbsentEverywhere(t *testing.T) {
	svc, _, _, users := newTestSecrets(t)
	student := addUser(users, model.RoleStudent)

	value, err := svc.ResolveEffectiveSecret(context.Background(), Self(student.ID), model.SecretGeminiAPIKey)
	require.NoError(t, err, "absence is degradation, not an error")
	assert.Empty(t, value)
}

func TestResolveEffectiveSecret_CachedValueSkipsStore(t *testing.T) {
	svc, secrets, _, users := newTestSecrets(t)
	student := addUser(users, model.RoleStudent)

	require.NoError(t, secrets.Upsert(context.Background(), student.ID, model.SecretGeminiAPIKey, "v1"))

	value, err := svc.ResolveEffectiveSecret(context.Background(), Self(student.ID), model.SecretGeminiAPIKey)
	require.NoError(t, err)
	require.Equal(t, "v1", value)

	// Значение в сторе меняется мимо сервиса — кеш продолжает отдавать старое
	require.NoError(t, secrets.Upsert(context.Background(), student.ID, model.SecretGeminiAPIKey, "v2"))
	value, err = svc.ResolveEffectiveSecret(context.Background(), Self(student.ID), model.SecretGeminiAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "v1", value)

	// SetSecret через сервис сбрасывает кеш
	require.NoError(t, svc.SetSecret(context.Background(), student.ID, model.SecretGeminiAPIKey, "v3"))
	value, err = svc.ResolveEffectiveSecret(context.Background(), Self(student.ID), model.SecretGeminiAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "v3", value)
}
