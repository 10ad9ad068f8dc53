package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/EgorLis/resume-builder/internal/domain"
)

func newTestResumes(t *testing.T) (*Resumes, *fakeResumes) {
	t.Helper()
	repo := newFakeResumes()
	s := NewResumes(repo, newTestStore(t), zap.NewNop())
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s, repo
}

func TestCreateDefaultsAndInitialVersion(t *testing.T) {
	s, repo := newTestResumes(t)
	ctx := context.Background()
	uid := uuid.New()

	r, err := s.Create(ctx, uid, NewResume{})
	require.NoError(t, err)

	assert.Equal(t, DefaultTitle, r.Title)
	assert.Equal(t, domain.DefaultStyle(), r.ResumeStyle)
	assert.NotNil(t, r.Skills)
	require.Len(t, repo.versions, 1)
	assert.Equal(t, 1, repo.versions[0].Version)
}

func TestGetIsCachedAndUpdateInvalidates(t *testing.T) {
	s, repo := newTestResumes(t)
	ctx := context.Background()
	uid := uuid.New()

	r, err := s.Create(ctx, uid, NewResume{Title: "Backend"})
	require.NoError(t, err)

	_, err = s.Get(ctx, uid, r.ID)
	require.NoError(t, err)
	reads := repo.reads
	got, err := s.Get(ctx, uid, r.ID)
	require.NoError(t, err)
	assert.Equal(t, reads, repo.reads, "second read must be served from cache")
	assert.Equal(t, "Backend", got.Title)

	title := "Platform"
	_, err = s.Update(ctx, uid, r.ID, domain.ResumePatch{Title: &title})
	require.NoError(t, err)

	got, err = s.Get(ctx, uid, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Platform", got.Title, "read after update must not see stale cache")
}

func TestListPaginationAndInvalidation(t *testing.T) {
	s, _ := newTestResumes(t)
	ctx := context.Background()
	uid := uuid.New()

	for _, title := range []string{"a", "b", "c"} {
		_, err := s.Create(ctx, uid, NewResume{Title: title})
		require.NoError(t, err)
	}

	page, err := s.List(ctx, uid, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "c", page.Items[0].Title)

	_, err = s.Create(ctx, uid, NewResume{Title: "d"})
	require.NoError(t, err)
	page, err = s.List(ctx, uid, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, "d", page.Items[0].Title)

	n, err := s.Count(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = s.List(ctx, uid, 0, 10)
	assert.ErrorIs(t, err, domain.ErrBadParams)
	_, err = s.List(ctx, uid, 1, MaxPageLimit+1)
	assert.ErrorIs(t, err, domain.ErrBadParams)
}

func TestOwnershipIsEnforced(t *testing.T) {
	s, _ := newTestResumes(t)
	ctx := context.Background()

	r, err := s.Create(ctx, uuid.New(), NewResume{Title: "mine"})
	require.NoError(t, err)

	other := uuid.New()
	_, err = s.Get(ctx, other, r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, other, r.ID), domain.ErrNotFound)
	_, err = s.Versions(ctx, other, r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLatestAndUpdateLatest(t *testing.T) {
	s, _ := newTestResumes(t)
	ctx := context.Background()
	uid := uuid.New()

	_, err := s.Latest(ctx, uid)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.Create(ctx, uid, NewResume{Title: "first"})
	require.NoError(t, err)
	second, err := s.Create(ctx, uid, NewResume{Title: "second"})
	require.NoError(t, err)

	latest, err := s.Latest(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	summary := "Go engineer"
	updated, err := s.UpdateLatest(ctx, uid, domain.ResumePatch{ProfessionalSummary: &summary})
	require.NoError(t, err)
	assert.Equal(t, second.ID, updated.ID)

	latest, err = s.Latest(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "Go engineer", latest.ProfessionalSummary)
}

func TestVersionsAndRestore(t *testing.T) {
	s, _ := newTestResumes(t)
	ctx := context.Background()
	uid := uuid.New()

	r, err := s.Create(ctx, uid, NewResume{Title: "v1"})
	require.NoError(t, err)
	title := "v2"
	_, err = s.Update(ctx, uid, r.ID, domain.ResumePatch{Title: &title})
	require.NoError(t, err)

	vs, err := s.Versions(ctx, uid, r.ID)
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, 2, vs[0].Version)
	first := vs[len(vs)-1]
	assert.Equal(t, "v1", first.Title)

	restored, err := s.RestoreVersion(ctx, uid, r.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "v1", restored.Title)

	// перед восстановлением сохраняется снимок текущего состояния
	vs, err = s.Versions(ctx, uid, r.ID)
	require.NoError(t, err)
	require.Len(t, vs, 3)
	assert.Equal(t, "v2", vs[0].Title)

	_, err = s.RestoreVersion(ctx, uid, r.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetDefaultAndDelete(t *testing.T) {
	s, _ := newTestResumes(t)
	ctx := context.Background()
	uid := uuid.New()

	a, err := s.Create(ctx, uid, NewResume{Title: "a"})
	require.NoError(t, err)
	b, err := s.Create(ctx, uid, NewResume{Title: "b"})
	require.NoError(t, err)

	require.NoError(t, s.SetDefault(ctx, uid, a.ID))
	got, err := s.Get(ctx, uid, a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)

	require.NoError(t, s.SetDefault(ctx, uid, b.ID))
	got, err = s.Get(ctx, uid, a.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault)

	require.NoError(t, s.Delete(ctx, uid, a.ID))
	_, err = s.Get(ctx, uid, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNilStoreStillWorks(t *testing.T) {
	s := NewResumes(newFakeResumes(), nil, nil)
	ctx := context.Background()
	uid := uuid.New()

	r, err := s.Create(ctx, uid, NewResume{Title: "x"})
	require.NoError(t, err)
	got, err := s.Get(ctx, uid, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
}
