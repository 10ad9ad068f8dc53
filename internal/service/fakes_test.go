package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/EgorLis/resume-builder/internal/cache"
	"github.com/EgorLis/resume-builder/internal/domain"
	"github.com/EgorLis/resume-builder/internal/infra/cache/memory"
)

func newTestStore(t *testing.T) *cache.Store {
	t.Helper()
	s := cache.NewStore(memory.New(zap.NewNop()), nil, zap.NewNop(), nil)
	require.NoError(t, s.Connect(context.Background()))
	t.Cleanup(func() { _ = s.Disconnect() })
	return s
}

type fakeUsers struct {
	mu    sync.Mutex
	byID  map[domain.UserID]domain.User
	reads int
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[domain.UserID]domain.User{}} }

func (f *fakeUsers) Close()                     {}
func (f *fakeUsers) Ping(context.Context) error { return nil }

func (f *fakeUsers) CreateUser(_ context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.byID {
		if x.Email == u.Email {
			return domain.User{}, domain.ErrConflict
		}
	}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) UserByEmail(_ context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.byID {
		if x.Email == email {
			return x, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (f *fakeUsers) UserByID(_ context.Context, id domain.UserID) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id domain.UserID, passHash string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PassHash, u.UpdatedAt = passHash, at
	f.byID[id] = u
	return nil
}

type fakeResumes struct {
	mu       sync.Mutex
	resumes  map[domain.ResumeID]domain.Resume
	versions []domain.ResumeVersion
	reads    int
}

func newFakeResumes() *fakeResumes {
	return &fakeResumes{resumes: map[domain.ResumeID]domain.Resume{}}
}

func (f *fakeResumes) CreateResume(_ context.Context, r domain.Resume) (domain.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumes[r.ID] = r
	return r, nil
}

func (f *fakeResumes) ResumeByID(_ context.Context, id domain.ResumeID, owner domain.UserID) (domain.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	r, ok := f.resumes[id]
	if !ok || r.UserID != owner {
		return domain.Resume{}, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeResumes) owned(owner domain.UserID) []domain.Resume {
	var out []domain.Resume
	for _, r := range f.resumes {
		if r.UserID == owner {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}

func (f *fakeResumes) LatestResume(_ context.Context, owner domain.UserID) (domain.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	rs := f.owned(owner)
	if len(rs) == 0 {
		return domain.Resume{}, domain.ErrNotFound
	}
	return rs[0], nil
}

func (f *fakeResumes) ListResumes(_ context.Context, owner domain.UserID, offset, limit int) ([]domain.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	rs := f.owned(owner)
	if offset >= len(rs) {
		return nil, nil
	}
	end := offset + limit
	if end > len(rs) {
		end = len(rs)
	}
	return rs[offset:end], nil
}

func (f *fakeResumes) CountResumes(_ context.Context, owner domain.UserID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.owned(owner)), nil
}

func (f *fakeResumes) UpdateResume(_ context.Context, r domain.Resume) (domain.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.resumes[r.ID]; !ok {
		return domain.Resume{}, domain.ErrNotFound
	}
	f.resumes[r.ID] = r
	return r, nil
}

func (f *fakeResumes) DeleteResume(_ context.Context, id domain.ResumeID, owner domain.UserID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resumes[id]
	if !ok || r.UserID != owner {
		return domain.ErrNotFound
	}
	delete(f.resumes, id)
	return nil
}

func (f *fakeResumes) SetDefaultResume(_ context.Context, id domain.ResumeID, owner domain.UserID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resumes[id]
	if !ok || r.UserID != owner {
		return domain.ErrNotFound
	}
	for k, x := range f.resumes {
		if x.UserID == owner {
			x.IsDefault = k == id
			f.resumes[k] = x
		}
	}
	return nil
}

func (f *fakeResumes) CreateVersion(_ context.Context, v domain.ResumeVersion) (domain.ResumeVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, x := range f.versions {
		if x.ResumeID == v.ResumeID && x.Version > n {
			n = x.Version
		}
	}
	v.Version = n + 1
	f.versions = append(f.versions, v)
	return v, nil
}

func (f *fakeResumes) ListVersions(_ context.Context, resumeID domain.ResumeID, owner domain.UserID) ([]domain.ResumeVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ResumeVersion
	for _, v := range f.versions {
		if v.ResumeID == resumeID && v.UserID == owner {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (f *fakeResumes) VersionByID(_ context.Context, id domain.VersionID, resumeID domain.ResumeID, owner domain.UserID) (domain.ResumeVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.versions {
		if v.ID == id && v.ResumeID == resumeID && v.UserID == owner {
			return v, nil
		}
	}
	return domain.ResumeVersion{}, domain.ErrNotFound
}
