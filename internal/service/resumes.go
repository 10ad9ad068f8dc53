package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EgorLis/resume-builder/internal/cache"
	"github.com/EgorLis/resume-builder/internal/domain"
)

// Пагинация списка резюме
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	DefaultTitle     = "My Resume"
)

// NewResume: данные для создания резюме. Пустой Style: оформление по умолчанию.
type NewResume struct {
	Title     string
	Content   domain.ResumeContent
	Style     domain.ResumeStyle
	SourceKey string
}

type Resumes struct {
	log   *zap.Logger
	repo  domain.ResumesRepo
	store *cache.Store
	now   func() time.Time
}

func NewResumes(repo domain.ResumesRepo, store *cache.Store, log *zap.Logger) *Resumes {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resumes{log: log, repo: repo, store: store, now: time.Now}
}

// mutate: единственный путь изменения данных: после fn (успешной или нет)
// кеш пользователя user:{id}:* сбрасывается до возврата.
func (s *Resumes) mutate(ctx context.Context, uid domain.UserID, op string, fn func(context.Context) (domain.Resume, error)) (domain.Resume, error) {
	r, err := fn(ctx)
	n := s.store.ClearUserCache(ctx, uid.String())
	if err != nil {
		return domain.Resume{}, err
	}
	s.log.Debug("resume mutated", zap.String("op", op), zap.String("user_id", uid.String()),
		zap.String("resume_id", r.ID.String()), zap.Int("cache_cleared", n))
	return r, nil
}

func (s *Resumes) Create(ctx context.Context, uid domain.UserID, in NewResume) (domain.Resume, error) {
	return s.mutate(ctx, uid, "create", func(ctx context.Context) (domain.Resume, error) {
		now := s.now().UTC()
		r := domain.Resume{
			ID:            uuid.New(),
			UserID:        uid,
			Title:         strings.TrimSpace(in.Title),
			ResumeContent: withEmptyLists(in.Content),
			ResumeStyle:   withDefaultStyle(in.Style),
			SourceKey:     in.SourceKey,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if r.Title == "" {
			r.Title = DefaultTitle
		}
		created, err := s.repo.CreateResume(ctx, r)
		if err != nil {
			return domain.Resume{}, err
		}
		// первая версия: состояние сразу после создания
		if err := s.snapshot(ctx, created); err != nil {
			return domain.Resume{}, err
		}
		return created, nil
	})
}

// List: страница резюме (без содержимого), свежие изменения первыми.
func (s *Resumes) List(ctx context.Context, uid domain.UserID, page, limit int) (domain.ResumePage, error) {
	if page < 1 || limit < 1 || limit > MaxPageLimit {
		return domain.ResumePage{}, fmt.Errorf("page must be >= 1 and limit in [1, %d]: %w", MaxPageLimit, domain.ErrBadParams)
	}
	return cache.Load(ctx, s.store, cache.UserData, domain.CacheKeyResumeList(uid, page, limit), 0,
		func(ctx context.Context) (domain.ResumePage, error) {
			items, err := s.repo.ListResumes(ctx, uid, (page-1)*limit, limit)
			if err != nil {
				return domain.ResumePage{}, err
			}
			total, err := s.repo.CountResumes(ctx, uid)
			if err != nil {
				return domain.ResumePage{}, err
			}
			out := domain.ResumePage{Items: make([]domain.ResumeSummary, 0, len(items)), Total: total, Page: page, Limit: limit}
			for _, r := range items {
				out.Items = append(out.Items, r.Summary())
			}
			return out, nil
		})
}

// Latest: последнее изменённое резюме пользователя.
func (s *Resumes) Latest(ctx context.Context, uid domain.UserID) (domain.Resume, error) {
	return cache.Load(ctx, s.store, cache.UserData, domain.CacheKeyMyResume(uid), 0,
		func(ctx context.Context) (domain.Resume, error) { return s.repo.LatestResume(ctx, uid) })
}

func (s *Resumes) Get(ctx context.Context, uid domain.UserID, id domain.ResumeID) (domain.Resume, error) {
	return cache.Load(ctx, s.store, cache.UserData, domain.CacheKeyResume(uid, id), 0,
		func(ctx context.Context) (domain.Resume, error) { return s.repo.ResumeByID(ctx, id, uid) })
}

func (s *Resumes) Count(ctx context.Context, uid domain.UserID) (int, error) {
	return cache.Load(ctx, s.store, cache.UserData, domain.CacheKeyResumeCount(uid), 0,
		func(ctx context.Context) (int, error) { return s.repo.CountResumes(ctx, uid) })
}

// Update сохраняет снимок текущего состояния и применяет патч.
func (s *Resumes) Update(ctx context.Context, uid domain.UserID, id domain.ResumeID, patch domain.ResumePatch) (domain.Resume, error) {
	return s.mutate(ctx, uid, "update", func(ctx context.Context) (domain.Resume, error) {
		cur, err := s.repo.ResumeByID(ctx, id, uid)
		if err != nil {
			return domain.Resume{}, err
		}
		return s.update(ctx, cur, patch.Apply)
	})
}

// UpdateLatest: Update для последнего изменённого резюме.
func (s *Resumes) UpdateLatest(ctx context.Context, uid domain.UserID, patch domain.ResumePatch) (domain.Resume, error) {
	return s.mutate(ctx, uid, "update_latest", func(ctx context.Context) (domain.Resume, error) {
		cur, err := s.repo.LatestResume(ctx, uid)
		if err != nil {
			return domain.Resume{}, err
		}
		return s.update(ctx, cur, patch.Apply)
	})
}

func (s *Resumes) update(ctx context.Context, cur domain.Resume, apply func(*domain.Resume)) (domain.Resume, error) {
	if err := s.snapshot(ctx, cur); err != nil {
		return domain.Resume{}, err
	}
	next := cur
	apply(&next)
	if strings.TrimSpace(next.Title) == "" {
		next.Title = cur.Title
	}
	next.ResumeContent = withEmptyLists(next.ResumeContent)
	next.UpdatedAt = s.now().UTC()
	return s.repo.UpdateResume(ctx, next)
}

func (s *Resumes) Delete(ctx context.Context, uid domain.UserID, id domain.ResumeID) error {
	_, err := s.mutate(ctx, uid, "delete", func(ctx context.Context) (domain.Resume, error) {
		return domain.Resume{ID: id}, s.repo.DeleteResume(ctx, id, uid)
	})
	return err
}

// SetDefault делает резюме основным (флаг снимается с остальных).
func (s *Resumes) SetDefault(ctx context.Context, uid domain.UserID, id domain.ResumeID) error {
	_, err := s.mutate(ctx, uid, "set_default", func(ctx context.Context) (domain.Resume, error) {
		return domain.Resume{ID: id}, s.repo.SetDefaultResume(ctx, id, uid)
	})
	return err
}

// Versions: снимки резюме, новые первыми.
func (s *Resumes) Versions(ctx context.Context, uid domain.UserID, id domain.ResumeID) ([]domain.ResumeVersion, error) {
	return cache.Load(ctx, s.store, cache.UserData, domain.CacheKeyResumeVersions(uid, id), 0,
		func(ctx context.Context) ([]domain.ResumeVersion, error) {
			if _, err := s.repo.ResumeByID(ctx, id, uid); err != nil {
				return nil, err
			}
			vs, err := s.repo.ListVersions(ctx, id, uid)
			if err != nil {
				return nil, err
			}
			if vs == nil {
				vs = []domain.ResumeVersion{}
			}
			return vs, nil
		})
}

// RestoreVersion сохраняет снимок текущего состояния и возвращает резюме к версии vid.
func (s *Resumes) RestoreVersion(ctx context.Context, uid domain.UserID, id domain.ResumeID, vid domain.VersionID) (domain.Resume, error) {
	return s.mutate(ctx, uid, "restore_version", func(ctx context.Context) (domain.Resume, error) {
		v, err := s.repo.VersionByID(ctx, vid, id, uid)
		if err != nil {
			return domain.Resume{}, err
		}
		cur, err := s.repo.ResumeByID(ctx, id, uid)
		if err != nil {
			return domain.Resume{}, err
		}
		return s.update(ctx, cur, func(r *domain.Resume) {
			r.Title = v.Title
			r.ResumeContent = v.Content
			r.ResumeStyle = v.Style
		})
	})
}

// snapshot пишет версию; номер назначает репозиторий.
func (s *Resumes) snapshot(ctx context.Context, r domain.Resume) error {
	_, err := s.repo.CreateVersion(ctx, domain.ResumeVersion{
		ID:        uuid.New(),
		ResumeID:  r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Content:   r.ResumeContent,
		Style:     r.ResumeStyle,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("snapshot resume %s: %w", r.ID, err)
	}
	return nil
}

func withDefaultStyle(st domain.ResumeStyle) domain.ResumeStyle {
	def := domain.DefaultStyle()
	if st.TemplateID == "" {
		st.TemplateID = def.TemplateID
	}
	if st.FontFamily == "" {
		st.FontFamily = def.FontFamily
	}
	if st.AccentColor == "" {
		st.AccentColor = def.AccentColor
	}
	return st
}

func withEmptyLists(c domain.ResumeContent) domain.ResumeContent {
	if c.Skills == nil {
		c.Skills = []domain.Skill{}
	}
	if c.Experience == nil {
		c.Experience = []domain.Experience{}
	}
	if c.Education == nil {
		c.Education = []domain.Education{}
	}
	if c.Projects == nil {
		c.Projects = []domain.Project{}
	}
	if c.Certifications == nil {
		c.Certifications = []domain.Certification{}
	}
	return c
}
