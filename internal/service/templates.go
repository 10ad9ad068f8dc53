package service

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/EgorLis/resume-builder/internal/cache"
	"github.com/EgorLis/resume-builder/internal/domain"
)

//go:embed catalog.json
var catalogJSON []byte

// MinSearchQuery: минимальная длина поискового запроса по шаблонам.
const MinSearchQuery = 2

type TemplateStyling struct {
	HeaderStyle    string `json:"header_style"`
	SectionSpacing string `json:"section_spacing"`
	BulletStyle    string `json:"bullet_style"`
	Emphasis       string `json:"emphasis"`
}

type TemplateLayout struct {
	Layout       string          `json:"layout"`
	FontFamily   string          `json:"font_family"`
	AccentColor  string          `json:"accent_color"`
	SectionOrder []string        `json:"section_order"`
	Styling      TemplateStyling `json:"styling"`
}

type Template struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Professions  []string       `json:"professions"`
	Sections     []string       `json:"sections"`
	PreviewImage string         `json:"preview_image"`
	Category     string         `json:"category"`
	Layout       TemplateLayout `json:"layout"`
}

// Style: оформление резюме по умолчанию для шаблона.
func (t Template) Style() domain.ResumeStyle {
	return domain.ResumeStyle{TemplateID: t.ID, FontFamily: t.Layout.FontFamily, AccentColor: t.Layout.AccentColor}
}

func templatesOp(name string) cache.Op {
	return cache.Op{Category: cache.Templates, Name: name}
}

// Templates: статический каталог шаблонов. Все выборки кешируются
// в категории templates и сбрасываются ClearCache.
type Templates struct {
	log     *zap.Logger
	store   *cache.Store
	catalog []Template

	all          func(context.Context, struct{}) ([]Template, error)
	byCategory   func(context.Context, string) ([]Template, error)
	byProfession func(context.Context, string) ([]Template, error)
	get          func(context.Context, string) (Template, error)
	search       func(context.Context, string) ([]Template, error)
	categories   func(context.Context, struct{}) ([]string, error)
	professions  func(context.Context, struct{}) ([]string, error)
}

func NewTemplates(store *cache.Store, log *zap.Logger) (*Templates, error) {
	var catalog []Template
	if err := json.Unmarshal(catalogJSON, &catalog); err != nil {
		return nil, fmt.Errorf("load template catalog: %w", err)
	}
	return newTemplates(catalog, store, log), nil
}

func newTemplates(catalog []Template, store *cache.Store, log *zap.Logger) *Templates {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Templates{log: log, store: store, catalog: catalog}

	noArgs := func(struct{}) string { return cache.HashArgs(nil) }
	byString := func(s string) string { return cache.HashArgs([]any{s}) }

	t.all = cache.Wrap(store, templatesOp("all"), noArgs, func(context.Context, struct{}) ([]Template, error) {
		return t.filter(func(Template) bool { return true }), nil
	})
	t.byCategory = cache.Wrap(store, templatesOp("by_category"), byString, func(_ context.Context, c string) ([]Template, error) {
		return t.filter(func(tp Template) bool { return tp.Category == c }), nil
	})
	// шаблон подходит, если одна из его профессий входит в запрошенную
	t.byProfession = cache.Wrap(store, templatesOp("by_profession"), byString, func(_ context.Context, p string) ([]Template, error) {
		p = strings.ToLower(p)
		return t.filter(func(tp Template) bool {
			for _, prof := range tp.Professions {
				if strings.Contains(p, strings.ToLower(prof)) {
					return true
				}
			}
			return false
		}), nil
	})
	t.get = cache.Wrap(store, templatesOp("get"), byString, func(_ context.Context, id string) (Template, error) {
		for _, tp := range t.catalog {
			if tp.ID == id {
				return tp, nil
			}
		}
		return Template{}, fmt.Errorf("template %q: %w", id, domain.ErrNotFound)
	})
	t.search = cache.Wrap(store, templatesOp("search"), byString, func(_ context.Context, q string) ([]Template, error) {
		q = strings.ToLower(q)
		return t.filter(func(tp Template) bool {
			if strings.Contains(strings.ToLower(tp.Name), q) || strings.Contains(strings.ToLower(tp.Description), q) {
				return true
			}
			for _, prof := range tp.Professions {
				if strings.Contains(strings.ToLower(prof), q) {
					return true
				}
			}
			return false
		}), nil
	})
	t.categories = cache.Wrap(store, templatesOp("categories"), noArgs, func(context.Context, struct{}) ([]string, error) {
		return t.distinct(func(tp Template) []string { return []string{tp.Category} }), nil
	})
	t.professions = cache.Wrap(store, templatesOp("professions"), noArgs, func(context.Context, struct{}) ([]string, error) {
		return t.distinct(func(tp Template) []string { return tp.Professions }), nil
	})
	return t
}

func (t *Templates) filter(keep func(Template) bool) []Template {
	out := []Template{}
	for _, tp := range t.catalog {
		if keep(tp) {
			out = append(out, tp)
		}
	}
	return out
}

func (t *Templates) distinct(values func(Template) []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, tp := range t.catalog {
		for _, v := range values(tp) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Strings(out)
	return out
}

func (t *Templates) All(ctx context.Context) ([]Template, error) { return t.all(ctx, struct{}{}) }

func (t *Templates) ByCategory(ctx context.Context, category string) ([]Template, error) {
	return t.byCategory(ctx, category)
}

func (t *Templates) ByProfession(ctx context.Context, profession string) ([]Template, error) {
	return t.byProfession(ctx, profession)
}

// Get: шаблон по id; неизвестный id: domain.ErrNotFound (ошибка не кешируется).
func (t *Templates) Get(ctx context.Context, id string) (Template, error) { return t.get(ctx, id) }

func (t *Templates) Search(ctx context.Context, query string) ([]Template, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinSearchQuery {
		return nil, fmt.Errorf("search query must be at least %d characters: %w", MinSearchQuery, domain.ErrBadParams)
	}
	return t.search(ctx, query)
}

func (t *Templates) Categories(ctx context.Context) ([]string, error) {
	return t.categories(ctx, struct{}{})
}

func (t *Templates) Professions(ctx context.Context) ([]string, error) {
	return t.professions(ctx, struct{}{})
}

// ClearCache сбрасывает templates:* и возвращает число удалённых ключей.
func (t *Templates) ClearCache(ctx context.Context) int {
	n := t.store.ClearPattern(ctx, string(cache.Templates)+":*")
	t.log.Info("template cache cleared", zap.Int("deleted", n))
	return n
}
