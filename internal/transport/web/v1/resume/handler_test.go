package resume

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/EgorLis/resume-builder/internal/domain"
	s3storage "github.com/EgorLis/resume-builder/internal/infra/storage/s3"
	"github.com/EgorLis/resume-builder/internal/service"
)

type fakeResumes struct {
	Resumes // не используемые в тестах методы
	items   map[domain.ResumeID]domain.Resume
	created []service.NewResume
}

func (f *fakeResumes) Create(_ context.Context, uid domain.UserID, in service.NewResume) (domain.Resume, error) {
	f.created = append(f.created, in)
	title := in.Title
	if title == "" {
		title = service.DefaultTitle
	}
	r := domain.Resume{ID: uuid.New(), UserID: uid, Title: title, ResumeContent: in.Content, ResumeStyle: in.Style}
	f.items[r.ID] = r
	return r, nil
}

func (f *fakeResumes) Get(_ context.Context, uid domain.UserID, id domain.ResumeID) (domain.Resume, error) {
	r, ok := f.items[id]
	if !ok || r.UserID != uid {
		return domain.Resume{}, domain.ErrNotFound
	}
	return r, nil
}

type fakeStorage struct {
	data []byte
	etag string
}

func (s *fakeStorage) Ping(context.Context) error { return nil }
func (s *fakeStorage) Put(context.Context, io.Reader, string, string) (domain.BlobPutResult, error) {
	return domain.BlobPutResult{}, nil
}
func (s *fakeStorage) Delete(context.Context, string) error { return nil }

func (s *fakeStorage) Get(_ context.Context, _ string, rangeHeader string) (domain.BlobObject, error) {
	total := int64(len(s.data))
	obj := domain.BlobObject{ContentType: "application/pdf", ETag: s.etag, ContentLen: total}
	start, end, ok, err := s3storage.ParseRange(rangeHeader, total)
	if err != nil {
		return domain.BlobObject{}, err
	}
	body := s.data
	if ok {
		body = s.data[start : end+1]
		obj.ContentLen = end - start + 1
		obj.ContentRange = fmt.Sprintf("bytes %d-%d/%d", start, end, total)
	}
	obj.Body = io.NopCloser(bytes.NewReader(body))
	return obj, nil
}

func newTestRouter(t *testing.T, user domain.User, h *Handler) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(domain.WithUser(req.Context(), user)))
		})
	})
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/source", h.Source)
	r.Head("/{id}/source", h.Source)
	return r
}

type envelope struct {
	Error *domain.APIError `json:"error"`
	Data  json.RawMessage  `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestCreate(t *testing.T) {
	me := domain.User{ID: uuid.New(), IsActive: true}
	fr := &fakeResumes{items: map[domain.ResumeID]domain.Resume{}}
	router := newTestRouter(t, me, &Handler{Log: zap.NewNop(), Resumes: fr})

	t.Run("empty body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		require.Equal(t, http.StatusCreated, rec.Code)

		var sum domain.ResumeSummary
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &sum))
		assert.Equal(t, service.DefaultTitle, sum.Title)
	})

	t.Run("title from query", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/?title=Backend", nil))
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "Backend", fr.created[len(fr.created)-1].Title)
	})

	t.Run("body with template", func(t *testing.T) {
		body := `{"title":"Data","template_id":"modern","content":{"professional_summary":"hi"}}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
		require.Equal(t, http.StatusCreated, rec.Code)
		last := fr.created[len(fr.created)-1]
		assert.Equal(t, "modern", last.Style.TemplateID)
		assert.Equal(t, "hi", last.Content.ProfessionalSummary)
	})

	t.Run("title too long", func(t *testing.T) {
		body := `{"title":"` + strings.Repeat("x", 201) + `"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		env := decode(t, rec)
		require.NotNil(t, env.Error)
		assert.Equal(t, domain.ErrCodeBadParams, env.Error.Code)
		assert.Contains(t, env.Error.Text, "title")
	})
}

func TestGet(t *testing.T) {
	me := domain.User{ID: uuid.New(), IsActive: true}
	other := domain.Resume{ID: uuid.New(), UserID: uuid.New(), Title: "foreign"}
	mine := domain.Resume{ID: uuid.New(), UserID: me.ID, Title: "mine", UpdatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	fr := &fakeResumes{items: map[domain.ResumeID]domain.Resume{other.ID: other, mine.ID: mine}}
	router := newTestRouter(t, me, &Handler{Log: zap.NewNop(), Resumes: fr})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+mine.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Wed, 01 May 2024 10:00:00 GMT", rec.Header().Get("Last-Modified"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+other.ID.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "чужое резюме не видно")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSource(t *testing.T) {
	me := domain.User{ID: uuid.New(), IsActive: true}
	withSource := domain.Resume{ID: uuid.New(), UserID: me.ID, SourceKey: "resumes/sha256/abc"}
	noSource := domain.Resume{ID: uuid.New(), UserID: me.ID}
	fr := &fakeResumes{items: map[domain.ResumeID]domain.Resume{withSource.ID: withSource, noSource.ID: noSource}}
	st := &fakeStorage{data: []byte("0123456789"), etag: "abc"}
	router := newTestRouter(t, me, &Handler{Log: zap.NewNop(), Resumes: fr, Storage: st})
	path := "/" + withSource.ID.String() + "/source"

	t.Run("full", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "0123456789", rec.Body.String())
		assert.Equal(t, `"abc"`, rec.Header().Get("ETag"))
		assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	})

	t.Run("range", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Range", "bytes=2-4")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusPartialContent, rec.Code)
		assert.Equal(t, "234", rec.Body.String())
		assert.Equal(t, "bytes 2-4/10", rec.Header().Get("Content-Range"))
		assert.Equal(t, "3", rec.Header().Get("Content-Length"))
	})

	t.Run("range beyond size", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Range", "bytes=50-60")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("etag match", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("If-None-Match", `"abc"`)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotModified, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("head", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "10", rec.Header().Get("Content-Length"))
		assert.Empty(t, rec.Body.String())
	})

	t.Run("no source file", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+noSource.ID.String()+"/source", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
