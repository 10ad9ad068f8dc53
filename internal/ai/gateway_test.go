package ai

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/EgorLis/resume-builder/internal/cache"
	"github.com/EgorLis/resume-builder/internal/domain"
	"github.com/EgorLis/resume-builder/internal/infra/cache/memory"
)

type fakeCompleter struct {
	mu      sync.Mutex
	name    string
	out     string
	err     error
	calls   int
	prompts []Prompt
}

func (f *fakeCompleter) Name() string { return f.name }

func (f *fakeCompleter) Complete(_ context.Context, p Prompt) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, p)
	return f.out, f.err
}

func newStore(t *testing.T) *cache.Store {
	t.Helper()
	s := cache.NewStore(memory.New(zap.NewNop()), nil, zap.NewNop(), nil)
	require.NoError(t, s.Connect(context.Background()))
	t.Cleanup(func() { _ = s.Disconnect() })
	return s
}

const parsedResume = "```json\n" + `{
  "personal_info": {"full_name": "Jane Doe", "email": "jane@example.com"},
  "professional_summary": "Backend engineer",
  "skills": ["Python", "", "Go"],
  "experience": [{"company": "Acme", "position": "Engineer", "start_date": "2020-01", "end_date": null,
                  "description": "- Built APIs\n- Led team", "is_current": true}]
}` + "\n```"

func TestParseResumeStripsFenceAndNormalizes(t *testing.T) {
	llm := &fakeCompleter{name: "groq", out: parsedResume}
	g := NewGateway(llm, llm, newStore(t), zap.NewNop())

	c := g.ParseResume(context.Background(), "Jane Doe resume", domain.ParseHints{Email: "jane@example.com"})

	assert.Equal(t, "Jane Doe", c.PersonalInfo.FullName)
	require.Len(t, c.Skills, 2)
	assert.Equal(t, "Python", c.Skills[0].Name)
	assert.Equal(t, domain.SkillIntermediate, c.Skills[1].Level)
	assert.Equal(t, "technical", c.Skills[1].CategoryID)
	require.Len(t, c.Experience, 1)
	assert.Equal(t, domain.StringList{"Built APIs", "Led team"}, c.Experience[0].Description)
	assert.Equal(t, "2020-01-01", c.Experience[0].StartDate.String())
	assert.NotNil(t, c.Certifications)

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0].User, "Detected email: jane@example.com")
	assert.True(t, llm.prompts[0].JSON)
}

func TestParseResumeIsCached(t *testing.T) {
	llm := &fakeCompleter{name: "groq", out: parsedResume}
	g := NewGateway(llm, llm, newStore(t), zap.NewNop())
	ctx := context.Background()

	first := g.ParseResume(ctx, "same text", domain.ParseHints{})
	second := g.ParseResume(ctx, "same text", domain.ParseHints{})

	assert.Equal(t, 1, llm.calls)
	assert.Equal(t, first, second)

	g.ParseResume(ctx, "other text", domain.ParseHints{})
	assert.Equal(t, 2, llm.calls)
}

func TestProviderErrorDegradesAndIsNotCached(t *testing.T) {
	llm := &fakeCompleter{name: "openai", err: errors.New("upstream 503")}
	g := NewGateway(llm, llm, newStore(t), zap.NewNop())
	ctx := context.Background()
	job := domain.JobDescription{Title: "Go developer"}

	assert.Equal(t, domain.EmptyContent(), g.ParseResume(ctx, "text", domain.ParseHints{}))
	assert.Equal(t, domain.EmptyContent(), g.OptimizeResume(ctx, domain.EmptyContent(), job))
	assert.Equal(t, domain.EmptyContent(), g.GenerateResume(ctx, job, ""))
	assert.Equal(t, CoverLetterFallback, g.GenerateCoverLetter(ctx, domain.EmptyContent(), job))
	assert.Equal(t, DefaultScore(), g.ScoreResume(ctx, domain.EmptyContent(), nil))

	// после восстановления провайдера ответ берётся у модели, а не из кеша
	llm.err = nil
	llm.out = "Dear hiring manager"
	assert.Equal(t, "Dear hiring manager", g.GenerateCoverLetter(ctx, domain.EmptyContent(), job))
}

func TestInvalidJSONDegrades(t *testing.T) {
	llm := &fakeCompleter{name: "groq", out: "Sorry, I cannot help with that"}
	g := NewGateway(llm, llm, nil, zap.NewNop())

	assert.Equal(t, domain.EmptyContent(), g.ParseResume(context.Background(), "text", domain.ParseHints{}))
}

func TestNoProvider(t *testing.T) {
	g := NewGateway(nil, nil, nil, nil)

	assert.Equal(t, DefaultScore(), g.ScoreResume(context.Background(), domain.EmptyContent(), nil))
}

func TestScoreResumeClamps(t *testing.T) {
	llm := &fakeCompleter{name: "openai", out: `{"overall_score": 140, "section_scores": {"skills": -5}, "confidence": "sure"}`}
	g := NewGateway(nil, llm, nil, zap.NewNop())
	job := &domain.JobDescription{Title: "SRE"}

	s := g.ScoreResume(context.Background(), domain.EmptyContent(), job)

	assert.Equal(t, 100, s.OverallScore)
	assert.Equal(t, 0, s.SectionScores["skills"])
	assert.Equal(t, "medium", s.Confidence)
	assert.NotNil(t, s.Strengths)
	assert.Contains(t, llm.prompts[0].User, "SRE")
}

func TestWriterPromptTemperatures(t *testing.T) {
	llm := &fakeCompleter{name: "openai", out: "{}"}
	g := NewGateway(nil, llm, nil, zap.NewNop())
	ctx := context.Background()
	job := domain.JobDescription{Title: "Go developer", Requirements: []string{"Go", "Kafka"}}

	g.OptimizeResume(ctx, domain.EmptyContent(), job)
	g.GenerateResume(ctx, job, "")
	g.GenerateCoverLetter(ctx, domain.EmptyContent(), job)

	require.Len(t, llm.prompts, 3)
	assert.InDelta(t, 0.3, llm.prompts[0].Temperature, 1e-6)
	assert.InDelta(t, 0.5, llm.prompts[1].Temperature, 1e-6)
	assert.Contains(t, llm.prompts[1].User, "No specific background provided.")
	assert.InDelta(t, 0.7, llm.prompts[2].Temperature, 1e-6)
	assert.Equal(t, coverLetterTimeout, llm.prompts[2].Timeout)
	assert.False(t, llm.prompts[2].JSON)
}
