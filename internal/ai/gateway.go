package ai

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/EgorLis/resume-builder/internal/cache"
	"github.com/EgorLis/resume-builder/internal/domain"
)

// ErrNoProvider: провайдер для операции не сконфигурирован.
var ErrNoProvider = errors.New("ai provider is not configured")

// CoverLetterFallback отдаётся, если письмо сгенерировать не удалось.
const CoverLetterFallback = "We could not generate a cover letter right now. Please try again later."

// DefaultScore: ответ оценки при недоступной модели.
func DefaultScore() domain.ScoreResult {
	return domain.ScoreResult{
		OverallScore: 50,
		SectionScores: map[string]int{
			"summary": 50, "experience": 50, "education": 50, "skills": 50, "formatting": 50,
		},
		Strengths:    []string{},
		Improvements: []string{"Automatic scoring is temporarily unavailable. Please try again later."},
		Feedback:     "The resume could not be analysed automatically, a neutral score is shown.",
		Confidence:   "low",
	}
}

type parseArgs struct {
	Text  string
	Hints domain.ParseHints
}

type rewriteArgs struct {
	Content domain.ResumeContent
	Job     domain.JobDescription
}

type generateArgs struct {
	Job        domain.JobDescription
	Background string
}

type scoreArgs struct {
	Content domain.ResumeContent
	Job     *domain.JobDescription
}

// Gateway: операции над резюме через LLM. parser разбирает тексты,
// writer пишет (оптимизация, генерация, письма, оценка).
// Ответы кешируются в категории ai_response, ошибки не кешируются
// и превращаются в безопасный ответ по умолчанию.
type Gateway struct {
	log    *zap.Logger
	parser Completer
	writer Completer

	parse    func(context.Context, parseArgs) (domain.ResumeContent, error)
	optimize func(context.Context, rewriteArgs) (domain.ResumeContent, error)
	generate func(context.Context, generateArgs) (domain.ResumeContent, error)
	cover    func(context.Context, rewriteArgs) (string, error)
	score    func(context.Context, scoreArgs) (domain.ScoreResult, error)
}

func NewGateway(parser, writer Completer, store *cache.Store, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Gateway{log: log, parser: parser, writer: writer}

	op := func(name string) cache.Op { return cache.Op{Category: cache.AIResponse, Name: name} }

	g.parse = cache.Wrap(store, op("parse_resume"), func(a parseArgs) string {
		return cache.HashArgs([]any{a.Text}, cache.Arg{Name: "hints", Value: a.Hints}, provider(parser))
	}, g.doParse)
	g.optimize = cache.Wrap(store, op("optimize_resume"), func(a rewriteArgs) string {
		return cache.HashArgs([]any{a.Content, a.Job}, provider(writer))
	}, g.doOptimize)
	g.generate = cache.Wrap(store, op("generate_resume"), func(a generateArgs) string {
		return cache.HashArgs([]any{a.Job}, cache.Arg{Name: "background", Value: a.Background}, provider(writer))
	}, g.doGenerate)
	g.cover = cache.Wrap(store, op("cover_letter"), func(a rewriteArgs) string {
		return cache.HashArgs([]any{a.Content, a.Job}, provider(writer))
	}, g.doCoverLetter)
	g.score = cache.Wrap(store, op("score_resume"), func(a scoreArgs) string {
		return cache.HashArgs([]any{a.Content}, cache.Arg{Name: "job", Value: a.Job}, provider(writer))
	}, g.doScore)
	return g
}

func provider(c Completer) cache.Arg {
	name := ""
	if c != nil {
		name = c.Name()
	}
	return cache.Arg{Name: "provider", Value: name}
}

// ParseResume извлекает структуру из текста резюме. При ошибке: пустое резюме.
func (g *Gateway) ParseResume(ctx context.Context, text string, hints domain.ParseHints) domain.ResumeContent {
	c, err := g.parse(ctx, parseArgs{Text: text, Hints: hints})
	if err != nil {
		g.degraded("parse_resume", err)
		return domain.EmptyContent()
	}
	return c
}

// OptimizeResume переписывает резюме под вакансию. При ошибке: пустое резюме.
func (g *Gateway) OptimizeResume(ctx context.Context, c domain.ResumeContent, job domain.JobDescription) domain.ResumeContent {
	out, err := g.optimize(ctx, rewriteArgs{Content: c, Job: job})
	if err != nil {
		g.degraded("optimize_resume", err)
		return domain.EmptyContent()
	}
	return out
}

// GenerateResume создаёт шаблон резюме под вакансию. При ошибке: пустое резюме.
func (g *Gateway) GenerateResume(ctx context.Context, job domain.JobDescription, background string) domain.ResumeContent {
	out, err := g.generate(ctx, generateArgs{Job: job, Background: background})
	if err != nil {
		g.degraded("generate_resume", err)
		return domain.EmptyContent()
	}
	return out
}

func (g *Gateway) GenerateCoverLetter(ctx context.Context, c domain.ResumeContent, job domain.JobDescription) string {
	out, err := g.cover(ctx, rewriteArgs{Content: c, Job: job})
	if err != nil {
		g.degraded("cover_letter", err)
		return CoverLetterFallback
	}
	return out
}

// ScoreResume оценивает резюме (job может быть nil). При ошибке: DefaultScore.
func (g *Gateway) ScoreResume(ctx context.Context, c domain.ResumeContent, job *domain.JobDescription) domain.ScoreResult {
	out, err := g.score(ctx, scoreArgs{Content: c, Job: job})
	if err != nil {
		g.degraded("score_resume", err)
		return DefaultScore()
	}
	return out
}

func (g *Gateway) degraded(op string, err error) {
	g.log.Warn("ai call degraded to default", zap.String("op", op), zap.Error(err))
}

func (g *Gateway) doParse(ctx context.Context, a parseArgs) (domain.ResumeContent, error) {
	out, err := complete(ctx, g.parser, parsePrompt(a.Text, a.Hints))
	if err != nil {
		return domain.ResumeContent{}, err
	}
	return DecodeResume(out)
}

func (g *Gateway) doOptimize(ctx context.Context, a rewriteArgs) (domain.ResumeContent, error) {
	out, err := complete(ctx, g.writer, optimizePrompt(a.Content, a.Job))
	if err != nil {
		return domain.ResumeContent{}, err
	}
	return DecodeResume(out)
}

func (g *Gateway) doGenerate(ctx context.Context, a generateArgs) (domain.ResumeContent, error) {
	out, err := complete(ctx, g.writer, generatePrompt(a.Job, a.Background))
	if err != nil {
		return domain.ResumeContent{}, err
	}
	return DecodeResume(out)
}

func (g *Gateway) doCoverLetter(ctx context.Context, a rewriteArgs) (string, error) {
	out, err := complete(ctx, g.writer, coverLetterPrompt(a.Content, a.Job))
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errEmptyOutput
	}
	return out, nil
}

func (g *Gateway) doScore(ctx context.Context, a scoreArgs) (domain.ScoreResult, error) {
	out, err := complete(ctx, g.writer, scorePrompt(a.Content, a.Job))
	if err != nil {
		return domain.ScoreResult{}, err
	}
	return DecodeScore(out)
}

func complete(ctx context.Context, c Completer, p Prompt) (string, error) {
	if c == nil {
		return "", ErrNoProvider
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	return c.Complete(ctx, p)
}
