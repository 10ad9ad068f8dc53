package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/EgorLis/resume-builder/internal/domain"
)

var errEmptyOutput = errors.New("empty model output")

// StripCodeFence снимает обёртку ```json ... ```, которую модели добавляют вопреки инструкции.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// первая строка: язык (json, JSON или пусто)
		s = s[nl+1:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// rawContent: ResumeContent, где skills разбираются отдельно.
type rawContent struct {
	PersonalInfo        domain.PersonalInfo    `json:"personal_info"`
	ProfessionalSummary string                 `json:"professional_summary"`
	Skills              json.RawMessage        `json:"skills"`
	Experience          []domain.Experience    `json:"experience"`
	Education           []domain.Education     `json:"education"`
	Projects            []domain.Project       `json:"projects"`
	Certifications      []domain.Certification `json:"certifications"`
}

// DecodeResume разбирает ответ модели в ResumeContent и нормализует навыки.
func DecodeResume(out string) (domain.ResumeContent, error) {
	body := StripCodeFence(out)
	if body == "" {
		return domain.ResumeContent{}, errEmptyOutput
	}
	var raw rawContent
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return domain.ResumeContent{}, fmt.Errorf("decode resume: %w", err)
	}
	skills, err := NormalizeSkills(raw.Skills)
	if err != nil {
		return domain.ResumeContent{}, err
	}

	c := domain.EmptyContent()
	c.PersonalInfo = raw.PersonalInfo
	c.ProfessionalSummary = raw.ProfessionalSummary
	c.Skills = skills
	if raw.Experience != nil {
		c.Experience = raw.Experience
	}
	if raw.Education != nil {
		c.Education = raw.Education
	}
	if raw.Projects != nil {
		c.Projects = raw.Projects
	}
	if raw.Certifications != nil {
		c.Certifications = raw.Certifications
	}
	return c, nil
}

type rawSkill struct {
	Name       string `json:"name"`
	Skill      string `json:"skill"`
	Level      string `json:"level"`
	Category   string `json:"category"`
	CategoryID string `json:"category_id"`
}

// NormalizeSkills принимает навыки в любой из форм, которые встречаются в ответах:
// список строк, список объектов (полных или частичных) или объект "категория -> список".
// Пустые имена отбрасываются.
func NormalizeSkills(raw json.RawMessage) ([]domain.Skill, error) {
	out := []domain.Skill{}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return out, nil
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode skills: %w", err)
		}
		for _, it := range items {
			if s, ok := skillFromItem(it, ""); ok {
				out = append(out, s)
			}
		}
	case '{':
		var groups map[string]json.RawMessage
		if err := json.Unmarshal(raw, &groups); err != nil {
			return nil, fmt.Errorf("decode skills: %w", err)
		}
		cats := make([]string, 0, len(groups))
		for c := range groups {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		for _, cat := range cats {
			var items []json.RawMessage
			if err := json.Unmarshal(groups[cat], &items); err != nil {
				continue
			}
			for _, it := range items {
				if s, ok := skillFromItem(it, cat); ok {
					out = append(out, s)
				}
			}
		}
	default:
		return nil, fmt.Errorf("decode skills: unexpected %q", raw[:1])
	}
	return out, nil
}

func skillFromItem(item json.RawMessage, category string) (domain.Skill, bool) {
	var rs rawSkill
	var name string
	if err := json.Unmarshal(item, &name); err == nil {
		rs.Name = name
	} else if err := json.Unmarshal(item, &rs); err != nil {
		return domain.Skill{}, false
	}
	if rs.Name == "" {
		rs.Name = rs.Skill
	}
	if rs.Category == "" {
		rs.Category = category
	}
	rs.Name = strings.TrimSpace(rs.Name)
	if rs.Name == "" {
		return domain.Skill{}, false
	}
	id, label := skillCategory(rs.CategoryID, rs.Category)
	return domain.Skill{
		Name:       rs.Name,
		Level:      skillLevel(rs.Level),
		CategoryID: id,
		Category:   label,
	}, true
}

func skillLevel(level string) string {
	switch l := strings.ToLower(strings.TrimSpace(level)); l {
	case domain.SkillBeginner, domain.SkillIntermediate, domain.SkillAdvanced, domain.SkillExpert:
		return l
	case "basic", "novice", "junior":
		return domain.SkillBeginner
	case "proficient", "senior", "strong":
		return domain.SkillAdvanced
	case "master", "native", "fluent":
		return domain.SkillExpert
	default:
		return domain.DefaultSkillLevel
	}
}

// skillCategory возвращает (category_id, подпись). Известные категории ищутся
// и по id, и по подписи; неизвестные превращаются в slug.
func skillCategory(id, label string) (string, string) {
	id = strings.TrimSpace(id)
	label = strings.TrimSpace(label)
	if id == "" && label == "" {
		return domain.DefaultSkillCategoryID, domain.SkillCategories[domain.DefaultSkillCategoryID]
	}
	for _, cand := range []string{id, label} {
		key := slug(cand)
		if l, ok := domain.SkillCategories[key]; ok {
			return key, l
		}
		for k, l := range domain.SkillCategories {
			if strings.EqualFold(l, cand) {
				return k, l
			}
		}
	}
	if id == "" {
		id = slug(label)
	}
	if label == "" {
		label = id
	}
	if id == "" {
		return domain.DefaultSkillCategoryID, domain.SkillCategories[domain.DefaultSkillCategoryID]
	}
	return slug(id), label
}

func slug(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			dash = false
		case !dash && sb.Len() > 0:
			sb.WriteByte('_')
			dash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "_")
}

// DecodeScore разбирает оценку и приводит баллы к диапазону 0..100.
func DecodeScore(out string) (domain.ScoreResult, error) {
	body := StripCodeFence(out)
	if body == "" {
		return domain.ScoreResult{}, errEmptyOutput
	}
	var s domain.ScoreResult
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		return domain.ScoreResult{}, fmt.Errorf("decode score: %w", err)
	}
	s.OverallScore = clamp(s.OverallScore)
	for k, v := range s.SectionScores {
		s.SectionScores[k] = clamp(v)
	}
	if s.SectionScores == nil {
		s.SectionScores = map[string]int{}
	}
	if s.Strengths == nil {
		s.Strengths = []string{}
	}
	if s.Improvements == nil {
		s.Improvements = []string{}
	}
	switch s.Confidence {
	case "high", "medium", "low":
	default:
		s.Confidence = "medium"
	}
	return s, nil
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
