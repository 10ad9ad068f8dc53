package domain

import (
	"time"

	"github.com/google/uuid"
)

// Базовые идентификаторы
type UserID = uuid.UUID
type ResumeID = uuid.UUID
type VersionID = uuid.UUID

// Пользователь
type User struct {
	ID        UserID    `json:"id"`
	Email     string    `json:"email"`
	PassHash  string    `json:"-"` // никогда не отдаём наружу и не кладём в кеш
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PersonalInfo struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
	Website  string `json:"website"`
}

// Уровни навыков
const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
	SkillExpert       = "expert"
)

type Skill struct {
	Name       string `json:"name"`
	Level      string `json:"level"`
	CategoryID string `json:"category_id"`
	Category   string `json:"category"`
}

type Experience struct {
	Company     string     `json:"company"`
	Position    string     `json:"position"`
	StartDate   Date       `json:"start_date"`
	EndDate     Date       `json:"end_date"`
	Description StringList `json:"description"`
	IsCurrent   bool       `json:"is_current"`
}

type Education struct {
	Institution  string `json:"institution"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"field_of_study,omitempty"`
	StartDate    Date   `json:"start_date"`
	EndDate      Date   `json:"end_date"`
	GPA          string `json:"gpa,omitempty"`
}

type Project struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Technologies StringList `json:"technologies"`
	URL          string     `json:"url,omitempty"`
}

type Certification struct {
	Name                string `json:"name"`
	IssuingOrganization string `json:"issuing_organization"`
	IssueDate           Date   `json:"issue_date"`
	ExpirationDate      Date   `json:"expiration_date"`
	CredentialID        string `json:"credential_id,omitempty"`
}

// Содержимое резюме: то, что возвращает AI и что хранится в JSONB.
type ResumeContent struct {
	PersonalInfo        PersonalInfo    `json:"personal_info"`
	ProfessionalSummary string          `json:"professional_summary"`
	Skills              []Skill         `json:"skills"`
	Experience          []Experience    `json:"experience"`
	Education           []Education     `json:"education"`
	Projects            []Project       `json:"projects"`
	Certifications      []Certification `json:"certifications"`
}

// EmptyContent: пустое резюме с инициализированными списками (в JSON уходят [] вместо null).
func EmptyContent() ResumeContent {
	return ResumeContent{
		Skills:         []Skill{},
		Experience:     []Experience{},
		Education:      []Education{},
		Projects:       []Project{},
		Certifications: []Certification{},
	}
}

// Оформление
type ResumeStyle struct {
	TemplateID  string `json:"template_id"`
	FontFamily  string `json:"font_family"`
	AccentColor string `json:"accent_color"`
}

func DefaultStyle() ResumeStyle {
	return ResumeStyle{TemplateID: "basic", FontFamily: "font-sans", AccentColor: "#2563eb"}
}

type Resume struct {
	ID        ResumeID `json:"id"`
	UserID    UserID   `json:"user_id"`
	Title     string   `json:"title"`
	IsDefault bool     `json:"is_default"`
	ResumeContent
	ResumeStyle
	SourceKey string    `json:"source_key,omitempty"` // оригинал загруженного файла в S3
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Элемент списка резюме (без содержимого)
type ResumeSummary struct {
	ID         ResumeID  `json:"id"`
	Title      string    `json:"title"`
	IsDefault  bool      `json:"is_default"`
	TemplateID string    `json:"template_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (r Resume) Summary() ResumeSummary {
	return ResumeSummary{
		ID: r.ID, Title: r.Title, IsDefault: r.IsDefault,
		TemplateID: r.TemplateID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type ResumePage struct {
	Items []ResumeSummary `json:"resumes"`
	Total int             `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// Частичное обновление: nil-поля не трогаем
type ResumePatch struct {
	Title               *string
	PersonalInfo        *PersonalInfo
	ProfessionalSummary *string
	Skills              []Skill
	Experience          []Experience
	Education           []Education
	Projects            []Project
	Certifications      []Certification
	TemplateID          *string
	FontFamily          *string
	AccentColor         *string
}

// Apply переносит заданные поля патча в резюме.
func (p ResumePatch) Apply(r *Resume) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.PersonalInfo != nil {
		r.PersonalInfo = *p.PersonalInfo
	}
	if p.ProfessionalSummary != nil {
		r.ProfessionalSummary = *p.ProfessionalSummary
	}
	if p.Skills != nil {
		r.Skills = p.Skills
	}
	if p.Experience != nil {
		r.Experience = p.Experience
	}
	if p.Education != nil {
		r.Education = p.Education
	}
	if p.Projects != nil {
		r.Projects = p.Projects
	}
	if p.Certifications != nil {
		r.Certifications = p.Certifications
	}
	if p.TemplateID != nil {
		r.TemplateID = *p.TemplateID
	}
	if p.FontFamily != nil {
		r.FontFamily = *p.FontFamily
	}
	if p.AccentColor != nil {
		r.AccentColor = *p.AccentColor
	}
}

// Снимок резюме перед каждым изменением
type ResumeVersion struct {
	ID        VersionID     `json:"id"`
	ResumeID  ResumeID      `json:"resume_id"`
	UserID    UserID        `json:"user_id"`
	Version   int           `json:"version"`
	Title     string        `json:"title"`
	Content   ResumeContent `json:"content"`
	Style     ResumeStyle   `json:"style"`
	CreatedAt time.Time     `json:"created_at"`
}

type JobDescription struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
}

// Результат AI-оценки резюме
type ScoreResult struct {
	OverallScore  int            `json:"overall_score"`
	SectionScores map[string]int `json:"section_scores"`
	Strengths     []string       `json:"strengths"`
	Improvements  []string       `json:"improvements"`
	Feedback      string         `json:"feedback"`
	Confidence    string         `json:"confidence"`
}

// Подсказки, извлечённые из текста до обращения к модели
type ParseHints struct {
	DetectedSections []string          `json:"detected_sections,omitempty"`
	Email            string            `json:"email,omitempty"`
	Phone            string            `json:"phone,omitempty"`
	Name             string            `json:"name,omitempty"`
	Sections         map[string]string `json:"sections,omitempty"`
}

func (h ParseHints) Empty() bool {
	return len(h.DetectedSections) == 0 && h.Email == "" && h.Phone == "" && h.Name == "" && len(h.Sections) == 0
}
