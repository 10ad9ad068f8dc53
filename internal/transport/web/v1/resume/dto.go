package resume

import (
	"github.com/EgorLis/resume-builder/internal/domain"
)

type createRequest struct {
	Title      string                `json:"title" validate:"max=200"`
	TemplateID string                `json:"template_id" validate:"max=64"`
	Content    *domain.ResumeContent `json:"content"`
}

// updateRequest: частичное обновление: отсутствующие поля не меняются.
type updateRequest struct {
	Title               *string                `json:"title" validate:"omitempty,max=200"`
	PersonalInfo        *domain.PersonalInfo   `json:"personal_info"`
	ProfessionalSummary *string                `json:"professional_summary" validate:"omitempty,max=5000"`
	Skills              []domain.Skill         `json:"skills" validate:"omitempty,max=200"`
	Experience          []domain.Experience    `json:"experience" validate:"omitempty,max=100"`
	Education           []domain.Education     `json:"education" validate:"omitempty,max=50"`
	Projects            []domain.Project       `json:"projects" validate:"omitempty,max=100"`
	Certifications      []domain.Certification `json:"certifications" validate:"omitempty,max=100"`
	TemplateID          *string                `json:"template_id" validate:"omitempty,max=64"`
	FontFamily          *string                `json:"font_family" validate:"omitempty,max=64"`
	AccentColor         *string                `json:"accent_color" validate:"omitempty,max=32"`
}

func (u updateRequest) patch() domain.ResumePatch {
	return domain.ResumePatch{
		Title:               u.Title,
		PersonalInfo:        u.PersonalInfo,
		ProfessionalSummary: u.ProfessionalSummary,
		Skills:              u.Skills,
		Experience:          u.Experience,
		Education:           u.Education,
		Projects:            u.Projects,
		Certifications:      u.Certifications,
		TemplateID:          u.TemplateID,
		FontFamily:          u.FontFamily,
		AccentColor:         u.AccentColor,
	}
}

type listResponse struct {
	Resumes    []domain.ResumeSummary `json:"resumes"`
	TotalCount int                    `json:"total_count"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
}
