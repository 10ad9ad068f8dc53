package ai

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/EgorLis/resume-builder/internal/domain"
)

const (
	defaultTimeout     = 30 * time.Second
	coverLetterTimeout = 120 * time.Second
	previewLimit       = 200
)

const resumeSchema = `{
  "personal_info": {
    "full_name": "", "email": "", "phone": "", "location": "",
    "linkedin": "", "github": "", "website": ""
  },
  "professional_summary": "",
  "skills": [],
  "experience": [
    {"company": "", "position": "", "start_date": "YYYY-MM-DD or null", "end_date": "YYYY-MM-DD or null",
     "description": [], "is_current": false}
  ],
  "education": [
    {"institution": "", "degree": "", "field_of_study": "", "start_date": "YYYY-MM-DD or null",
     "end_date": "YYYY-MM-DD or null", "gpa": ""}
  ],
  "projects": [
    {"name": "", "description": "", "technologies": [], "url": ""}
  ],
  "certifications": [
    {"name": "", "issuing_organization": "", "issue_date": "YYYY-MM-DD or null",
     "expiration_date": "YYYY-MM-DD or null", "credential_id": ""}
  ]
}`

const scoreSchema = `{
  "overall_score": 0,
  "section_scores": {"summary": 0, "experience": 0, "education": 0, "skills": 0, "formatting": 0},
  "strengths": [],
  "improvements": [],
  "feedback": "",
  "confidence": "high | medium | low"
}`

// hintsText: подсказки препроцессора; модель должна перепроверить их по тексту.
func hintsText(h domain.ParseHints) string {
	if h.Empty() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\nPre-processed information to help with parsing:\n")
	if len(h.DetectedSections) > 0 {
		fmt.Fprintf(&sb, "Detected sections: %s\n", strings.Join(h.DetectedSections, ", "))
	}
	if h.Email != "" {
		fmt.Fprintf(&sb, "Detected email: %s\n", h.Email)
	}
	if h.Phone != "" {
		fmt.Fprintf(&sb, "Detected phone: %s\n", h.Phone)
	}
	if h.Name != "" {
		fmt.Fprintf(&sb, "Detected name: %s\n", h.Name)
	}

	names := make([]string, 0, len(h.Sections))
	for name := range h.Sections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "\nDetected %s section content preview:\n%s\n", name, preview(h.Sections[name]))
	}
	return sb.String()
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLimit {
		return s
	}
	return string(r[:previewLimit]) + "..."
}

func jobText(j domain.JobDescription) string {
	return fmt.Sprintf("Title: %s\nCompany: %s\nDescription: %s\nRequirements: %s",
		j.Title, j.Company, j.Description, strings.Join(j.Requirements, ", "))
}

func resumeJSON(c domain.ResumeContent) string {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func parsePrompt(text string, hints domain.ParseHints) Prompt {
	return Prompt{
		Operation: "parse_resume",
		System: "You are a resume parsing expert. Extract structured information from resumes and return valid JSON. " +
			"Pay special attention to the pre-processed hints provided, but verify all information against the original text.",
		User: fmt.Sprintf(`Parse the following resume text and extract structured information. Return a JSON object with the following structure:
%s

Resume text:
%s
%s
Return only valid JSON without any additional text or formatting.`, resumeSchema, text, hintsText(hints)),
		Temperature: 0.1,
		Timeout:     defaultTimeout,
		JSON:        true,
	}
}

func optimizePrompt(c domain.ResumeContent, job domain.JobDescription) Prompt {
	return Prompt{
		Operation: "optimize_resume",
		System:    "You are a professional resume writer. Optimize resumes to match job descriptions while maintaining accuracy and professionalism.",
		User: fmt.Sprintf(`Optimize the following resume for this job description. Focus on:
1. Tailoring the professional summary to match the role
2. Highlighting relevant skills and experience
3. Rewriting experience descriptions to emphasize relevant achievements
4. Suggesting relevant keywords from the job description

Job Description:
%s

Current Resume:
%s

Return the optimized resume in the same JSON format. Keep all existing information but enhance it for this specific role.`,
			jobText(job), resumeJSON(c)),
		Temperature: 0.3,
		Timeout:     defaultTimeout,
		JSON:        true,
	}
}

func generatePrompt(job domain.JobDescription, background string) Prompt {
	bg := "No specific background provided."
	if strings.TrimSpace(background) != "" {
		bg = "User background: " + background
	}
	return Prompt{
		Operation: "generate_resume",
		System:    "You are a professional resume writer. Create resume templates that match job requirements.",
		User: fmt.Sprintf(`Create a resume template based on this job description and user background. Generate realistic but generic content that matches the role requirements.

Job Description:
%s

%s

Create a resume with:
1. Professional summary tailored to the role
2. Relevant skills extracted from job requirements
3. 2-3 sample work experiences that would be relevant
4. Sample education background
5. 1-2 relevant projects

Use placeholders such as "[Your Name]" for personal details. Return only JSON in this format:
%s`, jobText(job), bg, resumeSchema),
		Temperature: 0.5,
		Timeout:     defaultTimeout,
		JSON:        true,
	}
}

func coverLetterPrompt(c domain.ResumeContent, job domain.JobDescription) Prompt {
	return Prompt{
		Operation: "generate_cover_letter",
		System:    "You are a professional career coach and expert cover letter writer.",
		User: fmt.Sprintf(`Generate a professional cover letter based on the following resume and job description.

The cover letter should be tailored to the job description, highlight the most relevant skills and experience
from the resume, keep a professional and engaging tone, and follow the standard introduction, body and conclusion layout.

Job Description:
%s

Resume:
%s

Return only the cover letter text.`, jobText(job), resumeJSON(c)),
		Temperature: 0.7,
		Timeout:     coverLetterTimeout,
	}
}

func scorePrompt(c domain.ResumeContent, job *domain.JobDescription) Prompt {
	target := "No job description provided: score the resume on general quality."
	if job != nil {
		target = "Score how well the resume fits this job:\n" + jobText(*job)
	}
	return Prompt{
		Operation: "score_resume",
		System:    "You are an experienced recruiter and ATS expert. Score resumes objectively and return valid JSON.",
		User: fmt.Sprintf(`Evaluate the resume below. All scores are integers from 0 to 100.
%s

Resume:
%s

Return only JSON in this format:
%s`, target, resumeJSON(c), scoreSchema),
		Temperature: 0.2,
		Timeout:     defaultTimeout,
		JSON:        true,
	}
}
