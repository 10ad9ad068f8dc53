package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/EgorLis/resume-builder/internal/domain"
)

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s().\-]{7,}\d`)
)

// Заголовки разделов -> каноническое имя
var sectionHeaders = map[string]string{
	"summary":                   "summary",
	"professional summary":      "summary",
	"profile":                   "summary",
	"objective":                 "summary",
	"about me":                  "summary",
	"experience":                "experience",
	"work experience":           "experience",
	"professional experience":   "experience",
	"employment history":        "experience",
	"work history":              "experience",
	"education":                 "education",
	"skills":                    "skills",
	"technical skills":          "skills",
	"core competencies":         "skills",
	"projects":                  "projects",
	"personal projects":         "projects",
	"certifications":            "certifications",
	"certificates":              "certifications",
	"licenses & certifications": "certifications",
}

// Hints находит в тексте разделы, email, телефон и имя кандидата.
// Это только подсказки: модель перепроверяет их по тексту.
func Hints(text string) domain.ParseHints {
	h := domain.ParseHints{
		Email: emailRe.FindString(text),
		Phone: strings.TrimSpace(phoneRe.FindString(text)),
	}

	lines := strings.Split(text, "\n")
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		// имя: первая непустая строка, если она короткая и без цифр и @
		if looksLikeName(l) {
			h.Name = l
		}
		break
	}

	var (
		current string
		body    strings.Builder
		seen    = map[string]bool{}
	)
	flush := func() {
		if current != "" {
			if s := strings.TrimSpace(body.String()); s != "" {
				if h.Sections == nil {
					h.Sections = map[string]string{}
				}
				h.Sections[current] = s
			}
		}
		body.Reset()
	}
	for _, l := range lines {
		if name, ok := header(l); ok {
			flush()
			current = ""
			if !seen[name] {
				seen[name] = true
				h.DetectedSections = append(h.DetectedSections, name)
				current = name
			}
			continue
		}
		if current != "" {
			body.WriteString(l)
			body.WriteByte('\n')
		}
	}
	flush()
	return h
}

const maxNameLen = 60

func looksLikeName(l string) bool {
	if utf8.RuneCountInString(l) > maxNameLen || strings.ContainsAny(l, "@0123456789") {
		return false
	}
	if _, ok := header(l); ok {
		return false
	}
	return len(strings.Fields(l)) >= 2
}

func header(line string) (string, bool) {
	l := strings.ToLower(strings.TrimSpace(line))
	l = strings.TrimRight(l, ": ")
	if l == "" || len(l) > 40 {
		return "", false
	}
	name, ok := sectionHeaders[l]
	return name, ok
}
