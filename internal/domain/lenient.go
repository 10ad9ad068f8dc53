package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// StringList принимает и массив строк, и одну строку (модели часто отдают description строкой).
type StringList []string

func (s *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var one string
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*s = nil
		for _, line := range strings.Split(one, "\n") {
			if line = strings.TrimSpace(strings.TrimLeft(line, "-•* ")); line != "" {
				*s = append(*s, line)
			}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// Категории навыков, известные фронтенду
var SkillCategories = map[string]string{
	"technical":  "Technical Skills",
	"soft":       "Soft Skills",
	"languages":  "Languages",
	"tools":      "Tools & Platforms",
	"frameworks": "Frameworks & Libraries",
	"databases":  "Databases",
	"cloud":      "Cloud & DevOps",
	"design":     "Design & Creative",
}

const (
	DefaultSkillCategoryID = "technical"
	DefaultSkillLevel      = SkillIntermediate
)
