package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "full date", in: "2021-03-15", want: "2021-03-15"},
		{name: "year and month", in: "2021-03", want: "2021-03-01"},
		{name: "year only", in: "2019", want: "2019-01-01"},
		{name: "rfc3339", in: "2020-07-04T10:00:00Z", want: "2020-07-04"},
		{name: "present", in: "Present", want: ""},
		{name: "empty", in: "", want: ""},
		{name: "garbage", in: "YYYY-MM-DD or null", want: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseDate(tt.in).String())
		})
	}
}

func TestDateJSON(t *testing.T) {
	t.Parallel()

	type holder struct {
		Start Date `json:"start"`
		End   Date `json:"end"`
	}

	b, err := json.Marshal(holder{Start: NewDate(2022, time.January, 2)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2022-01-02","end":null}`, string(b))

	var h holder
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2018-05","end":"Present"}`), &h))
	assert.Equal(t, "2018-05-01", h.Start.String())
	assert.True(t, h.End.IsZero())

	// числа и прочие типы не ломают разбор всего резюме
	require.NoError(t, json.Unmarshal([]byte(`{"start":2018,"end":null}`), &h))
	assert.True(t, h.Start.IsZero())
}

func TestResumePatchApply(t *testing.T) {
	t.Parallel()

	r := Resume{Title: "old", ResumeStyle: DefaultStyle(), ResumeContent: EmptyContent()}
	title := "new"
	color := "#000000"
	ResumePatch{Title: &title, AccentColor: &color, Skills: []Skill{{Name: "Go"}}}.Apply(&r)

	assert.Equal(t, "new", r.Title)
	assert.Equal(t, "#000000", r.AccentColor)
	assert.Equal(t, "basic", r.TemplateID)
	assert.Len(t, r.Skills, 1)
}

func TestValidation(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidEmail("jane.doe@example.com"))
	assert.False(t, ValidEmail("jane@localhost"))
	assert.True(t, ValidPassword("secret123"))
	assert.False(t, ValidPassword("secretpw"))
	assert.False(t, ValidPassword("s3cr"))
	assert.Equal(t, "jane@example.com", NormalizeEmail("  Jane@Example.COM "))
}

func TestStringListAcceptsStringOrArray(t *testing.T) {
	t.Parallel()

	var e Experience
	require.NoError(t, json.Unmarshal([]byte(`{"description":"- Built APIs\n- Led team\n\n"}`), &e))
	assert.Equal(t, StringList{"Built APIs", "Led team"}, e.Description)

	require.NoError(t, json.Unmarshal([]byte(`{"description":["one","two"]}`), &e))
	assert.Equal(t, StringList{"one", "two"}, e.Description)

	assert.Error(t, json.Unmarshal([]byte(`{"description":42}`), &e))
}
