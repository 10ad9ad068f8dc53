package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgorLis/resume-builder/internal/domain"
)

func makeDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
    <w:p><w:r><w:t>Go</w:t></w:r><w:r><w:tab/><w:t xml:space="preserve">Kafka </w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestTextDocx(t *testing.T) {
	t.Parallel()

	text, err := Text("CV.DOCX", makeDocx(t, documentXML))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo\tKafka", text)
}

func TestTextTxt(t *testing.T) {
	t.Parallel()

	text, err := Text("cv.txt", []byte("  hello\n"))
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	_, err = Text("cv.txt", []byte("   "))
	assert.ErrorIs(t, err, ErrNoText)

	_, err = Text("cv.txt", []byte{0xff, 0xfe})
	assert.ErrorIs(t, err, domain.ErrBadParams)
}

func TestTextErrors(t *testing.T) {
	t.Parallel()

	_, err := Text("cv.odt", []byte("x"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFile)

	_, err = Text("cv.docx", []byte("not a zip"))
	assert.Error(t, err)

	_, err = Text("cv.pdf", []byte("not a pdf"))
	assert.Error(t, err)

	assert.True(t, Supported("a.PDF"))
	assert.False(t, Supported("a.doc"))
	assert.Equal(t, "application/pdf", ContentType("a.pdf"))
}

const plainResume = `Jane Doe
jane.doe@example.com | +1 (555) 123-4567

Professional Summary
Backend engineer with 6 years of Go.

Experience:
Acme Corp, Senior Engineer
Built payment APIs.

SKILLS
Go, PostgreSQL, Redis
`

func TestHints(t *testing.T) {
	t.Parallel()

	h := Hints(plainResume)

	assert.Equal(t, "Jane Doe", h.Name)
	assert.Equal(t, "jane.doe@example.com", h.Email)
	assert.Equal(t, "+1 (555) 123-4567", h.Phone)
	assert.Equal(t, []string{"summary", "experience", "skills"}, h.DetectedSections)
	assert.Equal(t, "Acme Corp, Senior Engineer\nBuilt payment APIs.", h.Sections["experience"])
	assert.Equal(t, "Go, PostgreSQL, Redis", h.Sections["skills"])
}

func TestHintsEmpty(t *testing.T) {
	t.Parallel()

	h := Hints("worked 5 years on backend systems")
	assert.True(t, h.Empty())
}
