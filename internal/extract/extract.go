// Package extract достаёт plain text из загруженных резюме (pdf, docx, txt)
// и находит в нём подсказки для модели.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/EgorLis/resume-builder/internal/domain"
)

// Поддерживаемые расширения
const (
	ExtPDF  = ".pdf"
	ExtDOCX = ".docx"
	ExtTXT  = ".txt"
)

var ErrNoText = errors.New("extract: no text in document")

// Supported сообщает, умеем ли мы разбирать файл с таким именем.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ExtPDF, ExtDOCX, ExtTXT:
		return true
	}
	return false
}

// ContentType: MIME-тип для хранения оригинала.
func ContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ExtPDF:
		return "application/pdf"
	case ExtDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Text возвращает текст документа. Неизвестное расширение: domain.ErrUnsupportedFile,
// документ без текста: ErrNoText.
func Text(filename string, content []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ExtPDF:
		text, err = pdfText(content)
	case ExtDOCX:
		text, err = docxText(content)
	case ExtTXT:
		if !utf8.Valid(content) {
			return "", fmt.Errorf("txt: %w", domain.ErrBadParams)
		}
		text = string(content)
	default:
		return "", domain.ErrUnsupportedFile
	}
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func pdfText(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("pdf: %w", err)
	}
	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("pdf page %d: %w", i, err)
		}
		for _, row := range rows {
			for j, w := range row.Content {
				if j > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(w.S)
			}
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// docxText читает word/document.xml: абзац: строка, w:tab: табуляция, w:br: перенос.
func docxText(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("docx: %w", err)
	}
	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("docx: word/document.xml not found: %w", domain.ErrUnsupportedFile)
	}
	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("docx: %w", err)
	}
	defer rc.Close()

	var sb strings.Builder
	dec := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docx xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
