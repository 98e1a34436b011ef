package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

const (
	docxDocumentXMLPath = "word/document.xml"
	contentTypesPath    = "[Content_Types].xml"
	docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

// wtTag matches <w:t>text</w:t> or <w:t xml:space="preserve">text</w:t>.
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// partNameRe and partNameRe2 find the main document part in [Content_Types].xml, in either attribute order.
var (
	partNameRe  = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)
	partNameRe2 = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)
)

// extractDOCX returns the text runs of a .docx, joined with spaces.
// The document body is read with nguyenthenguyen/docx; packages it cannot open (for example a
// main part that is not word/document.xml) are read directly from the zip.
func extractDOCX(content []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(content), int64(len(content)))
	if err == nil {
		defer doc.Close()
		return joinRuns(doc.Editable().GetContent()), nil
	}

	zr, zerr := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if zerr != nil {
		return "", fmt.Errorf("extract DOCX: not a zip: %w", zerr)
	}
	docPath := findDocxMainDocumentPath(zr)
	if docPath == "" {
		docPath = docxDocumentXMLPath
	}
	docXML, rerr := readZipFile(zr, docPath)
	if rerr != nil {
		return "", fmt.Errorf("extract DOCX: %w", rerr)
	}
	return joinRuns(string(docXML)), nil
}

// joinRuns extracts every <w:t> text node from document XML.
func joinRuns(docXML string) string {
	parts := wtTag.FindAllStringSubmatch(docXML, -1)
	var b strings.Builder
	for _, p := range parts {
		run := strings.TrimSpace(html.UnescapeString(p[1]))
		if run == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(run)
	}
	return b.String()
}

// findDocxMainDocumentPath returns the main document path from [Content_Types].xml without
// its leading slash, or "" when it cannot be determined.
func findDocxMainDocumentPath(zr *zip.Reader) string {
	data, err := readZipFile(zr, contentTypesPath)
	if err != nil {
		return ""
	}
	content := string(data)
	if m := partNameRe.FindStringSubmatch(content); len(m) > 1 {
		return strings.TrimPrefix(m[1], "/")
	}
	if m := partNameRe2.FindStringSubmatch(content); len(m) > 1 {
		return strings.TrimPrefix(m[1], "/")
	}
	return ""
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s not found", name)
}
