package ingest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/quizforge/quizforge/internal/quiz"
)

var (
	docxParagraphRe = regexp.MustCompile(`<w:p[^>]*>`)
	docxBreakRe     = regexp.MustCompile(`<w:br[^>]*>`)
	docxTabRe       = regexp.MustCompile(`<w:tab[^>]*>`)
	docxRunTextRe   = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)
	docxTagRe       = regexp.MustCompile(`<[^>]+>`)
	docxNewlinesRe  = regexp.MustCompile(`\n{3,}`)
)

// DocxResult carries both extraction halves of a DOCX package.
type DocxResult struct {
	Text     string
	Images   []quiz.Image
	Warnings []string
}

// ExtractDocx pulls plain text from the main document part and images
// from the media directory. Failures degrade to an empty result with a
// warning; they never propagate.
func ExtractDocx(data []byte) DocxResult {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return DocxResult{Warnings: []string{fmt.Sprintf("Could not read DOCX package: %v", err)}}
	}
	res := DocxResult{}
	text, err := extractDocxText(zr)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Could not extract DOCX text: %v", err))
	}
	res.Text = text
	res.Images = extractDocxImages(zr)
	return res
}

func extractDocxText(zr *zip.Reader) (string, error) {
	f, err := zr.Open("word/document.xml")
	if err != nil {
		return "", fmt.Errorf("word/document.xml: %w", err)
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	text := string(raw)
	text = docxParagraphRe.ReplaceAllString(text, "\n")
	text = docxBreakRe.ReplaceAllString(text, "\n")
	text = docxTabRe.ReplaceAllString(text, "\t")
	text = docxRunTextRe.ReplaceAllString(text, "$1")
	text = docxTagRe.ReplaceAllString(text, "")
	text = decodeXMLEntities(text)
	text = docxNewlinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text), nil
}

// extractDocxImages walks word/media, sniffing each payload's magic
// bytes for a content type. Vector formats (EMF/WMF) are unrenderable
// in target viewers and are discarded.
func extractDocxImages(zr *zip.Reader) []quiz.Image {
	var images []quiz.Image
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "word/media/") || f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		mime := SniffImageType(data)
		if isVectorImage(mime) || hasVectorExt(f.Name) {
			continue
		}
		w, h := ImageDimensions(data)
		images = append(images, quiz.Image{
			ID:       quiz.NewID(),
			Filename: path.Base(f.Name),
			DataURL:  DataURL(mime, data),
			MimeType: mime,
			Size:     len(data),
			Width:    w,
			Height:   h,
			Source:   "docx",
		})
	}
	return images
}

func hasVectorExt(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".emf", ".wmf":
		return true
	}
	return false
}

// ParseDocxQuiz runs the heuristic text parser over the extracted text
// and attaches package-level extraction warnings.
func ParseDocxQuiz(data []byte, sourceFile string) (*quiz.Quiz, []quiz.Image) {
	res := ExtractDocx(data)
	z := ParseText(res.Text, string(FormatDOCX), sourceFile)
	z.Warnings = append(z.Warnings, res.Warnings...)
	z.Metadata.ImageCount = len(res.Images)
	z.Metadata.CreatedAt = time.Now()
	return z, res.Images
}
