package ingest

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Thresholds for reconstructing reading order from positioned runs, in
// page units. Coordinates are bottom-up, so higher Y comes first.
const (
	pdfLineTolerance  = 5  // runs closer than this share a visual line
	pdfParagraphBreak = 10 // vertical jump that forces a newline
)

// Below this many characters the document is likely scanned.
const pdfScannedThreshold = 100

// PDFResult is the reconstructed text plus non-fatal extraction notes.
type PDFResult struct {
	Text     string
	Pages    int
	Warnings []string
}

// ExtractPDFText reconstructs reading order for the inclusive page
// range (0 for either bound means the document edge). Corrupt
// documents degrade to an empty result with a warning.
func ExtractPDFText(data []byte, pageStart, pageEnd int) (res PDFResult) {
	defer func() {
		if r := recover(); r != nil {
			res = PDFResult{Warnings: []string{fmt.Sprintf("Could not extract PDF text: %v", r)}}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return PDFResult{Warnings: []string{fmt.Sprintf("Could not open PDF: %v", err)}}
	}

	numPages := reader.NumPage()
	start := 1
	if pageStart > 0 {
		start = min(pageStart, numPages)
	}
	end := numPages
	if pageEnd > 0 {
		end = min(pageEnd, numPages)
	}

	var full strings.Builder
	for i := start; i <= end; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		full.WriteString(reconstructPage(page.Content().Text))
		full.WriteString(fmt.Sprintf("\n\n--- Page %d ---\n\n", i))
	}

	res.Text = strings.TrimSpace(full.String())
	res.Pages = numPages
	if len(res.Text) < pdfScannedThreshold {
		res.Warnings = append(res.Warnings, "PDF contains little selectable text; the document may be scanned.")
	}
	return res
}

// reconstructPage orders runs top-to-bottom, left-to-right, emitting a
// newline on large vertical jumps and a joining space otherwise.
func reconstructPage(items []pdf.Text) string {
	runs := make([]pdf.Text, len(items))
	copy(runs, items)
	sort.SliceStable(runs, func(i, j int) bool {
		if math.Abs(runs[j].Y-runs[i].Y) > pdfLineTolerance {
			return runs[i].Y > runs[j].Y
		}
		return runs[i].X < runs[j].X
	})

	var b strings.Builder
	haveLast := false
	lastY := 0.0
	for _, run := range runs {
		y := math.Round(run.Y)
		if haveLast && math.Abs(y-lastY) > pdfParagraphBreak {
			b.WriteByte('\n')
		} else if haveLast && b.Len() > 0 {
			s := b.String()
			if !strings.HasSuffix(s, " ") && !strings.HasSuffix(s, "\n") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(run.S)
		lastY = y
		haveLast = true
	}
	return b.String()
}
