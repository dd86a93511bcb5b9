package ingest

import (
	"fmt"

	"github.com/quizforge/quizforge/internal/quiz"
)

// PageRange restricts PDF extraction; zero bounds mean the document
// edges.
type PageRange struct {
	Start int
	End   int
}

// File ingests one uploaded file into a session source. All adapter
// failures are absorbed into the source's warnings; the only error the
// caller ever sees is input rejection on an unsupported extension,
// which happens before any adapter runs.
func File(name string, data []byte, pages PageRange) (quiz.Source, error) {
	kind, err := KindForFilename(name)
	if err != nil {
		return quiz.Source{}, err
	}

	src := quiz.Source{FileName: name}
	switch kind {
	case KindText:
		src.Format = string(FormatText)
		src.Text = string(data)

	case KindDOCX:
		src.Format = string(FormatDOCX)
		res := ExtractDocx(data)
		src.Text = res.Text
		src.Images = res.Images
		src.Warnings = res.Warnings

	case KindPDF:
		src.Format = string(FormatPDF)
		res := ExtractPDFText(data, pages.Start, pages.End)
		src.Text = res.Text
		src.Warnings = res.Warnings

	case KindXML:
		format := DetectXML(data)
		if format == FormatUnrecognized {
			// Not an LMS dialect; degrade to plain text.
			src.Format = string(FormatText)
			src.Text = string(data)
			break
		}
		src.Format = string(format)
		z := ParseLMS(format, data, nil)
		if len(z.Questions) > 0 {
			src.Quiz = z
			src.Dropped = z.Metadata.Dropped
			src.Text = fmt.Sprintf("[LMS Quiz: %s]\n%d questions imported", z.Title, len(z.Questions))
		} else {
			src.Format = string(FormatText)
			src.Text = string(data)
			src.Warnings = append(src.Warnings, z.Warnings...)
		}

	case KindZip:
		src.Format = string(FormatIMS)
		z, err := ParseArchive(data)
		if err != nil {
			src.Warnings = append(src.Warnings, fmt.Sprintf("Could not parse LMS package: %v", err))
			break
		}
		src.Quiz = z
		src.Dropped = z.Metadata.Dropped
		src.Text = fmt.Sprintf("[LMS Package: %s]\n%d questions imported", z.Title, len(z.Questions))
	}
	return src, nil
}
