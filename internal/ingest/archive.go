package ingest

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/quizforge/quizforge/internal/quiz"
)

// ErrNoAssessment means the archive holds no recognizable assessment
// resource; the caller reports "could not parse package".
var ErrNoAssessment = errors.New("no assessment resource found in package")

type zipFiles struct{ zr *zip.Reader }

func (z zipFiles) read(path string) ([]byte, bool) {
	f, err := z.zr.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, false
	}
	return data, true
}

// DetectArchive finds the assessment document inside an IMS content
// package. It prefers manifest resources whose type mentions qti or
// assessment; without a manifest it sniffs top-level XML members.
func DetectArchive(zr *zip.Reader) (Format, []byte, error) {
	files := zipFiles{zr}

	manifest, ok := files.read("imsmanifest.xml")
	if !ok {
		for _, f := range zr.File {
			if strings.Contains(f.Name, "/") || !strings.HasSuffix(strings.ToLower(f.Name), ".xml") {
				continue
			}
			content, ok := files.read(f.Name)
			if !ok {
				continue
			}
			if format := DetectXML(content); format != FormatUnrecognized {
				return format, content, nil
			}
		}
		return FormatUnrecognized, nil, ErrNoAssessment
	}

	root, err := parseXMLTree(manifest)
	if err != nil {
		return FormatUnrecognized, nil, fmt.Errorf("manifest: %w", err)
	}
	for _, res := range root.findAll("resource") {
		rType := strings.ToLower(res.attr("type"))
		if !strings.Contains(rType, "qti") && !strings.Contains(rType, "assessment") {
			continue
		}
		href := ""
		if f := res.find("file"); f != nil {
			href = f.attr("href")
		}
		if href == "" {
			href = res.attr("href")
		}
		if href == "" {
			continue
		}
		content, ok := files.read(href)
		if !ok {
			continue
		}
		if format := DetectXML(content); format != FormatUnrecognized {
			return format, content, nil
		}
	}
	return FormatUnrecognized, nil, ErrNoAssessment
}

// ParseArchive detects and parses an IMS package end to end, handing
// the archive through for image resolution.
func ParseArchive(data []byte) (*quiz.Quiz, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}
	format, content, err := DetectArchive(zr)
	if err != nil {
		return nil, err
	}
	return ParseLMS(format, content, zipFiles{zr}), nil
}
