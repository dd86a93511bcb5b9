package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
)

var unsafeTitleRe = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Filename derives the download name from the quiz title, restricted
// to word characters.
func Filename(title string) string {
	safe := unsafeTitleRe.ReplaceAllString(title, "_")
	if safe == "" {
		safe = "quiz"
	}
	return safe + "_quiz.zip"
}

// WriteZip packages the bundle: manifest at the root, the assessment
// XML, then every image asset.
func WriteZip(pkg Package) ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	files := []struct {
		name string
		data []byte
	}{
		{"imsmanifest.xml", pkg.Manifest},
		{pkg.AssessmentID + ".xml", pkg.XML},
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", f.name, err)
		}
		if _, err := w.Write(f.data); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	for _, a := range pkg.Assets {
		w, err := zw.Create(a.Filename)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", a.Filename, err)
		}
		if _, err := w.Write(a.Data); err != nil {
			return nil, fmt.Errorf("write %s: %w", a.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
