package ingest

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"net/url"
	"regexp"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/quizforge/quizforge/internal/quiz"
)

// SniffImageType inspects leading magic bytes. Unknown payloads default
// to PNG so a miss never aborts extraction; EMF/WMF are identified so
// the DOCX adapter can discard them.
func SniffImageType(b []byte) string {
	if len(b) >= 4 {
		switch {
		case b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47:
			return "image/png"
		case b[0] == 0xFF && b[1] == 0xD8 && b[2] == 0xFF:
			return "image/jpeg"
		case b[0] == 0x47 && b[1] == 0x49 && b[2] == 0x46:
			return "image/gif"
		case b[0] == 0x42 && b[1] == 0x4D:
			return "image/bmp"
		case b[0] == 0x52 && b[1] == 0x49 && b[2] == 0x46 && b[3] == 0x46:
			return "image/webp"
		case b[0] == 0x01 && b[1] == 0x00 && b[2] == 0x00 && b[3] == 0x00:
			return "image/emf"
		case b[0] == 0xD7 && b[1] == 0xCD && b[2] == 0xC6 && b[3] == 0x9A:
			return "image/wmf"
		}
	}
	return "image/png"
}

func isVectorImage(mime string) bool {
	return mime == "image/emf" || mime == "image/wmf"
}

// DataURL builds the canonical self-contained representation; the mime
// prefix always matches the sniffed type.
func DataURL(mime string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}

// ImageDimensions probes pixel dimensions; 0x0 on decode failure, never
// an error.
func ImageDimensions(data []byte) (w, h int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

var (
	imgSrcRe      = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["'][^>]*>`)
	imsFilebaseRe = regexp.MustCompile(`(?i)%24IMS-CC-FILEBASE%24/`)
)

// extractInlineImages resolves <img> references found in raw item HTML.
// Data URLs are taken as-is; other paths are looked up in the
// accompanying archive with the IMS-CC file-base placeholder stripped.
// Unresolvable references are skipped, never fatal.
func extractInlineImages(rawHTML string, files archiveFiles) []quiz.Image {
	var images []quiz.Image
	for _, m := range imgSrcRe.FindAllStringSubmatch(rawHTML, -1) {
		src := m[1]
		if strings.HasPrefix(src, "data:") {
			mime := "image/png"
			if parts := strings.SplitN(src, ";", 2); len(parts) == 2 {
				if p := strings.TrimPrefix(parts[0], "data:"); p != "" {
					mime = p
				}
			}
			images = append(images, quiz.Image{
				ID:       quiz.NewID(),
				Filename: fmt.Sprintf("image_%d", len(images)+1),
				DataURL:  src,
				MimeType: mime,
				Source:   "qti",
			})
			continue
		}
		if files == nil {
			continue
		}
		path := imsFilebaseRe.ReplaceAllString(src, "")
		if unescaped, err := url.QueryUnescape(path); err == nil {
			path = unescaped
		}
		data, ok := files.read(path)
		if !ok {
			data, ok = files.read("resources/" + path)
		}
		if !ok {
			continue
		}
		mime := SniffImageType(data)
		base := path
		if i := strings.LastIndex(base, "/"); i >= 0 {
			base = base[i+1:]
		}
		images = append(images, quiz.Image{
			ID:       quiz.NewID(),
			Filename: base,
			DataURL:  DataURL(mime, data),
			MimeType: mime,
			Size:     len(data),
			Source:   "qti",
		})
	}
	return images
}
