// Package export serializes the normalized quiz model into a QTI 1.2
// assessment, an IMS manifest, and an image asset bundle.
package export

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/quizforge/quizforge/internal/quiz"
)

// Settings carry the operator-editable export knobs.
type Settings struct {
	Title           string
	TimeLimitMin    int
	AttemptsAllowed int
}

// Asset is one image file referenced by the assessment.
type Asset struct {
	Filename string
	MimeType string
	Data     []byte
}

// Package is a fully rendered export bundle, ready for zipping.
type Package struct {
	AssessmentID string
	XML          []byte
	Manifest     []byte
	Assets       []Asset
}

const filebaseToken = "%24IMS-CC-FILEBASE%24"

// Build renders the quiz. Question order is preserved; images are
// rewritten to package-relative file references and collected as
// assets with sequential filenames.
func Build(z *quiz.Quiz, s Settings) Package {
	if s.Title == "" {
		s.Title = z.Title
	}
	if s.AttemptsAllowed == 0 {
		s.AttemptsAllowed = 1
	}
	assessmentID := fmt.Sprintf("assessment_%s", z.ID)

	var assets []Asset
	processImages := func(images []quiz.Image) string {
		var b strings.Builder
		for _, img := range images {
			data, ok := decodeDataURL(img.DataURL)
			if !ok {
				continue
			}
			ext := "png"
			if parts := strings.SplitN(img.MimeType, "/", 2); len(parts) == 2 && parts[1] != "" {
				ext = parts[1]
			}
			filename := fmt.Sprintf("image_%d.%s", len(assets)+1, ext)
			assets = append(assets, Asset{Filename: filename, MimeType: img.MimeType, Data: data})
			alt := img.Filename
			if alt == "" {
				alt = "Question image"
			}
			fmt.Fprintf(&b, `<p><img src="%s/%s" alt="%s" style="max-width: 100%%; height: auto;" /></p>`,
				filebaseToken, filename, escapeXML(alt))
		}
		return b.String()
	}

	var xml strings.Builder
	xml.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	xml.WriteString(`<questestinterop xmlns="http://www.imsglobal.org/xsd/ims_qtiasiv1p2" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="http://www.imsglobal.org/xsd/ims_qtiasiv1p2 http://www.imsglobal.org/xsd/ims_qtiasiv1p2p1.xsd">` + "\n")
	fmt.Fprintf(&xml, "  <assessment ident=\"%s\" title=\"%s\">\n", assessmentID, escapeXML(s.Title))
	xml.WriteString("    <qtimetadata>\n")
	if s.TimeLimitMin > 0 {
		writeMetadataField(&xml, "qmd_timelimit", fmt.Sprintf("%d", s.TimeLimitMin*60))
	}
	writeMetadataField(&xml, "cc_maxattempts", fmt.Sprintf("%d", s.AttemptsAllowed))
	xml.WriteString("    </qtimetadata>\n")
	xml.WriteString(`    <section ident="root_section">` + "\n")

	for i, q := range z.Questions {
		stemHTML := fmt.Sprintf("<p>%s</p>%s", escapeXML(q.Text), processImages(q.Images))
		switch q.Type {
		case quiz.MultipleChoice, quiz.TrueFalse, quiz.MultipleSelect:
			writeChoiceItem(&xml, q, i, stemHTML)
		case quiz.ShortAnswer, quiz.FillBlank, quiz.Essay:
			writeOpenItem(&xml, q, i, stemHTML)
		default:
			// Matching, ordering, and numerical have no faithful QTI 1.2
			// rendering in this profile; exported as open response so the
			// item survives the round trip.
			writeOpenItem(&xml, q, i, stemHTML)
		}
	}

	xml.WriteString("    </section>\n  </assessment>\n</questestinterop>")

	return Package{
		AssessmentID: assessmentID,
		XML:          []byte(xml.String()),
		Manifest:     buildManifest(z.ID, assessmentID, s.Title, assets),
		Assets:       assets,
	}
}

// vendorType is the inverse of the import lookup: the whole choice
// family exports as multiple_choice_question except true/false.
func vendorType(t string) string {
	switch t {
	case quiz.TrueFalse:
		return "true_false_question"
	case quiz.MultipleChoice, quiz.MultipleSelect:
		return "multiple_choice_question"
	case quiz.Essay:
		return "essay_question"
	default:
		return "short_answer_question"
	}
}

func writeChoiceItem(b *strings.Builder, q quiz.Question, index int, stemHTML string) {
	fmt.Fprintf(b, "      <item ident=\"item_%s\" title=\"Question %d\">\n", q.ID, index+1)
	writeItemMetadata(b, vendorType(q.Type), q.Points)
	b.WriteString("        <presentation>\n          <material>\n")
	fmt.Fprintf(b, "            <mattext texttype=\"text/html\"><![CDATA[%s]]></mattext>\n", stemHTML)
	b.WriteString("          </material>\n")
	b.WriteString("          <response_lid ident=\"response1\" rcardinality=\"Single\">\n            <render_choice>\n")
	for _, opt := range q.Options {
		fmt.Fprintf(b, "              <response_label ident=\"%s\">\n", opt.ID)
		b.WriteString("                <material>\n")
		fmt.Fprintf(b, "                  <mattext texttype=\"text/html\"><![CDATA[<p>%s</p>]]></mattext>\n", escapeXML(opt.Text))
		b.WriteString("                </material>\n              </response_label>\n")
	}
	b.WriteString("            </render_choice>\n          </response_lid>\n        </presentation>\n")
	b.WriteString("        <resprocessing>\n          <outcomes>\n            <decvar maxvalue=\"100\" minvalue=\"0\" varname=\"SCORE\" vartype=\"Decimal\"/>\n          </outcomes>\n")
	if correct := firstCorrectOption(q); correct != "" {
		b.WriteString("          <respcondition continue=\"No\">\n            <conditionvar>\n")
		fmt.Fprintf(b, "              <varequal respident=\"response1\">%s</varequal>\n", correct)
		b.WriteString("            </conditionvar>\n            <setvar action=\"Set\" varname=\"SCORE\">100</setvar>\n          </respcondition>\n")
	}
	b.WriteString("        </resprocessing>\n      </item>\n")
}

func writeOpenItem(b *strings.Builder, q quiz.Question, index int, stemHTML string) {
	fmt.Fprintf(b, "      <item ident=\"item_%s\" title=\"Question %d\">\n", q.ID, index+1)
	writeItemMetadata(b, vendorType(q.Type), q.Points)
	b.WriteString("        <presentation>\n          <material>\n")
	fmt.Fprintf(b, "            <mattext texttype=\"text/html\"><![CDATA[%s]]></mattext>\n", stemHTML)
	b.WriteString("          </material>\n")
	b.WriteString("          <response_str ident=\"response1\" rcardinality=\"Single\">\n            <render_fib>\n              <response_label ident=\"answer1\" rshuffle=\"No\"/>\n            </render_fib>\n          </response_str>\n        </presentation>\n      </item>\n")
}

func writeItemMetadata(b *strings.Builder, vendor string, points float64) {
	b.WriteString("        <itemmetadata>\n          <qtimetadata>\n")
	fmt.Fprintf(b, "            <qtimetadatafield>\n              <fieldlabel>question_type</fieldlabel>\n              <fieldentry>%s</fieldentry>\n            </qtimetadatafield>\n", vendor)
	fmt.Fprintf(b, "            <qtimetadatafield>\n              <fieldlabel>points_possible</fieldlabel>\n              <fieldentry>%s</fieldentry>\n            </qtimetadatafield>\n", formatPoints(points))
	b.WriteString("          </qtimetadata>\n        </itemmetadata>\n")
}

func writeMetadataField(b *strings.Builder, label, entry string) {
	fmt.Fprintf(b, "      <qtimetadatafield>\n        <fieldlabel>%s</fieldlabel>\n        <fieldentry>%s</fieldentry>\n      </qtimetadatafield>\n", label, entry)
}

func firstCorrectOption(q quiz.Question) string {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o.ID
		}
	}
	return ""
}

func formatPoints(p float64) string {
	if p == float64(int64(p)) {
		return fmt.Sprintf("%d", int64(p))
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", p), "0"), ".")
}

func buildManifest(quizID, assessmentID, title string, assets []Asset) []byte {
	var refs strings.Builder
	for _, a := range assets {
		fmt.Fprintf(&refs, "        <file href=\"%s\"/>\n", a.Filename)
	}
	manifest := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<manifest identifier="manifest_%s" xmlns="http://www.imsglobal.org/xsd/imsccv1p1/imscp_v1p1" xmlns:lom="http://ltsc.ieee.org/xsd/imsccv1p1/LOM/resource" xmlns:imsmd="http://www.imsglobal.org/xsd/imsmd_v1p2" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <metadata>
    <schema>IMS Content</schema>
    <schemaversion>1.1.3</schemaversion>
    <lom:lom>
      <lom:general>
        <lom:title>
          <lom:string>%s</lom:string>
        </lom:title>
      </lom:general>
    </lom:lom>
  </metadata>
  <organizations/>
  <resources>
    <resource identifier="%s" type="imsqti_xmlv1p2">
      <file href="%s.xml"/>
%s    </resource>
  </resources>
</manifest>`, quizID, escapeXML(title), assessmentID, assessmentID, refs.String())
	return []byte(manifest)
}

// escapeXML escapes the five standard entities.
func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}

func decodeDataURL(dataURL string) ([]byte, bool) {
	_, payload, ok := strings.Cut(dataURL, ",")
	if !ok {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, false
	}
	return data, true
}
