package ingest

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Format tags the recognized input formats. Unrecognized content
// degrades to plain-text ingestion instead of failing hard.
type Format string

const (
	FormatText         Format = "text"
	FormatDOCX         Format = "docx"
	FormatPDF          Format = "pdf"
	FormatQTI          Format = "qti"
	FormatMoodle       Format = "moodle"
	FormatBlackboard   Format = "blackboard"
	FormatIMS          Format = "ims"
	FormatUnrecognized Format = "unrecognized"
)

// Kind is the coarse classification by filename; XML and zip payloads
// still need a content sniff to land on a Format.
type Kind string

const (
	KindText Kind = "text"
	KindDOCX Kind = "docx"
	KindPDF  Kind = "pdf"
	KindXML  Kind = "xml"
	KindZip  Kind = "zip"
)

// KindForFilename classifies by extension. Unknown extensions are an
// input rejection: no adapter runs.
func KindForFilename(name string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return KindPDF, nil
	case ".docx":
		return KindDOCX, nil
	case ".txt", ".text":
		return KindText, nil
	case ".xml":
		return KindXML, nil
	case ".zip":
		return KindZip, nil
	}
	return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(name))
}

// DetectXML classifies XML content as one of the LMS dialects. Content
// that fails to parse, or whose root element is unknown, is
// unrecognized; the caller falls back to plain text.
func DetectXML(content []byte) Format {
	root, ok := xmlRootElement(content)
	if !ok {
		return FormatUnrecognized
	}
	switch root {
	case "questestinterop":
		if bytes.Contains(content, []byte("bbmd_")) || bytes.Contains(content, []byte("bb_question_type")) {
			return FormatBlackboard
		}
		return FormatQTI
	case "quiz":
		return FormatMoodle
	}
	return FormatUnrecognized
}

// xmlRootElement returns the root element's local name when the whole
// document tokenizes cleanly.
func xmlRootElement(content []byte) (string, bool) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	var root string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return root, root != ""
		}
		if err != nil {
			return "", false
		}
		if se, ok := tok.(xml.StartElement); ok && root == "" {
			root = strings.ToLower(se.Name.Local)
		}
	}
}
