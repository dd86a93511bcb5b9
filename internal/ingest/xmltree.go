package ingest

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"strings"
)

// node is a minimal DOM built from encoding/xml tokens. The LMS
// dialects need descendant lookups by local name, which the streaming
// decoder alone does not give us.
type node struct {
	name     string
	attrs    map[string]string
	text     string // own character data, CDATA included
	children []*node
}

func parseXMLTree(content []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	dec.Strict = false
	var root *node
	var stack []*node
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: strings.ToLower(t.Name.Local), attrs: map[string]string{}}
			for _, a := range t.Attr {
				n.attrs[strings.ToLower(a.Name.Local)] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			} else if root == nil {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			}
		}
	}
	if root == nil {
		return nil, errors.New("empty document")
	}
	return root, nil
}

func (n *node) attr(key string) string { return n.attrs[key] }

// find returns the first descendant with the given local name,
// depth-first in document order.
func (n *node) find(name string) *node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
		if m := c.find(name); m != nil {
			return m
		}
	}
	return nil
}

func (n *node) findAll(name string) []*node {
	var out []*node
	for _, c := range n.children {
		if c.name == name {
			out = append(out, c)
		}
		out = append(out, c.findAll(name)...)
	}
	return out
}

// textContent concatenates the node's own character data with that of
// all descendants, in document order.
func (n *node) textContent() string {
	var b strings.Builder
	b.WriteString(n.text)
	for _, c := range n.children {
		b.WriteString(c.textContent())
	}
	return b.String()
}

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	imgTagRe     = regexp.MustCompile(`(?i)<img[^>]*>`)
)

// stripHTMLTags removes markup, decodes entities, and collapses runs of
// whitespace to single spaces.
func stripHTMLTags(s string) string {
	if s == "" {
		return ""
	}
	s = htmlTagRe.ReplaceAllString(s, "")
	s = decodeXMLEntities(s)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func decodeXMLEntities(s string) string {
	r := strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
		"&amp;", "&",
	)
	return r.Replace(s)
}

// extractMattext pulls display text out of a QTI material element,
// stripping HTML only when markup is actually present.
func extractMattext(n *node) string {
	if n == nil {
		return ""
	}
	text := n.textContent()
	if strings.Contains(text, "<") && strings.Contains(text, ">") {
		text = stripHTMLTags(text)
	}
	return strings.TrimSpace(text)
}
