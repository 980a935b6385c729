package wml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// ErrMalformed reports a content part that is not well-formed XML.
var ErrMalformed = errors.New("wml: malformed content part")

// Document is one parsed content part. The XML declaration and the root
// start/end tags are kept verbatim so Encode can reproduce them exactly;
// only the content between them is rebuilt from the tree.
type Document struct {
	Root *Node

	header    string
	rootStart string
	rootEnd   string
}

var xmlHeaderPattern = regexp.MustCompile(`(?s)^\s*(<\?xml[^>]+\?>)`)

// Parse decodes a content part into a Document.
func Parse(data []byte) (*Document, error) {
	text, err := decodeToUTF8(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	header := ""
	body := text
	if match := xmlHeaderPattern.FindStringSubmatch(text); len(match) > 0 {
		header = match[1]
		body = strings.TrimSpace(text[len(match[0]):])
	}

	rootStart, rootEnd, err := extractRootTags(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	decoder := xml.NewDecoder(strings.NewReader(body))
	decoder.CharsetReader = charsetReader

	var stack []*Node
	var root *Node
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			node := &Node{Name: t.Name, Attr: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			text := string(t)
			if text == "" {
				continue
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, &Node{Kind: KindText, Text: text})
		case xml.Comment:
			appendChild(stack, &Node{Kind: KindComment, Text: string(t)})
		case xml.ProcInst:
			appendChild(stack, &Node{Kind: KindProcInst, Target: t.Target, Text: string(t.Inst)})
		case xml.Directive:
			appendChild(stack, &Node{Kind: KindDirective, Text: string(t)})
		}
	}

	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformed)
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("%w: unclosed element", ErrMalformed)
	}

	return &Document{
		Root:      root,
		header:    header,
		rootStart: rootStart,
		rootEnd:   rootEnd,
	}, nil
}

// appendChild attaches a lexical node to the innermost open element.
// Comments and instructions outside the root have no parent to keep them
// on; the preserved header and root tags already cover that region.
func appendChild(stack []*Node, child *Node) {
	if len(stack) == 0 {
		return
	}
	parent := stack[len(stack)-1]
	parent.Children = append(parent.Children, child)
}

// Paragraphs returns every w:p element in document order, including
// paragraphs nested inside tables and other containers.
func (d *Document) Paragraphs() []*Node {
	var out []*Node
	Walk(d.Root, func(n *Node) bool {
		if n.IsElement("p") {
			out = append(out, n)
		}
		return true
	})
	return out
}

// decodeToUTF8 strips a UTF-8 byte order mark and transcodes UTF-16 input,
// so the rest of the parser can work on plain UTF-8 text. Word itself
// writes UTF-8, but round-tripped documents from other tools show up in
// UTF-16 often enough to care.
func decodeToUTF8(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return string(data[3:]), nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, err := decoder.Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decode UTF-16: %w", err)
		}
		return fixHeaderEncoding(string(decoded)), nil
	}
	return string(data), nil
}

// fixHeaderEncoding rewrites the encoding pseudo-attribute after a
// transcode, so the declaration matches the bytes Encode will produce.
func fixHeaderEncoding(text string) string {
	match := xmlHeaderPattern.FindStringSubmatch(text)
	if len(match) == 0 {
		return text
	}
	fixed := encodingAttrPattern.ReplaceAllString(match[1], `encoding="UTF-8"`)
	return fixed + text[len(match[0]):]
}

var encodingAttrPattern = regexp.MustCompile(`encoding=["'][^"']*["']`)

// charsetReader handles declared encodings the stock decoder rejects.
// UTF-8 and UTF-16 variants pass through unchanged because the input has
// already been normalized by decodeToUTF8.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "utf-8", "utf8", "utf-16", "utf-16le", "utf-16be":
		return input, nil
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
	return enc.NewDecoder().Reader(input), nil
}

// extractRootTags locates the root element's start and end tags in the raw
// text, skipping processing instructions, comments and doctype.
func extractRootTags(text string) (string, string, error) {
	start, end, name, err := findRootStartTag(text)
	if err != nil {
		return "", "", err
	}
	rootStart := text[start : end+1]
	endTag := "</" + name + ">"
	endPos := strings.LastIndex(text, endTag)
	if endPos == -1 {
		if strings.HasSuffix(rootStart, "/>") {
			return rootStart, "", nil
		}
		return "", "", errors.New("root end tag not found")
	}
	return rootStart, text[endPos : endPos+len(endTag)], nil
}

func findRootStartTag(text string) (int, int, string, error) {
	i := 0
	for i < len(text) {
		idx := strings.IndexByte(text[i:], '<')
		if idx == -1 {
			return 0, 0, "", errors.New("root start tag not found")
		}
		i += idx
		switch {
		case strings.HasPrefix(text[i:], "<?"):
			end := strings.Index(text[i:], "?>")
			if end == -1 {
				return 0, 0, "", errors.New("processing instruction not terminated")
			}
			i += end + 2
			continue
		case strings.HasPrefix(text[i:], "<!--"):
			end := strings.Index(text[i:], "-->")
			if end == -1 {
				return 0, 0, "", errors.New("comment not terminated")
			}
			i += end + 3
			continue
		case strings.HasPrefix(text[i:], "<!"):
			end := strings.IndexByte(text[i:], '>')
			if end == -1 {
				return 0, 0, "", errors.New("doctype not terminated")
			}
			i += end + 1
			continue
		}
		break
	}

	start := i
	inQuote := byte(0)
	for i = start + 1; i < len(text); i++ {
		c := text[i]
		if inQuote != 0 {
			if c == inQuote {
				inQuote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			inQuote = c
		case '>':
			name := rootTagName(text[start+1 : i])
			if name == "" {
				return 0, 0, "", errors.New("root tag name missing")
			}
			return start, i, name, nil
		}
	}
	return 0, 0, "", errors.New("root start tag not terminated")
}

func rootTagName(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw[0] == '/' {
		return ""
	}
	end := len(raw)
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case ' ', '\t', '\n', '\r', '/':
			return raw[:i]
		}
	}
	return raw[:end]
}
