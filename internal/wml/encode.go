package wml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Encode serializes the document back to bytes. The XML declaration and the
// root tags are emitted verbatim from the original part; the content in
// between is re-encoded from the tree with the root's namespace prefixes
// restored. Encoding the same tree twice produces identical bytes, which is
// what makes repeated fix runs converge to a stable file.
func (d *Document) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if d.header != "" {
		buf.WriteString(d.header)
		if !strings.HasSuffix(d.header, "\n") {
			// Word writes the declaration and the root on separate lines.
			buf.WriteByte('\n')
		}
	}

	clone := d.Root.Clone()
	normalizeXMLNSAttrs(clone)
	applyPrefixMap(clone, prefixMapFromRoot(d.Root))

	rootStart := d.rootStart
	rootEnd := d.rootEnd
	if rootEnd == "" && len(clone.Children) > 0 {
		if idx := strings.LastIndex(rootStart, "/>"); idx != -1 {
			name := rootTagName(rootStart[1:])
			rootStart = rootStart[:idx] + ">"
			rootEnd = "</" + name + ">"
		}
	}
	rootStart = ensureRootNamespaces(rootStart, requiredNamespaces(prefixesUsed(clone), d.Root))
	buf.WriteString(rootStart)

	encoder := xml.NewEncoder(&buf)
	for _, child := range clone.Children {
		if err := encodeNode(encoder, child); err != nil {
			return nil, fmt.Errorf("encode content: %w", err)
		}
	}
	if err := encoder.Flush(); err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}

	buf.WriteString(rootEnd)
	return buf.Bytes(), nil
}

func encodeNode(encoder *xml.Encoder, node *Node) error {
	switch node.Kind {
	case KindText:
		return encoder.EncodeToken(xml.CharData(node.Text))
	case KindComment:
		return encoder.EncodeToken(xml.Comment(node.Text))
	case KindProcInst:
		return encoder.EncodeToken(xml.ProcInst{Target: node.Target, Inst: []byte(node.Text)})
	case KindDirective:
		return encoder.EncodeToken(xml.Directive(node.Text))
	}
	start := xml.StartElement{Name: node.Name, Attr: node.Attr}
	if err := encoder.EncodeToken(start); err != nil {
		return err
	}
	for _, child := range node.Children {
		if err := encodeNode(encoder, child); err != nil {
			return err
		}
	}
	return encoder.EncodeToken(start.End())
}

// prefixMapFromRoot maps namespace URIs to the prefixes the root element
// declares for them.
func prefixMapFromRoot(root *Node) map[string]string {
	if root == nil {
		return nil
	}
	out := make(map[string]string)
	for _, attr := range root.Attr {
		switch {
		case attr.Name.Space == "xmlns":
			out[attr.Value] = attr.Name.Local
		case attr.Name.Space == "" && attr.Name.Local == "xmlns":
			out[attr.Value] = ""
		case attr.Name.Space == "" && strings.HasPrefix(attr.Name.Local, "xmlns:"):
			out[attr.Value] = strings.TrimPrefix(attr.Name.Local, "xmlns:")
		}
	}
	return out
}

// applyPrefixMap rewrites URI-qualified names into prefixed local names so
// the encoder emits "w:p" instead of inventing its own namespace bindings.
// Attributes in the reserved xml namespace are left for the encoder, which
// prints them with the predefined xml prefix.
func applyPrefixMap(node *Node, prefixes map[string]string) {
	if node == nil || len(prefixes) == 0 {
		return
	}
	if node.Kind == KindElement {
		if prefix, ok := prefixes[node.Name.Space]; ok && prefix != "" {
			node.Name.Local = prefix + ":" + node.Name.Local
			node.Name.Space = ""
		}
		for i, attr := range node.Attr {
			if isNamespaceDecl(attr) {
				continue
			}
			if prefix, ok := prefixes[attr.Name.Space]; ok && prefix != "" {
				attr.Name.Local = prefix + ":" + attr.Name.Local
				attr.Name.Space = ""
				node.Attr[i] = attr
			}
		}
	}
	for _, child := range node.Children {
		applyPrefixMap(child, prefixes)
	}
}

// normalizeXMLNSAttrs rewrites decoded xmlns declarations back into their
// literal attribute form so the encoder does not mangle them.
func normalizeXMLNSAttrs(node *Node) {
	if node == nil {
		return
	}
	if node.Kind == KindElement {
		for i, attr := range node.Attr {
			if attr.Name.Space != "xmlns" {
				continue
			}
			attr.Name.Space = ""
			if attr.Name.Local == "" {
				attr.Name.Local = "xmlns"
			} else {
				attr.Name.Local = "xmlns:" + attr.Name.Local
			}
			node.Attr[i] = attr
		}
	}
	for _, child := range node.Children {
		normalizeXMLNSAttrs(child)
	}
}

func isNamespaceDecl(attr xml.Attr) bool {
	return attr.Name.Space == "xmlns" ||
		(attr.Name.Space == "" && attr.Name.Local == "xmlns") ||
		(attr.Name.Space == "" && strings.HasPrefix(attr.Name.Local, "xmlns:"))
}

func prefixesUsed(node *Node) map[string]struct{} {
	out := make(map[string]struct{})
	Walk(node, func(n *Node) bool {
		if n.Kind != KindElement {
			return true
		}
		if prefix := prefixOf(n.Name.Local); prefix != "" {
			out[prefix] = struct{}{}
		}
		for _, attr := range n.Attr {
			if prefix := prefixOf(attr.Name.Local); prefix != "" {
				out[prefix] = struct{}{}
			}
		}
		return true
	})
	return out
}

func prefixOf(name string) string {
	if name == "" || name == "xmlns" || strings.HasPrefix(name, "xmlns:") {
		return ""
	}
	if idx := strings.IndexByte(name, ':'); idx > 0 {
		return name[:idx]
	}
	return ""
}

func namespaceDeclsFromRoot(root *Node) map[string]string {
	if root == nil {
		return nil
	}
	out := make(map[string]string)
	for _, attr := range root.Attr {
		switch {
		case attr.Name.Space == "xmlns":
			out[attr.Name.Local] = attr.Value
		case attr.Name.Space == "" && attr.Name.Local == "xmlns":
			out[""] = attr.Value
		case attr.Name.Space == "" && strings.HasPrefix(attr.Name.Local, "xmlns:"):
			out[strings.TrimPrefix(attr.Name.Local, "xmlns:")] = attr.Value
		}
	}
	return out
}

// requiredNamespaces resolves every prefix the encoded tree uses to a URI,
// preferring the root's own declarations over the conventional set.
func requiredNamespaces(prefixes map[string]struct{}, root *Node) map[string]string {
	declared := namespaceDeclsFromRoot(root)
	required := make(map[string]string)
	for prefix := range prefixes {
		if uri, ok := declared[prefix]; ok {
			required[prefix] = uri
			continue
		}
		if uri, ok := knownPrefixes[prefix]; ok {
			required[prefix] = uri
		}
	}
	if _, ok := required["w"]; !ok {
		required["w"] = NS
	}
	return required
}

var xmlnsAttrPattern = regexp.MustCompile(`\s+xmlns(?::([A-Za-z0-9._-]+))?="([^"]+)"`)

// ensureRootNamespaces adds any namespace declaration the content needs but
// the original root start tag lacks. Declarations already present are kept
// untouched so the tag stays byte-identical in the common case.
func ensureRootNamespaces(rootStart string, required map[string]string) string {
	if len(required) == 0 || rootStart == "" {
		return rootStart
	}
	existing := make(map[string]string)
	for _, match := range xmlnsAttrPattern.FindAllStringSubmatch(rootStart, -1) {
		existing[match[1]] = match[2]
	}

	missing := make([]string, 0, len(required))
	for prefix, uri := range required {
		if _, ok := existing[prefix]; ok {
			continue
		}
		if uri != "" && prefix != "" {
			missing = append(missing, prefix)
		}
	}
	if len(missing) == 0 {
		return rootStart
	}
	sort.Strings(missing)

	var sb strings.Builder
	for _, prefix := range missing {
		sb.WriteString(` xmlns:`)
		sb.WriteString(prefix)
		sb.WriteString(`="`)
		sb.WriteString(required[prefix])
		sb.WriteString(`"`)
	}
	if idx := strings.LastIndex(rootStart, "/>"); idx != -1 && idx == len(rootStart)-2 {
		return rootStart[:idx] + sb.String() + rootStart[idx:]
	}
	if idx := strings.LastIndex(rootStart, ">"); idx != -1 {
		return rootStart[:idx] + sb.String() + rootStart[idx:]
	}
	return rootStart
}
