// Package wml parses and rewrites WordprocessingML content parts.
//
// The main document part is decoded into a generic mutable element tree
// rather than tagged structs so that every node and attribute survives a
// round trip: field codes, section properties, revision marks, comments,
// processing instructions and unknown extensions are preserved even though
// only paragraph formatting is ever touched. Serialization restores the namespace prefixes declared on the
// original root element, so the rewritten part stays recognizable to
// consumers that match on prefixed names.
package wml

import (
	"encoding/xml"
	"strings"
)

// Namespace URIs the tree cares about.
const (
	NS    = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	RelNS = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// knownPrefixes maps conventional WordprocessingML prefixes to their URIs.
// Used when the root element does not declare a prefix the tree ended up
// needing after mutation.
var knownPrefixes = map[string]string{
	"w":   NS,
	"r":   RelNS,
	"a":   "http://schemas.openxmlformats.org/drawingml/2006/main",
	"wp":  "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing",
	"pic": "http://schemas.openxmlformats.org/drawingml/2006/picture",
	"mc":  "http://schemas.openxmlformats.org/markup-compatibility/2006",
	"w14": "http://schemas.microsoft.com/office/word/2010/wordml",
	"w15": "http://schemas.microsoft.com/office/word/2012/wordml",
}

// NodeKind discriminates the lexical kinds a content tree carries.
type NodeKind int

const (
	KindElement NodeKind = iota
	KindText
	KindComment
	KindProcInst
	KindDirective
)

// Node is one element, text chunk, comment, processing instruction or
// directive in the content tree. Text holds the character data for
// KindText, the body for KindComment, the instruction for KindProcInst
// and the raw content for KindDirective. Target is set only for
// KindProcInst.
type Node struct {
	Kind     NodeKind
	Name     xml.Name
	Attr     []xml.Attr
	Children []*Node
	Text     string
	Target   string
}

// IsElement reports whether the node is an element with the given local
// name in the WordprocessingML namespace (or with no namespace at all).
func (n *Node) IsElement(local string) bool {
	if n == nil || n.Kind != KindElement {
		return false
	}
	if n.Name.Local != local {
		return false
	}
	return n.Name.Space == "" || n.Name.Space == NS
}

// Attribute returns the value of the attribute with the given namespace and
// local name, and whether it was present.
func (n *Node) Attribute(space, local string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Name.Local == local && (attr.Name.Space == space || attr.Name.Space == "") {
			return attr.Value, true
		}
	}
	return "", false
}

// SetAttribute sets or replaces the attribute with the given namespace and
// local name.
func (n *Node) SetAttribute(space, local, value string) {
	for i, attr := range n.Attr {
		if attr.Name.Local == local && (attr.Name.Space == space || attr.Name.Space == "") {
			n.Attr[i].Value = value
			return
		}
	}
	n.Attr = append(n.Attr, xml.Attr{Name: xml.Name{Space: space, Local: local}, Value: value})
}

// Child returns the first direct child element with the given local name.
func (n *Node) Child(local string) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.IsElement(local) {
			return child
		}
	}
	return nil
}

// EnsureChild returns the first direct child element with the given local
// name, creating and appending one in the WordprocessingML namespace if
// none exists.
func (n *Node) EnsureChild(local string) *Node {
	if child := n.Child(local); child != nil {
		return child
	}
	child := &Node{Name: xml.Name{Space: NS, Local: local}}
	n.Children = append(n.Children, child)
	return child
}

// PrependChild inserts a child at the front of the node's child list.
func (n *Node) PrependChild(child *Node) {
	n.Children = append([]*Node{child}, n.Children...)
}

// RemoveChild removes the given child node. It is a no-op when the node is
// not a direct child.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return
		}
	}
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cloned := &Node{
		Kind:   n.Kind,
		Name:   n.Name,
		Attr:   append([]xml.Attr(nil), n.Attr...),
		Text:   n.Text,
		Target: n.Target,
	}
	if len(n.Children) > 0 {
		cloned.Children = make([]*Node, 0, len(n.Children))
		for _, child := range n.Children {
			cloned.Children = append(cloned.Children, child.Clone())
		}
	}
	return cloned
}

// Walk visits the node and its descendants in document order. The visit
// function returns false to stop the walk.
func Walk(n *Node, visit func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !visit(n) {
		return false
	}
	for _, child := range n.Children {
		if !Walk(child, visit) {
			return false
		}
	}
	return true
}

// InnerText concatenates all descendant text of the node.
func (n *Node) InnerText() string {
	var sb strings.Builder
	Walk(n, func(node *Node) bool {
		if node.Kind == KindText {
			sb.WriteString(node.Text)
		}
		return true
	})
	return sb.String()
}

// SetText replaces the node's children with a single text node; an empty
// string leaves the node with no children.
func (n *Node) SetText(text string) {
	n.Children = n.Children[:0]
	if text == "" {
		return
	}
	n.Children = append(n.Children, &Node{Kind: KindText, Text: text})
}
