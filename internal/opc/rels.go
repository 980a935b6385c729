package opc

import (
	"encoding/xml"
	"fmt"
)

// ImageRelType is the relationship type of embedded images.
const ImageRelType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

// Relationship is one entry in a part's relationships part.
type Relationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// ParseRelationships decodes a relationships part.
func ParseRelationships(data []byte) ([]Relationship, error) {
	var rels struct {
		XMLName       xml.Name       `xml:"Relationships"`
		Relationships []Relationship `xml:"Relationship"`
	}
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("failed to parse relationships: %w", err)
	}
	return rels.Relationships, nil
}

// CountImages counts image relationships in a relationships part. A missing
// or unreadable part counts as zero images.
func CountImages(data []byte) int {
	rels, err := ParseRelationships(data)
	if err != nil {
		return 0
	}
	count := 0
	for _, rel := range rels {
		if rel.Type == ImageRelType {
			count++
		}
	}
	return count
}
