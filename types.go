package kdpcheck

import (
	"github.com/hanpama/kdpcheck/internal/check"
	"github.com/hanpama/kdpcheck/internal/stats"
)

// The analysis model, re-exported so callers can consume findings without
// importing internal packages.
type (
	Severity  = check.Severity
	Category  = check.Category
	Finding   = check.Finding
	Report    = check.Report
	FixResult = check.FixResult
	Stats     = stats.Stats
)

const (
	SeverityCritical = check.SeverityCritical
	SeverityWarning  = check.SeverityWarning
	SeverityInfo     = check.SeverityInfo
	SeveritySuccess  = check.SeveritySuccess
)

const (
	CategoryTabs       = check.CategoryTabs
	CategoryIndent     = check.CategoryIndent
	CategoryHeadings   = check.CategoryHeadings
	CategorySpacing    = check.CategorySpacing
	CategoryPageBreaks = check.CategoryPageBreaks
	CategoryTOC        = check.CategoryTOC
	CategoryImages     = check.CategoryImages
	CategorySkipped    = check.CategorySkipped
)
