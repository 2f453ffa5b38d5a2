// Package types holds the wire-level data model shared by every transport:
// points, ranges, and the slice/inline request and response shapes. Lines
// and columns are zero based; column units are bytes.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Point is a zero-based cursor position.
type Point struct {
	Line   uint32 `json:"line"`
	Column uint32 `json:"col"`
}

func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before reports whether p is strictly before other in document order.
func (p Point) Before(other Point) bool {
	return p.Line < other.Line || (p.Line == other.Line && p.Column < other.Column)
}

// BeforeOrEqual reports whether p is at or before other in document order.
func (p Point) BeforeOrEqual(other Point) bool {
	return p == other || p.Before(other)
}

// Range is a half-open [Start, End) span of source text.
type Range struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// Contains reports whether the point falls inside the range.
func (r Range) Contains(p Point) bool {
	return r.Start.BeforeOrEqual(p) && p.Before(r.End)
}

// Overlaps reports whether two ranges share any position, treating ranges
// that merely touch as disjoint.
func (r Range) Overlaps(other Range) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Direction selects which side of the seed a slice keeps.
type Direction int

const (
	// Backward keeps the statements the seed value depends on.
	Backward Direction = iota
	// Forward keeps the statements that depend on the seed value.
	Forward
)

func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "backward"
}

// ParseDirection accepts the wire names for a direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "backward", "back", "b":
		return Backward, nil
	case "forward", "fwd", "f":
		return Forward, nil
	}
	return Backward, fmt.Errorf("unknown direction %q", s)
}

func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts either the string form ("backward"/"forward") or
// the legacy numeric form (0/1).
func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, perr := ParseDirection(s)
		if perr != nil {
			return perr
		}
		*d = parsed
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("direction must be a string or integer")
	}
	switch n {
	case 0:
		*d = Backward
	case 1:
		*d = Forward
	default:
		return fmt.Errorf("unknown direction %d", n)
	}
	return nil
}

// Source identifies one document and a cursor position within it. Language
// is an optional editor hint; when empty the filename extension decides.
type Source struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Language string `json:"language,omitempty"`
	Point    Point  `json:"point"`
}

// SliceRequest asks for the statement ranges a slice would remove.
type SliceRequest struct {
	Source
	Direction Direction `json:"direction"`
}

// SliceResponse lists the ranges to delete, sorted and non-overlapping.
type SliceResponse struct {
	RangesToRemove []Range `json:"ranges_to_remove"`
}

// InlineRequest asks for the document text with the call under Point
// replaced by the body of the function defined at TargetPoint in
// TargetContent. TargetContent may equal Content for same-file targets.
type InlineRequest struct {
	Source
	TargetContent string `json:"target_content"`
	TargetPoint   Point  `json:"target_point"`
}

// InlineResponse carries the rewritten document.
type InlineResponse struct {
	Content string `json:"content"`
}
