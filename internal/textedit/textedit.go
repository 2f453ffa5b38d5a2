// Package textedit reassembles source text after range removal and keeps
// response ranges well formed: sorted, non-overlapping, merged.
package textedit

import (
	"sort"
	"strings"

	"github.com/scalpel-dev/scalpel/internal/types"
)

// MergeRanges sorts ranges ascending by start point and merges any that
// overlap or touch. The input is not modified.
func MergeRanges(ranges []types.Range) []types.Range {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]types.Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].End.Before(sorted[j].End)
	})

	out := []types.Range{sorted[0]}
	for _, r := range sorted[1:] {
		last := &out[len(out)-1]
		if r.Start.BeforeOrEqual(last.End) {
			if last.End.Before(r.End) {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// DeleteRanges removes the given spans from src and returns the filtered
// text plus the cursor adjusted to the same location in it. Ranges must be
// sorted and non-overlapping (MergeRanges output). Partially covered lines
// keep their uncovered prefix/suffix when it is not just whitespace, so a
// removed trailing statement does not leave its indentation behind. The
// cursor is assumed to sit outside every removed range.
func DeleteRanges(src string, ranges []types.Range, cursor types.Point) (string, types.Point) {
	lines := strings.Split(src, "\n")
	kept := make([]string, 0, len(lines))

	cursorRow := int(cursor.Line)
	removedAbove := 0
	next := 0
	for _, r := range ranges {
		startRow, endRow := int(r.Start.Line), int(r.End.Line)
		if startRow >= len(lines) {
			break
		}
		if endRow >= len(lines) {
			endRow = len(lines) - 1
		}
		kept = append(kept, lines[next:startRow]...)

		prefix := lines[startRow][:clampCol(lines[startRow], r.Start.Column)]
		suffix := lines[endRow][clampCol(lines[endRow], r.End.Column):]
		keptPartial := 0
		if strings.TrimSpace(prefix) != "" {
			kept = append(kept, prefix)
			keptPartial++
		}
		if strings.TrimSpace(suffix) != "" {
			kept = append(kept, suffix)
			keptPartial++
		}
		next = endRow + 1

		// Compare against the original cursor row; the adjustment itself
		// must not shift the threshold for later ranges.
		if endRow < cursorRow {
			spanned := endRow - startRow + 1
			removedAbove += spanned - keptPartial
		}
	}
	if next < len(lines) {
		kept = append(kept, lines[next:]...)
	}
	cursor.Line = uint32(cursorRow - removedAbove)
	return strings.Join(kept, "\n"), cursor
}

func clampCol(line string, col uint32) int {
	if int(col) > len(line) {
		return len(line)
	}
	return int(col)
}
