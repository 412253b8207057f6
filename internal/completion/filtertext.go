package completion

import (
	"regexp"
	"strings"
	"unicode/utf16"
)

// dotAccessorPattern matches a trailing "." or "?." immediately before
// the cursor, e.g. "obj." or "obj?.". Preserved verbatim per spec.md §9:
// this is intentionally a regex over a line slice, not a parser.
var dotAccessorPattern = regexp.MustCompile(`\??\.\s*$`)

// bracketAccessorPattern matches an insert text of the form
// ["key"] or ['key'].
var bracketAccessorPattern = regexp.MustCompile(`^\[['"](.+)['"]\]$`)

// dotAccessorContext reports the dot-accessor text immediately before
// the cursor on linePrefix (the line's content from column 0 up to the
// cursor), if any.
func dotAccessorContext(linePrefix string) (text string, ok bool) {
	loc := dotAccessorPattern.FindString(linePrefix)
	if loc == "" {
		return "", false
	}
	return loc, true
}

// filterText computes a completion entry's LSP filter text, per
// spec.md §4.5 step 4. precedingIsHash reports whether the character
// immediately before the cursor is itself "#", relevant only to the
// private-field branch.
func filterText(name, insertText string, precedingIsHash bool) string {
	if strings.HasPrefix(name, "#") {
		return privateFieldFilterText(name, insertText, precedingIsHash)
	}
	if strings.HasPrefix(insertText, "this.") {
		return ""
	}
	if m := bracketAccessorPattern.FindStringSubmatch(insertText); m != nil {
		return "." + m[1]
	}
	return insertText
}

// privateFieldFilterText handles the "#field" branch of spec.md §4.5
// step 4: when an insert text beginning with "this.#" is given, keep it
// as-is if the cursor directly follows a "#", else strip the "this.#"
// prefix; with no insert text, fall back to name, stripping its leading
// "#" unless the cursor directly follows one.
func privateFieldFilterText(name, insertText string, precedingIsHash bool) string {
	if insertText == "" {
		if precedingIsHash {
			return name
		}
		return strings.TrimPrefix(name, "#")
	}
	if strings.HasPrefix(insertText, "this.#") {
		if precedingIsHash {
			return insertText
		}
		return strings.TrimPrefix(insertText, "this.#")
	}
	if precedingIsHash {
		return insertText
	}
	return strings.TrimPrefix(insertText, "#")
}

// lineUTF16 encodes a single line of text (no newlines) into UTF-16
// code units, matching LSP's character-counting convention.
func lineUTF16(line string) []uint16 {
	return utf16.Encode([]rune(line))
}

// sliceUTF16 decodes units[start:end] back into a string.
func sliceUTF16(units []uint16, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(units) {
		end = len(units)
	}
	if start > end {
		return ""
	}
	return string(utf16.Decode(units[start:end]))
}

// backwardScanRange implements spec.md §4.5 step 5's fallback
// replacement-range computation when the entry carries no
// replacementSpan: scanning backward from the cursor for the longest
// case-insensitive match against a prefix of label.
func backwardScanRange(lineUnits []uint16, cursor int, label string) (start, end int) {
	labelUnits := utf16.Encode([]rune(label))
	for i := len(labelUnits); i >= 0; i-- {
		s := cursor - i
		if s < 0 {
			continue
		}
		candidate := sliceUTF16(lineUnits, s, cursor)
		if strings.EqualFold(candidate, string(utf16.Decode(labelUnits[:i]))) {
			return s, cursor
		}
	}
	return cursor, cursor
}
