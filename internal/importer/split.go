package importer

import "strings"

// SplitList splits s on any of ',' ';' '|'. Items are trimmed, empty items
// dropped and duplicates removed, keeping first-seen order.
func SplitList(s string) []string {
	return clean(strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	}))
}

// listDelimiters is the precedence used by SplitFirstDelimiter.
var listDelimiters = []string{";", ",", "|"}

// SplitFirstDelimiter splits s on the first of ';' ',' '|' that occurs in it,
// so image URLs and detail lines may contain the other two.
func SplitFirstDelimiter(s string) []string {
	for _, d := range listDelimiters {
		if strings.Contains(s, d) {
			return clean(strings.Split(s, d))
		}
	}
	return clean([]string{s})
}

func clean(items []string) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if _, dup := seen[it]; dup {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
