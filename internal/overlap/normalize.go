package overlap

import (
	"regexp"
	"strings"
)

var (
	articleMarkers = []string{"; THE", ", THE"}
	punctuation    = strings.NewReplacer(",", " ", "(", " ", ")", " ", "/", " ")
	spaceRun       = regexp.MustCompile(` +`)
)

// Normalize canonicalizes a raw committee name for fragment extraction:
// a trailing article ("ACME PAC, THE") moves to the front, the characters
// , ( ) / become spaces, and runs of spaces collapse.
func Normalize(raw string) string {
	s, moved := dropArticles(raw)
	s = clean(s)
	// Cleaning can join a separator and THE into a fresh marker.
	for hasArticle(s) {
		s, _ = dropArticles(s)
		s = clean(s)
		moved = true
	}
	if moved {
		s = clean("THE " + s)
	}
	return s
}

// NormalizeAll normalizes names in input order, tagging each with its
// first-appearance index.
func NormalizeAll(entities []Entity) []NormalizedName {
	out := make([]NormalizedName, len(entities))
	for i, e := range entities {
		out[i] = NormalizedName{Text: Normalize(e.Name), Source: e.Name, Index: i}
	}
	return out
}

// NormalizedName is a cleaned name with a reference back to its entity.
type NormalizedName struct {
	Text   string
	Source string
	Index  int
}

func dropArticles(s string) (string, bool) {
	found := false
	for hasArticle(s) {
		for _, m := range articleMarkers {
			s = strings.ReplaceAll(s, m, "")
		}
		found = true
	}
	return s, found
}

func hasArticle(s string) bool {
	for _, m := range articleMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func clean(s string) string {
	s = punctuation.Replace(s)
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.Trim(s, " ")
}
