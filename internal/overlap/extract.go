package overlap

import "strings"

// FragmentSet is a set of fragment strings of one length.
type FragmentSet map[string]struct{}

// Extract returns every proper contiguous word window of a normalized name,
// keyed by window length. The whole name is never its own fragment.
func Extract(normalized string) map[int]FragmentSet {
	words := strings.Split(normalized, " ")
	w := len(words)
	out := make(map[int]FragmentSet, max(w-1, 0))
	for n := 1; n < w; n++ {
		set := make(FragmentSet, w-n+1)
		for x := 0; x+n <= w; x++ {
			set[strings.Join(words[x:x+n], " ")] = struct{}{}
		}
		out[n] = set
	}
	return out
}
