package overlap

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Fragment is one shared word sequence and the committees using it, oldest
// first.
type Fragment struct {
	Text   string   `json:"fragment"`
	Length int      `json:"-"`
	Names  []string `json:"names"`
}

// OverlapReport holds ranked fragments keyed by word length.
type OverlapReport map[int][]Fragment

// Rank orders each length bucket by how many distinct committees share a
// fragment, most first, breaking ties by fragment text. Names under a
// fragment follow their first appearance in the input list, a stand-in for
// original filing order.
func (idx *Index) Rank() OverlapReport {
	out := make(OverlapReport, len(idx.buckets))
	for n, bucket := range idx.buckets {
		frags := make([]Fragment, 0, len(bucket))
		for text, m := range bucket {
			frags = append(frags, Fragment{Text: text, Length: n, Names: m.ordered()})
		}
		sort.Slice(frags, func(i, j int) bool {
			if len(frags[i].Names) != len(frags[j].Names) {
				return len(frags[i].Names) > len(frags[j].Names)
			}
			return frags[i].Text < frags[j].Text
		})
		out[n] = frags
	}
	return out
}

func (m members) ordered() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if m[names[i]] != m[names[j]] {
			return m[names[i]] < m[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// Lengths returns the report's fragment lengths, ascending.
func (r OverlapReport) Lengths() []int {
	out := make([]int, 0, len(r))
	for n := range r {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Names returns every committee referenced by any fragment.
func (r OverlapReport) Names() map[string]struct{} {
	out := make(map[string]struct{})
	for _, frags := range r {
		for _, f := range frags {
			for _, name := range f.Names {
				out[name] = struct{}{}
			}
		}
	}
	return out
}

// FragmentCount is the number of fragments across all lengths.
func (r OverlapReport) FragmentCount() int {
	total := 0
	for _, frags := range r {
		total += len(frags)
	}
	return total
}

// UnmarshalJSON restores Length on every fragment from its bucket key.
func (r *OverlapReport) UnmarshalJSON(data []byte) error {
	var raw map[string][]Fragment
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(OverlapReport, len(raw))
	for key, frags := range raw {
		n, err := strconv.Atoi(key)
		if err != nil {
			return err
		}
		for i := range frags {
			frags[i].Length = n
		}
		out[n] = frags
	}
	*r = out
	return nil
}
