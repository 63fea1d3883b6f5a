package overlap

import "sort"

// Index maps fragment length to fragment text to the distinct entities
// whose normalized name contains it.
type Index struct {
	buckets map[int]map[string]members
	dupes   []string
}

// members holds the distinct raw names under one fragment, each with the
// position where that name first appeared in the input.
type members map[string]int

// BuildIndex extracts fragments from every entity and keeps only those
// shared by two or more distinct names.
func BuildIndex(entities []Entity) *Index {
	idx := &Index{buckets: make(map[int]map[string]members)}

	firstSeen := make(map[string]int, len(entities))
	flagged := make(map[string]bool)
	for _, nn := range NormalizeAll(entities) {
		first, dup := firstSeen[nn.Source]
		switch {
		case !dup:
			first = nn.Index
			firstSeen[nn.Source] = first
		case !flagged[nn.Source]:
			flagged[nn.Source] = true
			idx.dupes = append(idx.dupes, nn.Source)
		}

		for n, set := range Extract(nn.Text) {
			bucket := idx.buckets[n]
			if bucket == nil {
				bucket = make(map[string]members)
				idx.buckets[n] = bucket
			}
			for frag := range set {
				m := bucket[frag]
				if m == nil {
					m = make(members)
					bucket[frag] = m
				}
				if _, ok := m[nn.Source]; !ok {
					m[nn.Source] = first
				}
			}
		}
	}

	idx.prune()
	return idx
}

// prune drops single-entity fragments and then empty length buckets.
func (idx *Index) prune() {
	for n, bucket := range idx.buckets {
		for frag, m := range bucket {
			if len(m) < 2 {
				delete(bucket, frag)
			}
		}
		if len(bucket) == 0 {
			delete(idx.buckets, n)
		}
	}
}

// Lengths returns the fragment lengths present, ascending.
func (idx *Index) Lengths() []int {
	out := make([]int, 0, len(idx.buckets))
	for n := range idx.buckets {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Duplicates lists raw names that occur more than once in the input, in
// order of their second appearance. Such records share one key downstream.
func (idx *Index) Duplicates() []string {
	return idx.dupes
}
