package cluster

import (
	"sort"

	"github.com/biogo/store/interval"

	"github.com/kpalin/cutesv-go/internal/config"
	"github.com/kpalin/cutesv-go/internal/signature"
)

// dupInvInterval adapts a padded signature span to biogo/store/interval's
// IntTree value contract, grounded on kortschak-ins/cmd/ins/main.go's
// subjectInterval and kortschak-loopy/cmd/rinse/rinse.go's gffInterval.
type dupInvInterval struct {
	id  uintptr
	s   signature.Signature
	pad int
}

func (d dupInvInterval) ID() uintptr { return d.id }

func (d dupInvInterval) Range() interval.IntRange {
	return interval.IntRange{Start: d.s.Pos - d.pad, End: d.s.End + d.pad}
}

// Overlap mirrors gffInterval.Overlap's half-open interval indexing.
func (d dupInvInterval) Overlap(b interval.IntRange) bool {
	return d.s.End+d.pad > b.Start && d.s.Pos-d.pad < b.End
}

// ClusterDupInv groups same-chromosome DUP or INV signatures into candidate
// SVs by interval overlap. INV signatures first split by
// strand pair ("++" vs "--"); within each strand-pair group (DUP has none),
// members padded by max_cluster_bias[svtype] are clustered into the
// connected components of their overlap graph, queried via an
// interval.IntTree the way cullContained builds one IntTree per hit set.
func ClusterDupInv(sigs []signature.Signature, kind signature.Kind, opts *config.Opts) []Candidate {
	if len(sigs) == 0 {
		return nil
	}
	bias := opts.MaxClusterBias(string(kind))

	groups := map[string][]signature.Signature{}
	var keys []string
	for _, s := range sigs {
		key := ""
		if kind == signature.KindINV {
			key = s.StrandPair
		}
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], s)
	}
	sort.Strings(keys)

	var out []Candidate
	for _, key := range keys {
		for _, members := range connectedByOverlap(groups[key], bias) {
			if c, ok := buildDupInvCandidate(members, kind, key, opts); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// connectedByOverlap partitions members into the connected components of
// their padded-interval overlap graph. All members are inserted into one
// interval.IntTree, then each member's own Get query links it to every
// overlapping neighbor; union-find collapses those links into components.
func connectedByOverlap(members []signature.Signature, bias int) [][]signature.Signature {
	var tree interval.IntTree
	ivs := make([]dupInvInterval, len(members))
	for i, s := range members {
		ivs[i] = dupInvInterval{id: uintptr(i), s: s, pad: bias}
		if err := tree.Insert(ivs[i], true); err != nil {
			panic(err)
		}
	}
	tree.AdjustRanges()

	parent := make([]int, len(members))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}
	for i, iv := range ivs {
		for _, hit := range tree.Get(iv) {
			union(i, int(hit.ID()))
		}
	}

	byRoot := map[int][]signature.Signature{}
	var roots []int
	for i, s := range members {
		r := find(i)
		if _, ok := byRoot[r]; !ok {
			roots = append(roots, r)
		}
		byRoot[r] = append(byRoot[r], s)
	}
	sort.Ints(roots)

	clusters := make([][]signature.Signature, len(roots))
	for idx, r := range roots {
		cluster := byRoot[r]
		sort.SliceStable(cluster, func(i, j int) bool { return cluster[i].Pos < cluster[j].Pos })
		clusters[idx] = cluster
	}
	return clusters
}

func buildDupInvCandidate(members []signature.Signature, kind signature.Kind, strandPair string, opts *config.Opts) (Candidate, bool) {
	reads := distinctReadTags(members, opts)
	if len(reads) < opts.MinSupport {
		return Candidate{}, false
	}

	starts := make([]int, len(members))
	ends := make([]int, len(members))
	for i, m := range members {
		starts[i] = m.Pos
		ends[i] = m.End
	}
	start := minInt(starts)
	medStart := medianInt(starts)
	medEnd := medianInt(ends)
	length := medEnd - medStart

	c := Candidate{
		Chrom:           members[0].Chrom,
		SVType:          kind,
		Pos:             start,
		End:             start + length,
		Length:          length,
		SupportingReads: reads,
		CIPos:           "-0,0",
		CILen:           "-0,0",
		StrandPair:      strandPair,
	}
	return c, true
}

func minInt(values []int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
