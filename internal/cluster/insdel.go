package cluster

import (
	"sort"

	"github.com/kpalin/cutesv-go/internal/config"
	"github.com/kpalin/cutesv-go/internal/signature"
)

// ClusterInsDel groups same-chromosome, same-kind INS or DEL signatures into
// candidate SVs. Signatures chain into a position cluster
// while consecutive positions are within max_cluster_bias[svtype] of each
// other; each position cluster is then subdivided on length similarity.
func ClusterInsDel(sigs []signature.Signature, kind signature.Kind, opts *config.Opts) []Candidate {
	if len(sigs) == 0 {
		return nil
	}
	sorted := append([]signature.Signature(nil), sigs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Pos < sorted[j].Pos })

	bias := opts.MaxClusterBias(string(kind))
	var out []Candidate
	start := 0
	for start < len(sorted) {
		end := start + 1
		for end < len(sorted) && sorted[end].Pos-sorted[end-1].Pos <= bias {
			end++
		}
		out = append(out, subClusterByLength(sorted[start:end], kind, opts)...)
		start = end
	}
	return out
}

// subClusterByLength splits one position cluster into sub-clusters by
// chaining in length order: two signatures adjacent in that order belong
// together when min(l1,l2)/max(l1,l2) >= 1 - diff_ratio_merging[svtype],
// so the ends of one chain need not meet that ratio with each other.
func subClusterByLength(members []signature.Signature, kind signature.Kind, opts *config.Opts) []Candidate {
	sorted := append([]signature.Signature(nil), members...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Length < sorted[j].Length })

	minRatio := 1 - opts.DiffRatioMerging(string(kind))
	var out []Candidate
	start := 0
	for start < len(sorted) {
		end := start + 1
		for end < len(sorted) && lengthRatio(sorted[end-1].Length, sorted[end].Length) >= minRatio {
			end++
		}
		if c, ok := buildInsDelCandidate(sorted[start:end], kind, opts); ok {
			out = append(out, c)
		}
		start = end
	}
	return out
}

func lengthRatio(a, b int) float64 {
	mn, mx := a, b
	if mn > mx {
		mn, mx = mx, mn
	}
	if mx == 0 {
		return 1
	}
	return float64(mn) / float64(mx)
}

// buildInsDelCandidate reduces one length-homogeneous sub-cluster to a
// single Candidate, : pos is the mean of member
// positions, length the median of member lengths, representative_seq (INS
// only) the inserted sequence of the member whose length is nearest the
// median.
func buildInsDelCandidate(members []signature.Signature, kind signature.Kind, opts *config.Opts) (Candidate, bool) {
	reads := distinctReadTags(members, opts)
	if len(reads) < opts.MinSupport {
		return Candidate{}, false
	}

	positions := make([]float64, len(members))
	lengths := make([]int, len(members))
	lengthsF := make([]float64, len(members))
	for i, m := range members {
		positions[i] = float64(m.Pos)
		lengths[i] = m.Length
		lengthsF[i] = float64(m.Length)
	}
	pos := roundHalfAwayFromZero(mean(positions))
	length := medianInt(lengths)

	c := Candidate{
		Chrom:           members[0].Chrom,
		SVType:          kind,
		Pos:             pos,
		Length:          length,
		SupportingReads: reads,
		CIPos:           ciString(positions),
		CILen:           ciString(lengthsF),
	}
	if kind == signature.KindINS {
		c.RepresentativeSeq = representativeSeq(members, length)
	}
	return c, true
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// representativeSeq picks the inserted sequence of the member whose length
// is closest to the cluster's median length, breaking ties toward the
// first such member encountered.
func representativeSeq(members []signature.Signature, medianLength int) []byte {
	best := -1
	bestDist := -1
	for i, m := range members {
		d := absInt(m.Length - medianLength)
		if bestDist == -1 || d < bestDist {
			bestDist = d
			best = i
		}
	}
	if best == -1 {
		return nil
	}
	return members[best].InsertedSeq
}
