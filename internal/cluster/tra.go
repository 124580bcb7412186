package cluster

import (
	"sort"

	"github.com/kpalin/cutesv-go/internal/config"
	"github.com/kpalin/cutesv-go/internal/signature"
)

// ClusterTra groups breakend signatures into candidate TRA calls. The
// caller is responsible for invoking this once per ordered
// (chrom1, chrom2) pair; every signature passed in must share that pair.
// Signatures first split by bnd_form, then chain into a cluster on pos1
// with bias max_cluster_bias["TRA"], requiring pos2 stay within the same
// bias of the cluster's running mean pos2. A cluster is kept only if its
// read-gap distribution (the spread of member pos1 around the cluster mean,
// relative to its own maximum) passes diff_ratio_filtering_TRA -- the raw
// per-read split-gap used during signature extraction is not retained on
// Signature, so positional spread is the best available proxy for it here.
func ClusterTra(sigs []signature.Signature, opts *config.Opts) []Candidate {
	if len(sigs) == 0 {
		return nil
	}
	bias := opts.MaxClusterBiasTra

	groups := map[signature.BNDForm][]signature.Signature{}
	var forms []signature.BNDForm
	for _, s := range sigs {
		if _, ok := groups[s.BNDForm]; !ok {
			forms = append(forms, s.BNDForm)
		}
		groups[s.BNDForm] = append(groups[s.BNDForm], s)
	}
	sort.Slice(forms, func(i, j int) bool { return forms[i] < forms[j] })

	var out []Candidate
	for _, form := range forms {
		members := groups[form]
		sort.SliceStable(members, func(i, j int) bool { return members[i].Pos < members[j].Pos })

		var cluster []signature.Signature
		flush := func() {
			if c, ok := buildTraCandidate(cluster, form, opts); ok {
				out = append(out, c)
			}
			cluster = nil
		}
		for _, s := range members {
			if len(cluster) == 0 {
				cluster = append(cluster, s)
				continue
			}
			last := cluster[len(cluster)-1]
			meanPos2 := roundHalfAwayFromZero(meanPos2Of(cluster))
			if s.Pos-last.Pos <= bias && absInt(s.Pos2-meanPos2) <= bias {
				cluster = append(cluster, s)
			} else {
				flush()
				cluster = append(cluster, s)
			}
		}
		flush()
	}
	return out
}

func meanPos2Of(cluster []signature.Signature) float64 {
	var sum float64
	for _, s := range cluster {
		sum += float64(s.Pos2)
	}
	return sum / float64(len(cluster))
}

func buildTraCandidate(members []signature.Signature, form signature.BNDForm, opts *config.Opts) (Candidate, bool) {
	if !passesGapFilter(members, opts.DiffRatioFilteringTra) {
		return Candidate{}, false
	}
	reads := distinctReadTags(members, opts)
	if len(reads) < opts.MinSupport {
		return Candidate{}, false
	}

	positions := make([]int, len(members))
	pos2s := make([]int, len(members))
	for i, m := range members {
		positions[i] = m.Pos
		pos2s[i] = m.Pos2
	}
	c := Candidate{
		Chrom:           members[0].Chrom,
		SVType:          signature.KindTRA,
		Pos:             medianInt(positions),
		SupportingReads: reads,
		CIPos:           "-0,0",
		CILen:           "-0,0",
		Chrom2:          members[0].Chrom2,
		Pos2:            medianInt(pos2s),
		BNDForm:         form,
	}
	return c, true
}

// passesGapFilter implements the median/max spread-ratio test on each
// member's distance from the mean position: a cluster whose members all
// land on the same coordinate passes trivially; otherwise the median
// distance must be at least minRatio of the largest one, so a cluster with
// a long thin tail of outliers does not pass.
func passesGapFilter(members []signature.Signature, minRatio float64) bool {
	if len(members) <= 1 {
		return true
	}
	meanPos := meanPosOf(members)
	gaps := make([]int, len(members))
	for i, m := range members {
		gaps[i] = absInt(m.Pos - meanPos)
	}
	maxGap := gaps[0]
	for _, g := range gaps[1:] {
		if g > maxGap {
			maxGap = g
		}
	}
	if maxGap == 0 {
		return true
	}
	ratio := float64(medianInt(gaps)) / float64(maxGap)
	return ratio >= minRatio
}

func meanPosOf(members []signature.Signature) int {
	var sum int
	for _, m := range members {
		sum += m.Pos
	}
	return sum / len(members)
}
