// Package cluster merges per-read signatures into candidate structural
// variants, one (chrom, svtype) at a time. INS/DEL clustering
// chains on position then subdivides by length similarity; DUP/INV
// clustering chains on interval overlap, grounded on
// github.com/biogo/store/interval's IntTree-based overlap queries used in
// kortschak-ins/cmd/ins/main.go's cullContained; TRA clustering chains on
// breakend position pairs. gonum.org/v1/gonum/stat (the same module
// kortschak-ins and kortschak-loopy depend on, a different subpackage)
// computes the cipos/cilen confidence intervals.
package cluster

import (
	"math"
	"sort"
	"strconv"

	"github.com/kpalin/cutesv-go/internal/config"
	"github.com/kpalin/cutesv-go/internal/signature"
	"gonum.org/v1/gonum/stat"
)

// Candidate is one clustered candidate SV, before genotyping.
type Candidate struct {
	Chrom  string
	SVType signature.Kind
	Pos    int
	End    int // DUP/INV: end. TRA/INS/DEL unused.
	Length int

	SupportingReads []string

	CIPos string
	CILen string

	RepresentativeSeq []byte // INS only
	StrandPair        string // INV only: "++" or "--"

	Chrom2  string            // TRA only
	Pos2    int               // TRA only
	BNDForm signature.BNDForm // TRA only
}

// supportingReadsCap bounds how many distinct read tags a candidate keeps
// before thinning; no concrete cap is specified anywhere, so this is a
// deliberately generous default that only engages for pathologically deep
// clusters.
const supportingReadsCap = 1000

// SizeGate drops candidates outside [min_size, max_size]. TRA candidates
// carry no meaningful length and pass through unfiltered.
func SizeGate(candidates []Candidate, opts *config.Opts) []Candidate {
	out := candidates[:0:0]
	for _, c := range candidates {
		if c.SVType == signature.KindTRA {
			out = append(out, c)
			continue
		}
		if c.Length < opts.MinSize {
			continue
		}
		if opts.MaxSize != -1 && c.Length > opts.MaxSize {
			continue
		}
		out = append(out, c)
	}
	return out
}

// distinctReadTags collects the distinct read_tag values from members,
// deterministically thinning to opts.RemainReadsRatio when the count
// exceeds supportingReadsCap.
func distinctReadTags(members []signature.Signature, opts *config.Opts) []string {
	seen := make(map[string]bool, len(members))
	var tags []string
	for _, m := range members {
		if !seen[m.ReadTag] {
			seen[m.ReadTag] = true
			tags = append(tags, m.ReadTag)
		}
	}
	sort.Strings(tags)
	if len(tags) <= supportingReadsCap || opts.RemainReadsRatio >= 1 {
		return tags
	}
	step := int(math.Ceil(1 / opts.RemainReadsRatio))
	if step < 1 {
		step = 1
	}
	var thinned []string
	for i := 0; i < len(tags); i += step {
		thinned = append(thinned, tags[i])
	}
	return thinned
}

// ciString formats round(1.96*sigma/sqrt(n)) as "-X,X"
// confidence-interval string.
func ciString(values []float64) string {
	n := float64(len(values))
	if n <= 1 {
		return "-0,0"
	}
	sigma := stat.StdDev(values, nil)
	half := int(math.Round(1.96 * sigma / math.Sqrt(n)))
	return formatCI(half)
}

func formatCI(half int) string {
	if half < 0 {
		half = -half
	}
	return "-" + strconv.Itoa(half) + "," + strconv.Itoa(half)
}

func medianInt(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func roundHalfAwayFromZero(v float64) int {
	if v >= 0 {
		return int(math.Floor(v + 0.5))
	}
	return -int(math.Floor(-v + 0.5))
}

func min2(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max2(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
