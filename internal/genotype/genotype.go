// Package genotype computes per-candidate read depth (DR, DV) and the
// phred-scaled genotype call (GT, PL, GQ, QUAL).
// overlapCover is a single sweep over position-and-event-kind sorted
// (candidate, read) events, grounded on the same chrom-scoped single-pass
// style pileup/snp/pileup.go uses to fold per-base coverage across a BAM
// region. CoverageBound runs ahead of that sweep to decide whether the
// region's coverage is worth scanning in full.
package genotype

import (
	"math"
	"sort"

	"github.com/kpalin/cutesv-go/internal/cluster"
	"github.com/kpalin/cutesv-go/internal/config"
	"github.com/kpalin/cutesv-go/internal/signature"
)

// Call is a cluster.Candidate extended with the genotype fields that make
// up a "Genotyped SV".
type Call struct {
	cluster.Candidate

	DR   int
	DV   int
	GT   string
	PL   [3]int // order: 0/0, 0/1, 1/1
	GQ   int
	QUAL float64 // NaN signals "." (genotype underflow)
}

const (
	epsilon = 0.1
	prior   = 1.0 / 3.0
)

// plCeiling bounds PL/GQ when a normalized likelihood underflows to exactly
// zero; no concrete cap is named anywhere, so this is a generous ceiling
// that still fits comfortably in the PL column in practice.
const plCeiling = 10000

// Sweep event kinds, "four event kinds {sv_left=3, sv_right=0,
// read_left=1, read_right=2}" so that, at equal positions, a candidate's
// right boundary closes before any read opens or closes, and any read
// activity at a position resolves before the candidate's left boundary
// opens.
const (
	evSvRight   = 0
	evReadLeft  = 1
	evReadRight = 2
	evSvLeft    = 3
)

// candidateSpan returns the [left, right) interval a candidate's coverage
// is measured against. INS and TRA are logically point events; they get a
// unit-width interval so a spanning read only needs to bracket the
// breakpoint itself.
func candidateSpan(c cluster.Candidate) (left, right int) {
	switch c.SVType {
	case signature.KindDEL:
		return c.Pos, c.Pos + c.Length
	case signature.KindDUP, signature.KindINV:
		return c.Pos, c.End
	default: // INS, TRA
		return c.Pos, c.Pos + 1
	}
}

// overlapCover returns the indices into reads whose interval fully
// brackets [left, right): those open at left and still open at right.
func overlapCover(left, right int, reads []signature.ReadDescriptor) []int {
	type event struct {
		pos     int
		kind    int
		readIdx int
	}
	events := make([]event, 0, 2*len(reads)+2)
	events = append(events, event{pos: left, kind: evSvLeft, readIdx: -1})
	events = append(events, event{pos: right, kind: evSvRight, readIdx: -1})
	for i, r := range reads {
		events = append(events, event{pos: r.RefStart, kind: evReadLeft, readIdx: i})
		events = append(events, event{pos: r.RefEnd, kind: evReadRight, readIdx: i})
	}
	sort.SliceStable(events, func(a, b int) bool {
		if events[a].pos != events[b].pos {
			return events[a].pos < events[b].pos
		}
		return events[a].kind < events[b].kind
	})

	open := make(map[int]bool)
	var openAtLeft []int
	for _, e := range events {
		switch e.kind {
		case evReadLeft:
			open[e.readIdx] = true
		case evReadRight:
			delete(open, e.readIdx)
		case evSvLeft:
			openAtLeft = openAtLeft[:0]
			for k := range open {
				openAtLeft = append(openAtLeft, k)
			}
			sort.Ints(openAtLeft)
		case evSvRight:
			var spanning []int
			for _, k := range openAtLeft {
				if open[k] {
					spanning = append(spanning, k)
				}
			}
			return spanning
		}
	}
	return nil
}

// CoverageBound realizes count_coverage's early-exit classification
// (cuteSV_genotype.py:82-103): scanning reads in reference-position order
// over [left, right), it stops once either upBound primary reads spanning
// the whole interval have been found, or itround reads have been
// inspected. In the itround case the stop is classified by the fraction of
// inspected reads that are primary alignments: status 1 when that fraction
// is at or below 0.2 (coverage here is mostly secondary/supplementary, not
// worth scanning further) or upBound was reached, -1 when itround was
// reached with healthy primary coverage, 0 when fewer than itround reads
// overlap at all (no early exit applies). bound is how far into ordered
// the scan got; a caller consulting status != 0 can limit the rest of its
// work to ordered[:bound].
func CoverageBound(left, right int, reads []signature.ReadDescriptor, upBound, itround int) (status, bound int, ordered []signature.ReadDescriptor) {
	ordered = append([]signature.ReadDescriptor(nil), reads...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].RefStart < ordered[j].RefStart })

	iteration := 0
	primaryNum := 0
	spanning := 0
	for i, r := range ordered {
		if r.RefStart >= right {
			break
		}
		if r.RefEnd <= left {
			continue
		}
		iteration++
		if r.IsPrimary {
			primaryNum++
			if r.RefStart < left && r.RefEnd > right {
				spanning++
				if spanning >= upBound {
					return 1, i + 1, ordered
				}
			}
		}
		if iteration >= itround {
			if float64(primaryNum)/float64(iteration) <= 0.2 {
				return 1, i + 1, ordered
			}
			return -1, i + 1, ordered
		}
	}
	return 0, len(ordered), ordered
}

// Genotype computes DR/DV and the genotype call for one candidate, given
// the read descriptors covering its window (the orchestrator collects
// these per chromosome during extraction, primary and non-primary alike).
func Genotype(c cluster.Candidate, reads []signature.ReadDescriptor, opts *config.Opts) Call {
	supporting := make(map[string]bool, len(c.SupportingReads))
	for _, tag := range c.SupportingReads {
		supporting[tag] = true
	}

	left, right := candidateSpan(c)
	threshold := config.ThresholdRefCount(opts.MinSupport)

	status, bound, ordered := CoverageBound(left, right, reads, threshold, opts.GtRound)
	scope := reads
	if status != 0 {
		scope = ordered[:bound]
	}
	scanReads := make([]signature.ReadDescriptor, 0, len(scope))
	for _, r := range scope {
		if r.IsPrimary {
			scanReads = append(scanReads, r)
		}
	}
	spanning := overlapCover(left, right, scanReads)

	dr := 0
	for _, idx := range spanning {
		if supporting[scanReads[idx].ReadTag] {
			continue
		}
		dr++
		if dr+len(supporting) > threshold {
			break // highly-supported candidates may short-circuit exact counting
		}
	}

	call := Call{Candidate: c, DR: dr, DV: len(supporting)}
	applyLikelihoods(&call)
	return call
}

func applyLikelihoods(call *Call) {
	c0, c1 := rescale(call.DR, call.DV)
	l00 := math.Pow(1-epsilon, c0) * math.Pow(epsilon, c1) * (1 - prior) / 2
	l11 := math.Pow(epsilon, c0) * math.Pow(1-epsilon, c1) * (1 - prior) / 2
	l01 := math.Pow(0.5, c0+c1) * prior

	norm, underflow := normalizeLog10([3]float64{l00, l01, l11})
	if underflow {
		call.GT = "./."
		call.QUAL = math.NaN()
		call.PL = [3]int{plCeiling, plCeiling, plCeiling}
		call.GQ = 0
		return
	}

	// Tie-break priority: 0/0, then 0/1, then 1/1.
	best := 0
	for i := 1; i < 3; i++ {
		if norm[i] > norm[best] {
			best = i
		}
	}
	gtNames := [3]string{"0/0", "0/1", "1/1"}
	call.GT = gtNames[best]

	for i, n := range norm {
		call.PL[i] = phred(n)
	}

	otherSum := 0.0
	for i, n := range norm {
		if i != best {
			otherSum += n
		}
	}
	call.GQ = phredSum(otherSum)

	call.QUAL = roundTo(math.Abs(phredF(norm[0])), 1)
}

// rescale preserves the c0:c1 ratio while keeping c0+c1 <= 100, so the
// likelihood powers never underflow float64 on deep clusters.
func rescale(dr, dv int) (c0, c1 float64) {
	total := float64(dr + dv)
	if total <= 100 || total == 0 {
		return float64(dr), float64(dv)
	}
	scale := 100 / total
	return float64(dr) * scale, float64(dv) * scale
}

// normalizeLog10 normalizes three likelihoods in log10-space via a
// log-sum-exp reduction, so a run of very small likelihoods doesn't
// underflow to all-zero before the ratios between them can be compared.
// underflow is true only when every input likelihood is exactly zero.
func normalizeLog10(ls [3]float64) (norm [3]float64, underflow bool) {
	var logs [3]float64
	anyPositive := false
	for i, l := range ls {
		if l > 0 {
			logs[i] = math.Log10(l)
			anyPositive = true
		} else {
			logs[i] = math.Inf(-1)
		}
	}
	if !anyPositive {
		return norm, true
	}
	maxLog := logs[0]
	for _, l := range logs[1:] {
		if l > maxLog {
			maxLog = l
		}
	}
	sum := 0.0
	for _, l := range logs {
		if !math.IsInf(l, -1) {
			sum += math.Pow(10, l-maxLog)
		}
	}
	logSum := maxLog + math.Log10(sum)
	for i, l := range logs {
		if math.IsInf(l, -1) {
			norm[i] = 0
		} else {
			norm[i] = math.Pow(10, l-logSum)
		}
	}
	return norm, false
}

func phred(normalized float64) int {
	return int(math.Round(phredF(normalized)))
}

func phredF(normalized float64) float64 {
	if normalized <= 0 {
		return plCeiling
	}
	return -10 * math.Log10(normalized)
}

func phredSum(normalizedSum float64) int {
	if normalizedSum <= 0 {
		return plCeiling
	}
	return int(math.Round(-10 * math.Log10(normalizedSum)))
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
