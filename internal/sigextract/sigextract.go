// Package sigextract turns one primary alignment into zero or more
// signature.Signature values: in-alignment CIGAR operations
// and, when the read is split across an SA tag, the segment-geometry rules
// for INS/DEL/DUP/INV/TRA. It is the densest package in the caller and
// depends only on internal/align, internal/config and internal/signature.
package sigextract

import (
	"github.com/kpalin/cutesv-go/internal/align"
	"github.com/kpalin/cutesv-go/internal/config"
	"github.com/kpalin/cutesv-go/internal/signature"
)

// Extract runs the gates, then the in-alignment walk, then (if an SA tag is
// present) the split-read geometry, returning every signature this one
// alignment contributes.
func Extract(a align.Alignment, opts *config.Opts) []signature.Signature {
	if !Gate(a, opts) {
		return nil
	}
	var sigs []signature.Signature
	sigs = append(sigs, ExtractInAlignment(a, opts)...)
	sigs = append(sigs, ExtractSplit(a, opts)...)
	return sigs
}

// Gate reports whether a is eligible for signature emission at all. A read
// failing any check here contributes nothing, not even partial signatures.
func Gate(a align.Alignment, opts *config.Opts) bool {
	if a.QueryLength < opts.MinReadLen {
		return false
	}
	if a.MapQ < opts.MinMapQ {
		return false
	}
	if isFalse1d2Chimera(a, opts.MinMapQ) {
		return false
	}
	return true
}

// isFalse1d2Chimera reports the "false 1d2 chimera" condition: a
// supplementary alignment on the same chromosome, opposite strand,
// with a shorter reference span that overlaps the primary over at least 95%
// of that shorter span. Reads meeting this are artifacts of one physical
// locus aligned twice, not evidence of a real rearrangement.
func isFalse1d2Chimera(a align.Alignment, minMapQ int) bool {
	primarySpan := a.RefEnd - a.RefStart
	for _, sa := range a.SA {
		if sa.MapQ < minMapQ || sa.Chrom != a.Chrom || sa.Strand == a.Strand {
			continue
		}
		saSpan := sa.RefEnd - sa.RefStart
		if saSpan <= 0 || saSpan >= primarySpan {
			continue
		}
		overlap := min2(a.RefEnd, sa.RefEnd) - max2(a.RefStart, sa.RefStart)
		if overlap <= 0 {
			continue
		}
		if float64(overlap) >= 0.95*float64(saSpan) {
			return true
		}
	}
	return false
}

// ExtractInAlignment walks a's CIGAR emitting INS/DEL signals for operations
// at least opts.MinSigLength long, then merges
// consecutive same-type signals whose gap is within the configured
// threshold.
func ExtractInAlignment(a align.Alignment, opts *config.Opts) []signature.Signature {
	var sigs []signature.Signature
	refOff, readOff := 0, 0
	leftClip := 0
	if len(a.Cigar) > 0 && (a.Cigar[0].Op == 'S' || a.Cigar[0].Op == 'H') {
		leftClip = a.Cigar[0].Len
	}
	readTag := align.ReadTag(a.Name, a.ReadGroup)
	for _, op := range a.Cigar {
		switch op.Op {
		case 'D':
			if op.Len >= opts.MinSigLength {
				sigs = append(sigs, signature.NewDEL(a.Chrom, a.RefStart+refOff, op.Len, readTag))
			}
			refOff += op.Len
		case 'I':
			if op.Len >= opts.MinSigLength {
				start := readOff - leftClip
				end := start + op.Len
				var seq []byte
				if a.QuerySequence != nil && start >= 0 && end <= len(a.QuerySequence) {
					seq = a.QuerySequence[start:end]
				}
				sigs = append(sigs, signature.NewINS(a.Chrom, a.RefStart+refOff, op.Len, readTag, seq))
			}
			readOff += op.Len
		case 'M', '=', 'X':
			refOff += op.Len
			readOff += op.Len
		case 'S':
			readOff += op.Len
		case 'N':
			refOff += op.Len
		}
	}
	return mergeSameRead(sigs, opts)
}

// mergeSameRead collapses consecutive same-kind INS/DEL signals whose
// nearest-neighbour gap is within the configured merge threshold, per
// "same-read merging" rule: summed length, concatenated
// sequence, representative position is the last member's for INS and the
// first member's for DEL.
func mergeSameRead(sigs []signature.Signature, opts *config.Opts) []signature.Signature {
	if len(sigs) == 0 {
		return sigs
	}
	out := make([]signature.Signature, 0, len(sigs))
	acc := sigs[0]
	for _, next := range sigs[1:] {
		if acc.Kind != next.Kind || (acc.Kind != signature.KindINS && acc.Kind != signature.KindDEL) {
			out = append(out, acc)
			acc = next
			continue
		}
		var gap, threshold int
		if acc.Kind == signature.KindDEL {
			threshold = opts.MergeDelThreshold
			gap = next.Pos - (acc.Pos + acc.Length)
		} else {
			threshold = opts.MergeInsThreshold
			gap = next.Pos - acc.Pos
		}
		if gap <= threshold {
			acc.Length += next.Length
			if acc.Kind == signature.KindINS {
				merged := make([]byte, 0, len(acc.InsertedSeq)+len(next.InsertedSeq))
				merged = append(merged, acc.InsertedSeq...)
				merged = append(merged, next.InsertedSeq...)
				acc.InsertedSeq = merged
				acc.Pos = next.Pos
			}
			continue
		}
		out = append(out, acc)
		acc = next
	}
	out = append(out, acc)
	return out
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
