package sigextract

import (
	"sort"

	"github.com/kpalin/cutesv-go/internal/align"
	"github.com/kpalin/cutesv-go/internal/config"
	"github.com/kpalin/cutesv-go/internal/signature"
)

// segment is one part of a split read, normalized into a single read-offset
// frame: readStart/readEnd are in the original molecule's 5'->3' direction
// regardless of which strand this particular part mapped to, obtained by
// reflecting reverse-strand parts through their own clip lengths. This lets
// every rule below compare segments positionally without re-deriving
// strand each time.
type segment struct {
	chrom              string
	strand             align.Strand
	refStart, refEnd   int
	readStart, readEnd int
}

// buildSegments assembles SP_list: the primary plus every
// SA entry passing min_mapq, sorted ascending by normalized read_start.
func buildSegments(a align.Alignment, minMapQ int) []segment {
	segs := make([]segment, 0, 1+len(a.SA))
	segs = append(segs, segmentFromPrimary(a))
	for _, sa := range a.SA {
		if sa.MapQ < minMapQ {
			continue
		}
		segs = append(segs, segmentFromSA(sa))
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].readStart < segs[j].readStart })
	return segs
}

func clipLens(cigar []align.CigarOp) (left, aligned, right int) {
	n := len(cigar)
	i := 0
	for i < n && (cigar[i].Op == 'S' || cigar[i].Op == 'H') {
		left += cigar[i].Len
		i++
	}
	j := n - 1
	for j >= i && (cigar[j].Op == 'S' || cigar[j].Op == 'H') {
		right += cigar[j].Len
		j--
	}
	for k := i; k <= j; k++ {
		switch cigar[k].Op {
		case 'M', 'I', '=', 'X':
			aligned += cigar[k].Len
		}
	}
	return
}

func segmentFromPrimary(a align.Alignment) segment {
	return normalizeSegment(a.Chrom, a.Strand, a.RefStart, a.RefEnd, a.Cigar)
}

func segmentFromSA(sa align.SAEntry) segment {
	return normalizeSegment(sa.Chrom, sa.Strand, sa.RefStart, sa.RefEnd, sa.Cigar)
}

func normalizeSegment(chrom string, strand align.Strand, refStart, refEnd int, cigar []align.CigarOp) segment {
	left, aligned, right := clipLens(cigar)
	s := segment{chrom: chrom, strand: strand, refStart: refStart, refEnd: refEnd}
	if strand == align.Forward {
		s.readStart, s.readEnd = left, left+aligned
	} else {
		s.readStart, s.readEnd = right, right+aligned
	}
	return s
}

// normalizedQuerySeq returns a's query sequence in the same forward frame
// buildSegments normalizes read offsets into, reverse-complementing when a
// itself mapped to the reverse strand.
func normalizedQuerySeq(a align.Alignment) []byte {
	if a.Strand == align.Reverse {
		return reverseComplement(a.QuerySequence)
	}
	return a.QuerySequence
}

func reverseComplement(seq []byte) []byte {
	if seq == nil {
		return nil
	}
	out := make([]byte, len(seq))
	for i, b := range seq {
		out[len(seq)-1-i] = complementBase(b)
	}
	return out
}

func complementBase(b byte) byte {
	switch b {
	case 'A':
		return 'T'
	case 'T':
		return 'A'
	case 'C':
		return 'G'
	case 'G':
		return 'C'
	case 'a':
		return 't'
	case 't':
		return 'a'
	case 'c':
		return 'g'
	case 'g':
		return 'c'
	default:
		return 'N'
	}
}

func extractSeqWindow(seq []byte, start, end int) []byte {
	if seq == nil {
		return nil
	}
	if start < 0 {
		start = 0
	}
	if end > len(seq) {
		end = len(seq)
	}
	if start >= end {
		return nil
	}
	return seq[start:end]
}

// ExtractSplit dispatches the 2-segment and >=3-segment split-read rules
// over the alignment's SA tag.
func ExtractSplit(a align.Alignment, opts *config.Opts) []signature.Signature {
	if len(a.SA) == 0 {
		return nil
	}
	segs := buildSegments(a, opts.MinMapQ)
	if len(segs) > opts.MaxSplitParts || len(segs) < 2 {
		return nil
	}
	readTag := align.ReadTag(a.Name, a.ReadGroup)
	seq := normalizedQuerySeq(a)
	if len(segs) == 2 {
		return extractPair(segs[0], segs[1], readTag, seq, opts)
	}
	return extractMulti(segs, readTag, seq, opts)
}

func extractPair(e1, e2 segment, readTag string, seq []byte, opts *config.Opts) []signature.Signature {
	if e1.chrom == e2.chrom {
		if e1.strand != e2.strand {
			return invPair(e1, e2, readTag, opts)
		}
		return insDelDupPair(e1, e2, readTag, seq, opts)
	}
	if e2.readStart-e1.readEnd <= 100 {
		return traPair(e1, e2, readTag)
	}
	return nil
}

// invPair is a +- split pair emits a head-to-head INV, a -+
// pair mirrors the rule on ref_start and emits a tail-to-tail INV.
func invPair(e1, e2 segment, readTag string, opts *config.Opts) []signature.Signature {
	svSize := opts.MinSize
	switch {
	case e1.strand == align.Forward && e2.strand == align.Reverse:
		if e1.refEnd-e2.refEnd >= svSize && float64(e2.readStart)+0.5*float64(e1.refEnd-e2.refEnd) >= float64(e1.readEnd) {
			return []signature.Signature{signature.NewINV(e1.chrom, "++", min2(e2.refEnd, e1.refEnd), max2(e2.refEnd, e1.refEnd), readTag)}
		}
		if e2.refEnd-e1.refEnd >= svSize && float64(e1.readStart)+0.5*float64(e2.refEnd-e1.refEnd) >= float64(e2.readEnd) {
			return []signature.Signature{signature.NewINV(e1.chrom, "++", min2(e1.refEnd, e2.refEnd), max2(e1.refEnd, e2.refEnd), readTag)}
		}
	case e1.strand == align.Reverse && e2.strand == align.Forward:
		if e2.refStart-e1.refStart >= svSize && float64(e2.readStart)+0.5*float64(e2.refStart-e1.refStart) >= float64(e1.readEnd) {
			return []signature.Signature{signature.NewINV(e1.chrom, "--", min2(e1.refStart, e2.refStart), max2(e1.refStart, e2.refStart), readTag)}
		}
		if e1.refStart-e2.refStart >= svSize && float64(e1.readStart)+0.5*float64(e1.refStart-e2.refStart) >= float64(e2.readEnd) {
			return []signature.Signature{signature.NewINV(e1.chrom, "--", min2(e1.refStart, e2.refStart), max2(e1.refStart, e2.refStart), readTag)}
		}
	}
	return nil
}

// insDelDupPair implements the same-strand split pair rule.
func insDelDupPair(e1, e2 segment, readTag string, seq []byte, opts *config.Opts) []signature.Signature {
	deltaIns := e2.readStart + e1.refEnd - e2.refStart - e1.readEnd
	deltaDel := e2.refStart - e2.readStart + e1.readEnd - e1.refEnd
	svSize := opts.MinSize

	if e1.refEnd-e2.refStart >= svSize {
		if e2.readStart-e1.readEnd >= e1.refEnd-e2.refStart {
			if deltaIns <= 0 {
				return nil
			}
			pos := (e1.refEnd + e2.refStart) / 2
			s := extractSeqWindow(seq, e1.readEnd, e2.readStart)
			return []signature.Signature{signature.NewINS(e1.chrom, pos, deltaIns, readTag, s)}
		}
		return []signature.Signature{signature.NewDUP(e1.chrom, e2.refStart, e1.refEnd, readTag)}
	}

	insBound := svSize
	if f := deltaIns / 5; f > insBound {
		insBound = f
	}
	if e1.refEnd-e2.refStart < insBound && deltaIns >= svSize {
		gapBound := 100
		if f := deltaIns / 5; f > gapBound {
			gapBound = f
		}
		if e2.refStart-e1.refEnd <= gapBound && (opts.MaxSize == -1 || deltaIns <= opts.MaxSize) {
			pos := (e2.refStart + e1.refEnd) / 2
			s := extractSeqWindow(seq, e1.readEnd, e2.readStart)
			return []signature.Signature{signature.NewINS(e1.chrom, pos, deltaIns, readTag, s)}
		}
	}

	delBound := svSize
	if f := deltaDel / 5; f > delBound {
		delBound = f
	}
	if e1.readEnd-e2.readStart < delBound && deltaDel >= svSize {
		gapBoundDel := 100
		if f := deltaDel / 5; f > gapBoundDel {
			gapBoundDel = f
		}
		if e2.readStart-e1.readEnd <= gapBoundDel {
			return []signature.Signature{signature.NewDEL(e1.chrom, e1.refEnd, deltaDel, readTag)}
		}
	}
	return nil
}

// traPair is breakend-form selection table.
func traPair(e1, e2 segment, readTag string) []signature.Signature {
	form, pos1, chrom2, pos2 := bndFormFor(e1, e2)
	chrom1 := e1.chrom
	if chrom2 == e1.chrom {
		chrom1 = e2.chrom
	}
	return []signature.Signature{signature.NewTRA(chrom1, form, pos1, chrom2, pos2, readTag)}
}

func bndFormFor(e1, e2 segment) (signature.BNDForm, int, string, int) {
	lt := e1.chrom < e2.chrom
	switch {
	case e1.strand == align.Forward && e2.strand == align.Forward:
		if lt {
			return signature.BNDFormA, e1.refEnd, e2.chrom, e2.refStart
		}
		return signature.BNDFormD, e2.refEnd, e1.chrom, e1.refStart
	case e1.strand == align.Forward && e2.strand == align.Reverse:
		if lt {
			return signature.BNDFormB, e1.refEnd, e2.chrom, e2.refEnd
		}
		return signature.BNDFormB, e2.refEnd, e1.chrom, e1.refEnd
	case e1.strand == align.Reverse && e2.strand == align.Forward:
		if lt {
			return signature.BNDFormC, e1.refStart, e2.chrom, e2.refStart
		}
		return signature.BNDFormC, e2.refStart, e1.chrom, e1.refStart
	default: // -,-
		if lt {
			return signature.BNDFormD, e1.refStart, e2.chrom, e2.refEnd
		}
		return signature.BNDFormA, e2.refStart, e1.chrom, e1.refEnd
	}
}

// extractMulti handles the >=3-segment slide: a triple window
// (e1,e2,e3) advanced across SP_list, followed by a whole-read first/last
// check. The last triple has possible off-by-one behaviour in the original
// source this rule is transliterated from; this keeps the literal
// computation rather than guessing at intended behaviour.
func extractMulti(segs []segment, readTag string, seq []byte, opts *config.Opts) []signature.Signature {
	var out []signature.Signature
	n := len(segs)
	for a := 0; a+2 < n; a++ {
		e1, e2, e3 := segs[a], segs[a+1], segs[a+2]
		first := a == 0
		last := a+3 == n
		sameChrom := e1.chrom == e2.chrom && e2.chrom == e3.chrom

		switch {
		case sameChrom && e1.strand == align.Forward && e2.strand == align.Reverse && e3.strand == align.Forward:
			if e2.readStart >= e1.readEnd && e3.readStart >= e2.readEnd {
				out = append(out, signature.NewINV(e1.chrom, "++", min2(e1.refEnd, e2.refEnd), max2(e1.refEnd, e2.refEnd), readTag))
				out = append(out, signature.NewINV(e1.chrom, "--", min2(e2.refStart, e3.refStart), max2(e2.refStart, e3.refStart), readTag))
			}
		case sameChrom && e1.strand == align.Reverse && e2.strand == align.Forward && e3.strand == align.Reverse:
			if e2.readStart >= e1.readEnd && e3.readStart >= e2.readEnd {
				out = append(out, signature.NewINV(e1.chrom, "--", min2(e1.refEnd, e2.refEnd), max2(e1.refEnd, e2.refEnd), readTag))
				out = append(out, signature.NewINV(e1.chrom, "++", min2(e2.refStart, e3.refStart), max2(e2.refStart, e3.refStart), readTag))
			}
		case sameChrom && e1.strand == e2.strand && e2.strand == e3.strand:
			out = append(out, insDelDupPair(e1, e2, readTag, seq, opts)...)
			if e2.refEnd-e3.refStart >= opts.MinSize && e2.refStart < e3.refEnd {
				out = append(out, signature.NewDUP(e1.chrom, e3.refStart, e2.refEnd, readTag))
			}
			if first && e1.refEnd-e2.refStart >= opts.MinSize {
				out = append(out, signature.NewDUP(e1.chrom, e2.refStart, e1.refEnd, readTag))
			}
			if last {
				out = append(out, insDelDupPair(e2, e3, readTag, seq, opts)...)
			}
		default:
			if e1.chrom != e2.chrom {
				out = append(out, traPair(e1, e2, readTag)...)
			}
			if last && e2.chrom != e3.chrom {
				out = append(out, traPair(e2, e3, readTag)...)
			}
		}
	}

	first, last := segs[0], segs[n-1]
	if first.chrom == last.chrom && first.strand == last.strand {
		disRef := last.refStart - first.refEnd
		disRead := last.readStart - first.readEnd
		switch {
		case disRef < 100 && disRead-disRef >= opts.MinSize && (opts.MaxSize == -1 || disRead-disRef <= opts.MaxSize):
			pos := min2(first.refEnd, last.refStart)
			out = append(out, signature.NewINS(first.chrom, pos, disRead-disRef, readTag, nil))
		case disRef <= -opts.MinSize:
			out = append(out, signature.NewDUP(first.chrom, last.refStart, first.refEnd, readTag))
		}
	}
	return out
}
