// Package vcfwrite renders genotyped candidates as the tabular variant file
// format. Column writing is grounded on pileup/snp/output.go's
// use of github.com/grailbio/base/tsv.Writer for TSV output; VCF is
// column-for-column a TSV format, so the same writer serves both.
package vcfwrite

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/grailbio/base/tsv"
	"github.com/kpalin/cutesv-go/internal/config"
	"github.com/kpalin/cutesv-go/internal/genotype"
	"github.com/kpalin/cutesv-go/internal/signature"
)

// ReferenceBases looks up single reference bases for the REF column and
// breakend ALT notation, via byte-indexed access to an indexed reference.
type ReferenceBases interface {
	Base(chrom string, pos int) (byte, error)
}

// Writer emits one VCF data line per genotyped call, maintaining the
// per-type ID counters used to build each call's ID ("cuteSV.<TYPE>.<n>").
type Writer struct {
	tsv      *tsv.Writer
	ref      ReferenceBases
	opts     *config.Opts
	counters map[signature.Kind]int
}

// NewWriter wraps out for call-by-call VCF data line emission. ref may be
// nil, in which case REF columns and breakend anchor bases fall back to "N".
func NewWriter(out io.Writer, ref ReferenceBases, opts *config.Opts) *Writer {
	return &Writer{
		tsv:      tsv.NewWriter(out),
		ref:      ref,
		opts:     opts,
		counters: make(map[signature.Kind]int),
	}
}

func (w *Writer) refBase(chrom string, pos int) byte {
	if w.ref == nil {
		return 'N'
	}
	b, err := w.ref.Base(chrom, pos)
	if err != nil {
		return 'N'
	}
	return b
}

func (w *Writer) nextID(kind signature.Kind) string {
	n := w.counters[kind]
	w.counters[kind] = n + 1
	return fmt.Sprintf("cuteSV.%s.%d", kind, n)
}

// WriteCall renders one genotyped call as a VCF data line.
func (w *Writer) WriteCall(call genotype.Call) error {
	pos1 := call.Pos + 1 // 0-based internally, 1-based in text
	refBase := w.refBase(call.Chrom, call.Pos)

	id := w.nextID(call.SVType)
	ref, alt := w.refAlt(call, refBase)
	qual := "."
	filter := "PASS"
	if !math.IsNaN(call.QUAL) {
		qual = strconv.FormatFloat(call.QUAL, 'f', 1, 64)
		if call.QUAL < 5.0 {
			filter = "q5"
		}
	}

	w.tsv.WriteString(call.Chrom)
	w.tsv.WriteUint32(uint32(pos1))
	w.tsv.WriteString(id)
	w.tsv.WriteString(ref)
	w.tsv.WriteString(alt)
	w.tsv.WriteString(qual)
	w.tsv.WriteString(filter)
	w.tsv.WriteString(w.info(call))
	w.tsv.WriteString("GT:DR:DV:PL:GQ")
	w.tsv.WriteString(sampleColumn(call))
	return w.tsv.EndLine()
}

func (w *Writer) refAlt(call genotype.Call, refBase byte) (ref, alt string) {
	switch call.SVType {
	case signature.KindINS:
		return string(refBase), string(call.RepresentativeSeq)
	case signature.KindDEL:
		return string(refBase), "<DEL>"
	case signature.KindDUP:
		return string(refBase), "<DUP>"
	case signature.KindINV:
		return string(refBase), "<INV>"
	case signature.KindTRA:
		return string(refBase), breakendAlt(call, refBase)
	default:
		return string(refBase), "."
	}
}

// breakendAlt renders the bracketed breakend notation for the four BND
// forms: A: N[chr:pos[, B: N]chr:pos], C: [chr:pos[N, D: ]chr:pos]N.
func breakendAlt(call genotype.Call, refBase byte) string {
	mate := fmt.Sprintf("%s:%d", call.Chrom2, call.Pos2+1)
	n := string(refBase)
	switch call.BNDForm {
	case signature.BNDFormA:
		return n + "[" + mate + "["
	case signature.BNDFormB:
		return n + "]" + mate + "]"
	case signature.BNDFormC:
		return "[" + mate + "[" + n
	case signature.BNDFormD:
		return "]" + mate + "]" + n
	default:
		return "."
	}
}

func (w *Writer) info(call genotype.Call) string {
	var fields []string
	fields = append(fields, "SVTYPE="+string(call.SVType))
	if call.SVType != signature.KindTRA {
		svlen := call.Length
		if call.SVType == signature.KindDEL {
			svlen = -svlen
		}
		fields = append(fields, fmt.Sprintf("SVLEN=%d", svlen))
		fields = append(fields, fmt.Sprintf("END=%d", endColumn(call)))
	}
	fields = append(fields, "CIPOS="+call.CIPos)
	fields = append(fields, "CILEN="+call.CILen)
	fields = append(fields, fmt.Sprintf("RE=%d", call.DV))
	if w.opts.ReportReadID {
		fields = append(fields, "RNAMES="+rnames(call.SupportingReads))
	}
	if call.SVType == signature.KindINV {
		fields = append(fields, "STRAND="+call.StrandPair)
	}
	if total := call.DR + call.DV; total > 0 {
		fields = append(fields, fmt.Sprintf("AF=%.4f", float64(call.DV)/float64(total)))
	}
	if call.CIPos == "-0,0" && call.CILen == "-0,0" {
		fields = append(fields, "PRECISION=PRECISE")
	} else {
		fields = append(fields, "PRECISION=IMPRECISE")
	}
	return strings.Join(fields, ";")
}

func endColumn(call genotype.Call) int {
	switch call.SVType {
	case signature.KindDUP, signature.KindINV:
		return call.End + 1
	default:
		return call.Pos + call.Length + 1
	}
}

func rnames(tags []string) string {
	if len(tags) == 0 {
		return "."
	}
	names := make([]string, len(tags))
	for i, tag := range tags {
		if idx := strings.LastIndexByte(tag, ':'); idx >= 0 {
			names[i] = tag[:idx]
		} else {
			names[i] = tag
		}
	}
	return strings.Join(names, ",")
}

func sampleColumn(call genotype.Call) string {
	gt := call.GT
	if gt == "" {
		gt = "./."
	}
	return fmt.Sprintf("%s:%d:%d:%d,%d,%d:%d",
		gt, call.DR, call.DV, call.PL[0], call.PL[1], call.PL[2], call.GQ)
}
