// Package align adapts a read-to-reference alignment container into the
// narrow iterator the rest of the caller needs. It wraps
// github.com/biogo/hts/sam records the way grailbio/bio/encoding/bamprovider
// wraps them for its own Provider/Iterator pair, but exposes only what
// signature extraction needs: alignments (flagged primary or not), their CIGAR, strand, and
// split-read geometry via the SA tag.
package align

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/biogo/hts/sam"
)

// Strand is the alignment orientation relative to the reference.
type Strand byte

const (
	Forward Strand = '+'
	Reverse Strand = '-'
)

// CigarOp is one (operation, length) pair of an alignment's CIGAR string.
// Op uses the single-letter CIGAR vocabulary (M,I,D,N,S,H,P,=,X).
type CigarOp struct {
	Op  byte
	Len int
}

// Consumes mirrors sam.CigarOpType.Consumes(): whether this op advances the
// read offset, the reference offset, or both.
func (c CigarOp) Consumes() (query, reference bool) {
	switch c.Op {
	case 'M', '=', 'X':
		return true, true
	case 'I', 'S':
		return true, false
	case 'D', 'N':
		return false, true
	case 'H', 'P':
		return false, false
	default:
		return false, false
	}
}

// SAEntry is one supplementary alignment parsed out of an SA tag, per
// Alignment record definition.
type SAEntry struct {
	Chrom    string
	RefStart int // 0-based, converted from the SA tag's 1-based position
	RefEnd   int // 0-based, half-open
	Strand   Strand
	Cigar    []CigarOp
	MapQ     int
}

// Alignment is the read-only per-primary-alignment view the rest of the
// caller operates on.
type Alignment struct {
	Name          string
	Chrom         string
	RefStart      int // 0-based
	RefEnd        int // half-open
	MapQ          int
	Strand        Strand
	QueryLength   int
	QuerySequence []byte // optional; nil if hard-clipped-only / not requested
	Flag          uint16
	Cigar         []CigarOp
	SA            []SAEntry
	ReadGroup     string
}

// IsPrimary reports whether flag is one the core is allowed to process:
// invariant restricts coverage-counting and split-signal
// emission to flag ∈ {0, 16} — primary, non-secondary, non-supplementary,
// non-duplicate, non-QC-fail alignments on either strand.
func IsPrimary(flag uint16) bool {
	return flag == 0 || flag == 16
}

// ReadTag is the "query_name:read_group" identifier used to key
// supporting-read sets.
func ReadTag(name, readGroup string) string {
	return name + ":" + readGroup
}

// FromRecord converts a *sam.Record into an Alignment. keepSeq controls
// whether QuerySequence is populated (callers that don't need INS sequence
// extraction can skip the Expand() allocation).
func FromRecord(rec *sam.Record, keepSeq bool) (Alignment, error) {
	if rec.Ref == nil {
		return Alignment{}, fmt.Errorf("align: unmapped record %q has no reference", rec.Name)
	}
	a := Alignment{
		Name:        rec.Name,
		Chrom:       rec.Ref.Name(),
		RefStart:    rec.Start(),
		RefEnd:      rec.End(),
		MapQ:        int(rec.MapQ),
		QueryLength: rec.Len(),
		Flag:        uint16(rec.Flags),
		Cigar:       fromSamCigar(rec.Cigar),
	}
	if rec.Flags&sam.Reverse != 0 {
		a.Strand = Reverse
	} else {
		a.Strand = Forward
	}
	if keepSeq {
		if seq := rec.Seq.Expand(); len(seq) > 0 {
			a.QuerySequence = seq
		}
	}
	if rg, ok := rec.Tag([]byte("RG")); ok {
		if v, ok := rg.Value().(string); ok {
			a.ReadGroup = v
		}
	}
	if sa, ok := rec.Tag([]byte("SA")); ok {
		if v, ok := sa.Value().(string); ok {
			entries, err := ParseSA(v)
			if err != nil {
				// A malformed SA tag is a per-alignment recoverable error:
				// skip split analysis for this read, not the whole pipeline.
				return a, nil
			}
			a.SA = entries
		}
	}
	return a, nil
}

func fromSamCigar(c sam.Cigar) []CigarOp {
	ops := make([]CigarOp, len(c))
	for i, op := range c {
		ops[i] = CigarOp{Op: op.Type().String()[0], Len: op.Len()}
	}
	return ops
}

// ParseSA parses the SAM "SA" optional tag value: a semicolon-separated list
// of "rname,pos,strand,CIGAR,mapQ,NM;" entries (pos is 1-based in the tag,
// converted to 0-based here to match the rest of the Alignment model).
func ParseSA(tag string) ([]SAEntry, error) {
	tag = strings.TrimSuffix(tag, ";")
	if tag == "" {
		return nil, nil
	}
	var out []SAEntry
	for _, part := range strings.Split(tag, ";") {
		if part == "" {
			continue
		}
		fields := strings.Split(part, ",")
		if len(fields) < 5 {
			return nil, fmt.Errorf("align: malformed SA entry %q", part)
		}
		pos1, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("align: malformed SA position %q: %w", fields[1], err)
		}
		var strand Strand
		switch fields[2] {
		case "+":
			strand = Forward
		case "-":
			strand = Reverse
		default:
			return nil, fmt.Errorf("align: malformed SA strand %q", fields[2])
		}
		cigar, err := parseCigarString(fields[3])
		if err != nil {
			return nil, err
		}
		mapq, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, fmt.Errorf("align: malformed SA mapq %q: %w", fields[4], err)
		}
		refStart := pos1 - 1
		refLen := cigarRefLen(cigar)
		out = append(out, SAEntry{
			Chrom:    fields[0],
			RefStart: refStart,
			RefEnd:   refStart + refLen,
			Strand:   strand,
			Cigar:    cigar,
			MapQ:     mapq,
		})
	}
	return out, nil
}

func parseCigarString(s string) ([]CigarOp, error) {
	if s == "*" || s == "" {
		return nil, nil
	}
	var ops []CigarOp
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n = n*10 + int(r-'0')
			continue
		}
		switch r {
		case 'M', 'I', 'D', 'N', 'S', 'H', 'P', '=', 'X':
			ops = append(ops, CigarOp{Op: byte(r), Len: n})
			n = 0
		default:
			return nil, fmt.Errorf("align: unexpected CIGAR operation %q in %q", string(r), s)
		}
	}
	return ops, nil
}

// cigarRefLen returns the reference-consuming length a CIGAR spans,
// excluding soft and hard clips.
func cigarRefLen(ops []CigarOp) int {
	n := 0
	for _, op := range ops {
		_, refConsumes := op.Consumes()
		if refConsumes {
			n += op.Len
		}
	}
	return n
}
