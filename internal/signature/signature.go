// Package signature defines the per-read SV evidence records and their
// tab-separated intermediate encoding, as a tagged sum type rather than a
// positional list-of-list record.
package signature

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the SV type a Signature carries evidence for.
type Kind string

const (
	KindINS Kind = "INS"
	KindDEL Kind = "DEL"
	KindDUP Kind = "DUP"
	KindINV Kind = "INV"
	KindTRA Kind = "TRA"
)

// BNDForm is one of the four breakend notations, named A-D,
// corresponding to N[chr:pos[, N]chr:pos], [chr:pos[N, ]chr:pos]N.
type BNDForm byte

const (
	BNDFormA BNDForm = 'A' // N[chr:pos[
	BNDFormB BNDForm = 'B' // N]chr:pos]
	BNDFormC BNDForm = 'C' // [chr:pos[N
	BNDFormD BNDForm = 'D' // ]chr:pos]N
)

// Signature is a tagged record of SV evidence from a single read. Only the
// fields relevant to Kind are meaningful; see the per-kind constructors
// below for the canonical way to build one.
type Signature struct {
	Kind Kind

	Chrom string
	Pos   int // INS/DEL: 0-based breakpoint. DUP/INV: start. TRA: pos1.
	End   int // DUP/INV: end. TRA/INS/DEL: unused, left zero.

	Length int // INS/DEL: signal length. DUP/INV: End-Pos (computed, not stored).

	ReadTag string // "query_name:read_group"

	InsertedSeq []byte // INS only; may be empty if no stored sequence.

	StrandPair string // INV only: "++" or "--"

	BNDForm BNDForm // TRA only
	Chrom2  string  // TRA only
	Pos2    int     // TRA only
}

// NewINS builds an INS signature. length must be >= 0; seq may be nil.
func NewINS(chrom string, pos, length int, readTag string, seq []byte) Signature {
	return Signature{Kind: KindINS, Chrom: chrom, Pos: pos, Length: length, ReadTag: readTag, InsertedSeq: seq}
}

// NewDEL builds a DEL signature.
func NewDEL(chrom string, pos, length int, readTag string) Signature {
	return Signature{Kind: KindDEL, Chrom: chrom, Pos: pos, Length: length, ReadTag: readTag}
}

// NewDUP builds a DUP signature; end must be >= start.
func NewDUP(chrom string, start, end int, readTag string) Signature {
	return Signature{Kind: KindDUP, Chrom: chrom, Pos: start, End: end, Length: end - start, ReadTag: readTag}
}

// NewINV builds an INV signature; end must be >= start.
func NewINV(chrom, strandPair string, start, end int, readTag string) Signature {
	return Signature{Kind: KindINV, Chrom: chrom, Pos: start, End: end, Length: end - start, ReadTag: readTag, StrandPair: strandPair}
}

// NewTRA builds a TRA (breakend) signature.
func NewTRA(chrom1 string, form BNDForm, pos1 int, chrom2 string, pos2 int, readTag string) Signature {
	return Signature{Kind: KindTRA, Chrom: chrom1, Pos: pos1, BNDForm: form, Chrom2: chrom2, Pos2: pos2, ReadTag: readTag}
}

// Encode renders the signature as one LF-free intermediate TSV line, in
// one of five per-Kind formats.
func (s Signature) Encode() string {
	var b strings.Builder
	switch s.Kind {
	case KindDEL:
		fmt.Fprintf(&b, "DEL\t%s\t%d\t%d\t%s", s.Chrom, s.Pos, s.Length, s.ReadTag)
	case KindINS:
		fmt.Fprintf(&b, "INS\t%s\t%d\t%d\t%s\t%s", s.Chrom, s.Pos, s.Length, s.ReadTag, string(s.InsertedSeq))
	case KindDUP:
		fmt.Fprintf(&b, "DUP\t%s\t%d\t%d\t%s", s.Chrom, s.Pos, s.End, s.ReadTag)
	case KindINV:
		fmt.Fprintf(&b, "INV\t%s\t%s\t%d\t%d\t%s", s.Chrom, s.StrandPair, s.Pos, s.End, s.ReadTag)
	case KindTRA:
		fmt.Fprintf(&b, "TRA\t%s\t%c\t%d\t%s\t%d\t%s", s.Chrom, byte(s.BNDForm), s.Pos, s.Chrom2, s.Pos2, s.ReadTag)
	default:
		panic("signature: unknown kind " + string(s.Kind))
	}
	return b.String()
}

// Decode parses one intermediate TSV line produced by Encode.
func Decode(line string) (Signature, error) {
	fields := strings.Split(line, "\t")
	if len(fields) == 0 {
		return Signature{}, fmt.Errorf("signature: empty line")
	}
	switch Kind(fields[0]) {
	case KindDEL:
		if len(fields) != 5 {
			return Signature{}, fmt.Errorf("signature: malformed DEL line %q", line)
		}
		pos, err := strconv.Atoi(fields[2])
		if err != nil {
			return Signature{}, err
		}
		length, err := strconv.Atoi(fields[3])
		if err != nil {
			return Signature{}, err
		}
		return NewDEL(fields[1], pos, length, fields[4]), nil
	case KindINS:
		if len(fields) != 6 {
			return Signature{}, fmt.Errorf("signature: malformed INS line %q", line)
		}
		pos, err := strconv.Atoi(fields[2])
		if err != nil {
			return Signature{}, err
		}
		length, err := strconv.Atoi(fields[3])
		if err != nil {
			return Signature{}, err
		}
		return NewINS(fields[1], pos, length, fields[4], []byte(fields[5])), nil
	case KindDUP:
		if len(fields) != 5 {
			return Signature{}, fmt.Errorf("signature: malformed DUP line %q", line)
		}
		start, err := strconv.Atoi(fields[2])
		if err != nil {
			return Signature{}, err
		}
		end, err := strconv.Atoi(fields[3])
		if err != nil {
			return Signature{}, err
		}
		return NewDUP(fields[1], start, end, fields[4]), nil
	case KindINV:
		if len(fields) != 6 {
			return Signature{}, fmt.Errorf("signature: malformed INV line %q", line)
		}
		pos1, err := strconv.Atoi(fields[3])
		if err != nil {
			return Signature{}, err
		}
		pos2, err := strconv.Atoi(fields[4])
		if err != nil {
			return Signature{}, err
		}
		return NewINV(fields[1], fields[2], pos1, pos2, fields[5]), nil
	case KindTRA:
		if len(fields) != 7 {
			return Signature{}, fmt.Errorf("signature: malformed TRA line %q", line)
		}
		if len(fields[2]) != 1 {
			return Signature{}, fmt.Errorf("signature: malformed BND form %q", fields[2])
		}
		pos1, err := strconv.Atoi(fields[3])
		if err != nil {
			return Signature{}, err
		}
		pos2, err := strconv.Atoi(fields[5])
		if err != nil {
			return Signature{}, err
		}
		return NewTRA(fields[1], BNDForm(fields[2][0]), pos1, fields[4], pos2, fields[6]), nil
	default:
		return Signature{}, fmt.Errorf("signature: unknown kind in line %q", line)
	}
}

// ReadDescriptor is the per-read coverage record, one per alignment
// (primary or not, see IsPrimary) collected during extraction, used by the genotyper's coverage
// sweep.
type ReadDescriptor struct {
	Chrom     string
	RefStart  int
	RefEnd    int
	IsPrimary bool
	ReadTag   string
}

// Encode renders the reads-shard line format.
func (r ReadDescriptor) Encode() string {
	primary := "0"
	if r.IsPrimary {
		primary = "1"
	}
	return fmt.Sprintf("%s\t%d\t%d\t%s\t%s", r.Chrom, r.RefStart, r.RefEnd, primary, r.ReadTag)
}

// DecodeRead parses one reads-shard line produced by Encode.
func DecodeRead(line string) (ReadDescriptor, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 5 {
		return ReadDescriptor{}, fmt.Errorf("signature: malformed read line %q", line)
	}
	start, err := strconv.Atoi(fields[1])
	if err != nil {
		return ReadDescriptor{}, err
	}
	end, err := strconv.Atoi(fields[2])
	if err != nil {
		return ReadDescriptor{}, err
	}
	return ReadDescriptor{
		Chrom:     fields[0],
		RefStart:  start,
		RefEnd:    end,
		IsPrimary: fields[3] == "1",
		ReadTag:   fields[4],
	}, nil
}

// SortKey returns the tuple the per-window shard sort and cross-window
// merge sort on: (chrom, pos) for INS/DEL, (chrom, strandPair, pos1) for
// INV, (chrom, start, end) for DUP, (chrom1, chrom2, pos1) for TRA.
func (s Signature) SortKey() (string, string, int, int) {
	switch s.Kind {
	case KindDUP:
		return s.Chrom, "", s.Pos, s.End
	case KindINV:
		return s.Chrom, s.StrandPair, s.Pos, s.End
	case KindTRA:
		return s.Chrom, s.Chrom2, s.Pos, s.Pos2
	default:
		return s.Chrom, "", s.Pos, 0
	}
}

// Less orders two signatures of the same Kind by SortKey, for the
// per-window shard sort and the cross-window k-way merge.
func Less(a, b Signature) bool {
	ac1, ac2, ap1, ap2 := a.SortKey()
	bc1, bc2, bp1, bp2 := b.SortKey()
	if ac1 != bc1 {
		return ac1 < bc1
	}
	if ac2 != bc2 {
		return ac2 < bc2
	}
	if ap1 != bp1 {
		return ap1 < bp1
	}
	return ap2 < bp2
}
