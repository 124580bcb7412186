package sigextract

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/grailbio/testutil/h"
	"github.com/kpalin/cutesv-go/internal/align"
	"github.com/kpalin/cutesv-go/internal/config"
	"github.com/kpalin/cutesv-go/internal/signature"
)

func testOpts() *config.Opts {
	o := config.DefaultOpts
	o.MinSize = 30
	o.MaxSize = 100000
	o.MinMapQ = 20
	o.MinReadLen = 500
	o.MaxSplitParts = 7
	o.MinSigLength = 30
	o.MergeDelThreshold = 0
	o.MergeInsThreshold = 100
	return &o
}

func TestGateShortRead(t *testing.T) {
	opts := testOpts()
	a := align.Alignment{Name: "r1", Chrom: "chr1", QueryLength: 10, MapQ: 60}
	expect.False(t, Gate(a, opts))
}

func TestGateLowMapQ(t *testing.T) {
	opts := testOpts()
	a := align.Alignment{Name: "r1", Chrom: "chr1", QueryLength: 1000, MapQ: 5}
	expect.False(t, Gate(a, opts))
}

func TestExtractInAlignmentDeletion(t *testing.T) {
	opts := testOpts()
	a := align.Alignment{
		Name: "r1", Chrom: "chr1", RefStart: 1000, MapQ: 60, QueryLength: 1000,
		Cigar: []align.CigarOp{{Op: 'M', Len: 1000}, {Op: 'D', Len: 60}, {Op: 'M', Len: 1000}},
	}
	sigs := ExtractInAlignment(a, opts)
	expect.That(t, sigs, h.ElementsAre(
		signature.NewDEL("chr1", 2000, 60, "r1:"),
	))
}

func TestExtractInAlignmentInsertionBoundary(t *testing.T) {
	opts := testOpts()
	seq := make([]byte, 2000)
	for i := range seq {
		seq[i] = 'A'
	}
	a := align.Alignment{
		Name: "r1", Chrom: "chr1", RefStart: 3000, MapQ: 60, QueryLength: 2000,
		QuerySequence: seq,
		Cigar:         []align.CigarOp{{Op: 'M', Len: 1000}, {Op: 'I', Len: 30}, {Op: 'M', Len: 970}},
	}
	sigs := ExtractInAlignment(a, opts)
	expect.EQ(t, len(sigs), 1)
	expect.EQ(t, sigs[0].Length, 30)

	// One base short of min_siglength must not be emitted.
	a.Cigar = []align.CigarOp{{Op: 'M', Len: 1000}, {Op: 'I', Len: 29}, {Op: 'M', Len: 971}}
	expect.EQ(t, len(ExtractInAlignment(a, opts)), 0)
}

func TestMergeSameReadDeletions(t *testing.T) {
	opts := testOpts()
	opts.MergeDelThreshold = 10
	a := align.Alignment{
		Name: "r1", Chrom: "chr1", RefStart: 0, MapQ: 60, QueryLength: 1000,
		Cigar: []align.CigarOp{
			{Op: 'M', Len: 100},
			{Op: 'D', Len: 40},
			{Op: 'M', Len: 5},
			{Op: 'D', Len: 40},
			{Op: 'M', Len: 100},
		},
	}
	sigs := ExtractInAlignment(a, opts)
	expect.EQ(t, len(sigs), 1)
	expect.EQ(t, sigs[0].Pos, 100)
	expect.EQ(t, sigs[0].Length, 80)
}

// TestSplitINVTriple mirrors scenario S4: a +,-,+ triple on one chromosome should
// yield a head-to-head and a tail-to-tail INV signature.
func TestSplitINVTriple(t *testing.T) {
	opts := testOpts()
	a := align.Alignment{
		Name: "r1", Chrom: "chr1", RefStart: 100, RefEnd: 200, MapQ: 60,
		QueryLength: 300, Strand: align.Forward,
		Cigar: []align.CigarOp{{Op: 'M', Len: 100}, {Op: 'S', Len: 200}},
		SA: []align.SAEntry{
			{Chrom: "chr1", RefStart: 250, RefEnd: 350, Strand: align.Reverse, MapQ: 60,
				Cigar: []align.CigarOp{{Op: 'H', Len: 100}, {Op: 'M', Len: 100}, {Op: 'H', Len: 100}}},
			{Chrom: "chr1", RefStart: 400, RefEnd: 500, Strand: align.Forward, MapQ: 60,
				Cigar: []align.CigarOp{{Op: 'H', Len: 200}, {Op: 'M', Len: 100}}},
		},
	}
	sigs := ExtractSplit(a, opts)
	var invCount int
	for _, s := range sigs {
		if s.Kind == signature.KindINV {
			invCount++
		}
	}
	expect.EQ(t, invCount, 2)
}

// TestSplitTRA mirrors scenario S2: a 2-part split across chromosomes with
// a small read gap emits one TRA breakend signature.
func TestSplitTRA(t *testing.T) {
	opts := testOpts()
	a := align.Alignment{
		Name: "r1", Chrom: "chr1", RefStart: 400, RefEnd: 500, MapQ: 60,
		QueryLength: 200, Strand: align.Forward,
		Cigar: []align.CigarOp{{Op: 'M', Len: 100}, {Op: 'S', Len: 100}},
		SA: []align.SAEntry{
			{Chrom: "chr2", RefStart: 2000, RefEnd: 2100, Strand: align.Forward, MapQ: 60,
				Cigar: []align.CigarOp{{Op: 'H', Len: 100}, {Op: 'M', Len: 100}}},
		},
	}
	sigs := ExtractSplit(a, opts)
	expect.That(t, sigs, h.ElementsAre(
		signature.NewTRA("chr1", signature.BNDFormA, 500, "chr2", 2000, "r1:"),
	))
}

func TestMaxSplitPartsAbort(t *testing.T) {
	opts := testOpts()
	opts.MaxSplitParts = 1
	a := align.Alignment{
		Name: "r1", Chrom: "chr1", RefStart: 0, RefEnd: 100, MapQ: 60,
		QueryLength: 200, Strand: align.Forward,
		Cigar: []align.CigarOp{{Op: 'M', Len: 100}, {Op: 'S', Len: 100}},
		SA: []align.SAEntry{
			{Chrom: "chr2", RefStart: 2000, RefEnd: 2100, Strand: align.Forward, MapQ: 60,
				Cigar: []align.CigarOp{{Op: 'H', Len: 100}, {Op: 'M', Len: 100}}},
		},
	}
	expect.EQ(t, len(ExtractSplit(a, opts)), 0)
}
