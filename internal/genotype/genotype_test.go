package genotype

import (
	"math"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/kpalin/cutesv-go/internal/cluster"
	"github.com/kpalin/cutesv-go/internal/config"
	"github.com/kpalin/cutesv-go/internal/signature"
)

func testOpts() *config.Opts {
	o := config.DefaultOpts
	o.MinSupport = 10
	return &o
}

func TestOverlapCoverFindsSpanningReads(t *testing.T) {
	reads := []signature.ReadDescriptor{
		{Chrom: "chr1", RefStart: 0, RefEnd: 2000, IsPrimary: true, ReadTag: "spans:"},
		{Chrom: "chr1", RefStart: 900, RefEnd: 950, IsPrimary: true, ReadTag: "tooshort:"},
		{Chrom: "chr1", RefStart: 1100, RefEnd: 3000, IsPrimary: true, ReadTag: "laterstart:"},
	}
	spanning := overlapCover(1000, 1050, reads)
	expect.EQ(t, len(spanning), 1)
	expect.EQ(t, reads[spanning[0]].ReadTag, "spans:")
}

func TestGenotypeHomozygousAlt(t *testing.T) {
	opts := testOpts()
	c := cluster.Candidate{
		Chrom: "chr1", SVType: signature.KindDEL, Pos: 1000, Length: 500,
		SupportingReads: []string{"r1:", "r2:", "r3:", "r4:", "r5:", "r6:", "r7:", "r8:", "r9:", "r10:"},
	}
	var reads []signature.ReadDescriptor
	for _, tag := range c.SupportingReads {
		reads = append(reads, signature.ReadDescriptor{Chrom: "chr1", RefStart: 900, RefEnd: 1600, IsPrimary: true, ReadTag: tag})
	}
	call := Genotype(c, reads, opts)
	expect.EQ(t, call.GT, "1/1")
	expect.EQ(t, call.DV, 10)
	expect.GE(t, call.QUAL, 0.0)
}

func TestGenotypeHomozygousRef(t *testing.T) {
	opts := testOpts()
	c := cluster.Candidate{
		Chrom: "chr1", SVType: signature.KindDEL, Pos: 1000, Length: 500,
		SupportingReads: []string{"alt:"},
	}
	var reads []signature.ReadDescriptor
	for i := 0; i < 20; i++ {
		reads = append(reads, signature.ReadDescriptor{
			Chrom: "chr1", RefStart: 900, RefEnd: 1600, IsPrimary: true, ReadTag: "ref" + itoaTag(i),
		})
	}
	call := Genotype(c, reads, opts)
	expect.EQ(t, call.GT, "0/0")
	expect.EQ(t, call.DR, 20)
}

func TestCoverageBoundSparsePrimaryFractionExits(t *testing.T) {
	var reads []signature.ReadDescriptor
	reads = append(reads, signature.ReadDescriptor{RefStart: 1010, RefEnd: 1020, IsPrimary: true, ReadTag: "p:"})
	for i := 0; i < 4; i++ {
		reads = append(reads, signature.ReadDescriptor{RefStart: 1010, RefEnd: 1020, IsPrimary: false, ReadTag: "s" + itoaTag(i)})
	}
	status, bound, _ := CoverageBound(1000, 1050, reads, 100, 5)
	expect.EQ(t, status, 1)
	expect.EQ(t, bound, 5)
}

func TestCoverageBoundHealthyPrimaryFractionExits(t *testing.T) {
	var reads []signature.ReadDescriptor
	for i := 0; i < 5; i++ {
		reads = append(reads, signature.ReadDescriptor{RefStart: 1010, RefEnd: 1020, IsPrimary: true, ReadTag: "p" + itoaTag(i)})
	}
	status, bound, _ := CoverageBound(1000, 1050, reads, 100, 5)
	expect.EQ(t, status, -1)
	expect.EQ(t, bound, 5)
}

func TestCoverageBoundUpBoundExitsEarly(t *testing.T) {
	var reads []signature.ReadDescriptor
	for i := 0; i < 3; i++ {
		reads = append(reads, signature.ReadDescriptor{RefStart: 900, RefEnd: 1600, IsPrimary: true, ReadTag: "p" + itoaTag(i)})
	}
	status, bound, _ := CoverageBound(1000, 1050, reads, 2, 100)
	expect.EQ(t, status, 1)
	expect.EQ(t, bound, 2)
}

func TestCoverageBoundNoEarlyExit(t *testing.T) {
	var reads []signature.ReadDescriptor
	for i := 0; i < 3; i++ {
		reads = append(reads, signature.ReadDescriptor{RefStart: 1010, RefEnd: 1020, IsPrimary: true, ReadTag: "p" + itoaTag(i)})
	}
	status, bound, ordered := CoverageBound(1000, 1050, reads, 100, 100)
	expect.EQ(t, status, 0)
	expect.EQ(t, bound, 3)
	expect.EQ(t, len(ordered), 3)
}

func TestNormalizeLog10AllZeroIsUnderflow(t *testing.T) {
	_, underflow := normalizeLog10([3]float64{0, 0, 0})
	expect.True(t, underflow)
}

func TestRescaleCapsAtHundred(t *testing.T) {
	c0, c1 := rescale(150, 50)
	expect.True(t, math.Abs(c0+c1-100) < 1e-9)
}

func itoaTag(i int) string {
	digits := "0123456789"
	if i < 10 {
		return "r" + string(digits[i]) + ":"
	}
	return "r" + string(digits[i/10]) + string(digits[i%10]) + ":"
}
