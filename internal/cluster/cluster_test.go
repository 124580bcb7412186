package cluster

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/kpalin/cutesv-go/internal/config"
	"github.com/kpalin/cutesv-go/internal/signature"
)

func testOpts() *config.Opts {
	o := config.DefaultOpts
	o.MinSupport = 2
	o.MaxClusterBiasIns = 100
	o.MaxClusterBiasDel = 100
	o.MaxClusterBiasDup = 100
	o.MaxClusterBiasInv = 100
	o.MaxClusterBiasTra = 50
	o.DiffRatioMergingIns = 0.3
	o.DiffRatioMergingDel = 0.3
	o.DiffRatioFilteringTra = 0.6
	o.RemainReadsRatio = 1.0
	return &o
}

func TestClusterInsDelMergesNearbySimilarLength(t *testing.T) {
	opts := testOpts()
	sigs := []signature.Signature{
		signature.NewDEL("chr1", 1000, 500, "r1:"),
		signature.NewDEL("chr1", 1010, 510, "r2:"),
		signature.NewDEL("chr1", 1020, 495, "r3:"),
	}
	candidates := ClusterInsDel(sigs, signature.KindDEL, opts)
	expect.EQ(t, len(candidates), 1)
	expect.EQ(t, len(candidates[0].SupportingReads), 3)
	expect.EQ(t, candidates[0].Length, 500)
}

func TestClusterInsDelSplitsOnLengthDissimilarity(t *testing.T) {
	opts := testOpts()
	sigs := []signature.Signature{
		signature.NewINS("chr1", 1000, 100, "r1:", nil),
		signature.NewINS("chr1", 1005, 110, "r2:", nil),
		signature.NewINS("chr1", 1010, 2000, "r3:", nil),
		signature.NewINS("chr1", 1015, 2100, "r4:", nil),
	}
	candidates := ClusterInsDel(sigs, signature.KindINS, opts)
	expect.EQ(t, len(candidates), 2)
}

func TestClusterInsDelBelowMinSupportDropped(t *testing.T) {
	opts := testOpts()
	opts.MinSupport = 5
	sigs := []signature.Signature{
		signature.NewDEL("chr1", 1000, 500, "r1:"),
		signature.NewDEL("chr1", 1010, 510, "r2:"),
	}
	candidates := ClusterInsDel(sigs, signature.KindDEL, opts)
	expect.EQ(t, len(candidates), 0)
}

func TestClusterDupInvGroupsByStrandPair(t *testing.T) {
	opts := testOpts()
	sigs := []signature.Signature{
		signature.NewINV("chr1", "++", 1000, 1100, "r1:"),
		signature.NewINV("chr1", "++", 1010, 1110, "r2:"),
		signature.NewINV("chr1", "--", 1005, 1105, "r3:"),
		signature.NewINV("chr1", "--", 1015, 1115, "r4:"),
	}
	candidates := ClusterDupInv(sigs, signature.KindINV, opts)
	expect.EQ(t, len(candidates), 2)
}

func TestClusterTraGroupsByFormAndPositions(t *testing.T) {
	opts := testOpts()
	sigs := []signature.Signature{
		signature.NewTRA("chr1", signature.BNDFormA, 500, "chr2", 2000, "r1:"),
		signature.NewTRA("chr1", signature.BNDFormA, 510, "chr2", 2010, "r2:"),
		signature.NewTRA("chr1", signature.BNDFormA, 5000, "chr2", 9000, "r3:"),
		signature.NewTRA("chr1", signature.BNDFormA, 5010, "chr2", 9010, "r4:"),
	}
	candidates := ClusterTra(sigs, opts)
	expect.EQ(t, len(candidates), 2)
}

func TestSizeGateDropsOutOfRange(t *testing.T) {
	opts := testOpts()
	opts.MinSize = 50
	opts.MaxSize = 1000
	candidates := []Candidate{
		{SVType: signature.KindDEL, Length: 10},
		{SVType: signature.KindDEL, Length: 100},
		{SVType: signature.KindDEL, Length: 5000},
		{SVType: signature.KindTRA, Length: 0},
	}
	gated := SizeGate(candidates, opts)
	expect.EQ(t, len(gated), 2)
}

func TestSizeGateNoUpperBound(t *testing.T) {
	opts := testOpts()
	opts.MinSize = 50
	opts.MaxSize = -1
	candidates := []Candidate{{SVType: signature.KindDEL, Length: 1000000}}
	expect.EQ(t, len(SizeGate(candidates, opts)), 1)
}

func TestClusterGivenPositionsZeroSupport(t *testing.T) {
	opts := testOpts()
	c := ClusterGivenPositions(nil, signature.KindDEL, "chr1", 1000, 1500, opts)
	expect.EQ(t, len(c.SupportingReads), 0)
	expect.EQ(t, c.Pos, 1000)
}

func TestClusterGivenPositionsFindsSupport(t *testing.T) {
	opts := testOpts()
	sigs := []signature.Signature{
		signature.NewDEL("chr1", 1010, 480, "r1:"),
		signature.NewDEL("chr2", 1010, 480, "r2:"), // wrong chrom, excluded
	}
	c := ClusterGivenPositions(sigs, signature.KindDEL, "chr1", 1000, 1500, opts)
	expect.EQ(t, len(c.SupportingReads), 1)
}
