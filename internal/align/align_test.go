package align

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/grailbio/testutil/h"
)

func TestIsPrimary(t *testing.T) {
	expect.True(t, IsPrimary(0))
	expect.True(t, IsPrimary(16))
	expect.False(t, IsPrimary(256))  // secondary
	expect.False(t, IsPrimary(2048)) // supplementary
	expect.False(t, IsPrimary(1024)) // duplicate
}

func TestParseSA(t *testing.T) {
	entries, err := ParseSA("chr2,2001,+,50M50S,60,0;chr3,501,-,50S50M,55,2;")
	expect.NoError(t, err)
	expect.That(t, entries, h.ElementsAre(
		SAEntry{Chrom: "chr2", RefStart: 2000, RefEnd: 2050, Strand: Forward, MapQ: 60, Cigar: []CigarOp{{'M', 50}, {'S', 50}}},
		SAEntry{Chrom: "chr3", RefStart: 500, RefEnd: 550, Strand: Reverse, MapQ: 55, Cigar: []CigarOp{{'S', 50}, {'M', 50}}},
	))
}

func TestParseSAEmpty(t *testing.T) {
	entries, err := ParseSA("")
	expect.NoError(t, err)
	expect.EQ(t, len(entries), 0)
}

func TestParseSAMalformed(t *testing.T) {
	if _, err := ParseSA("chr2,oops,+,50M,60,0;"); err == nil {
		t.Fatalf("expected an error for a malformed SA position")
	}
}

func TestReadTag(t *testing.T) {
	expect.EQ(t, ReadTag("m54238/52298335/ccs", "rg01"), "m54238/52298335/ccs:rg01")
}
