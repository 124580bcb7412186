package interval

import (
	"math"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/testutil/expect"
)

func TestParseRegionString(t *testing.T) {
	tests := []struct {
		region  string
		chrName string
		start0  PosType
		end     PosType
	}{
		{"chr1:1-1000", "chr1", 0, 1000},
		{"chr1:1000", "chr1", 999, 1000},
		{"chr1", "chr1", 0, math.MaxInt32 - 1},
	}

	for _, tt := range tests {
		result, err := ParseRegionString(tt.region)
		expect.NoError(t, err)
		expect.EQ(t, tt.chrName, result.ChrName)
		expect.EQ(t, tt.start0, result.Start0)
		expect.EQ(t, tt.end, result.End)
	}
}

func TestParseRegionStringErrors(t *testing.T) {
	for _, region := range []string{"", ":100-200"} {
		if _, err := ParseRegionString(region); err == nil {
			t.Errorf("ParseRegionString(%q): expected an error", region)
		}
	}
}

func testHeader(t *testing.T) *sam.Header {
	ref1, err := sam.NewReference("chr1", "", "", 249250621, nil, nil)
	expect.NoError(t, err)
	ref2, err := sam.NewReference("chr2", "", "", 243199373, nil, nil)
	expect.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{ref1, ref2})
	expect.NoError(t, err)
	return header
}

func TestBEDUnionFromEntriesContains(t *testing.T) {
	entries := []Entry{
		{ChrName: "chr1", Start0: 100, End: 200},
		{ChrName: "chr1", Start0: 500, End: 510},
		{ChrName: "chr2", Start0: 50, End: 60},
	}
	u, err := NewBEDUnionFromEntries(entries, NewBEDOpts{SAMHeader: testHeader(t)})
	expect.NoError(t, err)

	expect.False(t, u.ContainsByName("chr1", 99))
	expect.True(t, u.ContainsByName("chr1", 100))
	expect.True(t, u.ContainsByName("chr1", 199))
	expect.False(t, u.ContainsByName("chr1", 200))
	expect.True(t, u.ContainsByName("chr2", 55))
	expect.False(t, u.ContainsByName("chr3", 55))
}

func TestBEDUnionIntersects(t *testing.T) {
	header := testHeader(t)
	entries := []Entry{
		{ChrName: "chr1", Start0: 1000, End: 2000},
	}
	u, err := NewBEDUnionFromEntries(entries, NewBEDOpts{SAMHeader: header})
	expect.NoError(t, err)

	chr1 := header.Refs()[0].ID()
	expect.True(t, u.Intersects(chr1, 900, chr1, 1500))
	expect.True(t, u.Intersects(chr1, 1999, chr1, 2500))
	expect.False(t, u.Intersects(chr1, 2000, chr1, 2500))
	expect.False(t, u.Intersects(chr1, 0, chr1, 1000))
}

func TestBEDUnionInvert(t *testing.T) {
	header := testHeader(t)
	entries := []Entry{
		{ChrName: "chr1", Start0: 100, End: 200},
	}
	u, err := NewBEDUnionFromEntries(entries, NewBEDOpts{SAMHeader: header})
	expect.NoError(t, err)
	invertedUnion, err := NewBEDUnionFromEntries(entries, NewBEDOpts{SAMHeader: header, Invert: true})
	expect.NoError(t, err)
	inverted := invertedUnion.Clone()
	expect.True(t, u.ContainsByName("chr1", 150))
	expect.False(t, inverted.ContainsByName("chr1", 150))
	expect.True(t, inverted.ContainsByName("chr1", 50))
}
