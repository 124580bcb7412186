package orchestrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/testutil/expect"
	"github.com/kpalin/cutesv-go/internal/align"
	"github.com/kpalin/cutesv-go/internal/config"
)

func testHeader(t *testing.T) *sam.Header {
	ref, err := sam.NewReference("chr1", "", "", 5000, nil, nil)
	expect.NoError(t, err)
	h, err := sam.NewHeader(nil, []*sam.Reference{ref})
	expect.NoError(t, err)
	return h
}

func testOpts(workDir, output string) *config.Opts {
	o := config.DefaultOpts
	o.WorkDir = workDir
	o.Output = output
	o.Batches = 10000
	o.MinSize = 10
	o.MaxSize = -1
	o.MinMapQ = 0
	o.MinReadLen = 0
	o.MinSigLength = 10
	o.MinSupport = 3
	o.RemainReadsRatio = 1.0
	o.RetainWorkDir = true
	return &o
}

func TestRunEndToEndEmitsDeletionCall(t *testing.T) {
	header := testHeader(t)
	var aligns []align.Alignment
	for i := 0; i < 3; i++ {
		aligns = append(aligns, align.Alignment{
			Name: "read" + string(rune('a'+i)), Chrom: "chr1", RefStart: 1000, MapQ: 60,
			QueryLength: 2000,
			Cigar:       []align.CigarOp{{Op: 'M', Len: 1000}, {Op: 'D', Len: 200}, {Op: 'M', Len: 1000}},
		})
	}
	provider := align.NewFakeProvider(header, aligns)

	workDir := t.TempDir()
	output := filepath.Join(workDir, "out.vcf")
	opts := testOpts(workDir, output)

	expect.NoError(t, Run(provider, opts))

	data, err := os.ReadFile(output)
	expect.NoError(t, err)
	content := string(data)
	expect.True(t, strings.Contains(content, "##fileformat=VCFv4.2"))
	expect.True(t, strings.Contains(content, "##contig=<ID=chr1,length=5000>"))
	expect.True(t, strings.Contains(content, "cuteSV.DEL.0"))
	expect.True(t, strings.Contains(content, "<DEL>"))
}

func TestRunNoSignaturesProducesEmptyCallSet(t *testing.T) {
	header := testHeader(t)
	provider := align.NewFakeProvider(header, nil)

	workDir := t.TempDir()
	output := filepath.Join(workDir, "out.vcf")
	opts := testOpts(workDir, output)

	expect.NoError(t, Run(provider, opts))
	data, err := os.ReadFile(output)
	expect.NoError(t, err)
	expect.True(t, strings.Contains(string(data), "##fileformat=VCFv4.2"))
	expect.False(t, strings.Contains(string(data), "chr1"))
}
