package sigio

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/kpalin/cutesv-go/internal/signature"
)

func TestShardWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewShardWriter(dir, "w0")
	w.AddSignature(signature.NewDEL("chr1", 500, 60, "r2:"))
	w.AddSignature(signature.NewDEL("chr1", 100, 60, "r1:"))
	w.AddRead(signature.ReadDescriptor{Chrom: "chr1", RefStart: 0, RefEnd: 1000, IsPrimary: true, ReadTag: "r1:"})
	expect.NoError(t, w.Flush())

	sigs, err := ReadSigShard(filepath.Join(dir, "w0.DEL.rio"))
	expect.NoError(t, err)
	expect.EQ(t, len(sigs), 2)
	expect.EQ(t, sigs[0].Pos, 100) // written sorted by SortKey
	expect.EQ(t, sigs[1].Pos, 500)

	reads, err := ReadReadShard(filepath.Join(dir, "w0.reads.rio"))
	expect.NoError(t, err)
	expect.EQ(t, len(reads), 1)
}

func TestLoadAllReadsGroupsByChrom(t *testing.T) {
	dir := t.TempDir()
	w0 := NewShardWriter(dir, "w0")
	w0.AddRead(signature.ReadDescriptor{Chrom: "chr1", RefStart: 0, RefEnd: 100, IsPrimary: true, ReadTag: "r1:"})
	expect.NoError(t, w0.Flush())
	w1 := NewShardWriter(dir, "w1")
	w1.AddRead(signature.ReadDescriptor{Chrom: "chr2", RefStart: 0, RefEnd: 100, IsPrimary: true, ReadTag: "r2:"})
	expect.NoError(t, w1.Flush())

	grouped, err := LoadAllReads(dir)
	expect.NoError(t, err)
	expect.EQ(t, len(grouped["chr1"]), 1)
	expect.EQ(t, len(grouped["chr2"]), 1)
}

func TestMergeKindDedupesAndSorts(t *testing.T) {
	dir := t.TempDir()

	w0 := NewShardWriter(dir, "w0")
	w0.AddSignature(signature.NewDEL("chr1", 500, 60, "r2:"))
	w0.AddSignature(signature.NewDEL("chr1", 100, 60, "r1:"))
	expect.NoError(t, w0.Flush())

	w1 := NewShardWriter(dir, "w1")
	w1.AddSignature(signature.NewDEL("chr1", 500, 60, "r2:")) // exact duplicate across windows
	w1.AddSignature(signature.NewDEL("chr1", 300, 60, "r3:"))
	expect.NoError(t, w1.Flush())

	outPath := filepath.Join(dir, "merged.DEL.tsv")
	expect.NoError(t, MergeKind(dir, signature.KindDEL, outPath))

	f, err := os.Open(outPath)
	expect.NoError(t, err)
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	expect.EQ(t, len(lines), 3) // 100, 300, 500 -- the 500 duplicate is elided
}
