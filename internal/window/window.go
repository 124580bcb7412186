// Package window partitions the reference into fixed-size windows that
// Phase 1 (extraction) processes independently, and optionally restricts
// those windows to an "interesting regions" BED file expanded by ±1000bp.
// Shard is a narrowed form of
// grailbio/bio/encoding/bam.Shard: a genomic half-open interval plus the
// chromosome name, since the caller's workers address windows by
// (chrom, start, end) rather than by byte offset.
package window

import (
	"github.com/biogo/hts/sam"
	bio "github.com/kpalin/cutesv-go/interval"
)

// Shard is one contiguous, half-open genomic interval assigned to a single
// Phase-1 worker.
type Shard struct {
	Chrom string
	Start int
	End   int
}

// interestingPad is the fixed expansion applied to BED regions
// before intersecting them with the window list.
const interestingPad = 1000

// Plan splits every reference contig into contiguous shards of at most
// batches bases, in contig order; a contig longer than batches yields
// several shards.
func Plan(header *sam.Header, batches int) []Shard {
	var shards []Shard
	for _, ref := range header.Refs() {
		length := ref.Len()
		for start := 0; start < length; start += batches {
			end := start + batches
			if end > length {
				end = length
			}
			shards = append(shards, Shard{Chrom: ref.Name(), Start: start, End: end})
		}
	}
	return shards
}

// FilterByBED restricts shards to those intersecting any BED interval
// (each padded by ±interestingPad bases). bedPath=="" is a no-op.
func FilterByBED(header *sam.Header, shards []Shard, bedPath string) ([]Shard, error) {
	if bedPath == "" {
		return shards, nil
	}
	regions, err := bio.NewBEDUnionFromPath(bedPath, bio.NewBEDOpts{SAMHeader: header})
	if err != nil {
		return nil, err
	}
	padded, err := padEntries(header, bedPath)
	if err != nil {
		return nil, err
	}
	_ = regions // unpadded union kept only to validate bedPath parses cleanly
	out := shards[:0:0]
	for _, s := range shards {
		if padded.Intersects(refID(header, s.Chrom), bio.PosType(s.Start), refID(header, s.Chrom), bio.PosType(s.End)) {
			out = append(out, s)
		}
	}
	return out, nil
}

// padEntries re-reads the BED file, expanding every interval by
// interestingPad bases on each side and clamping at zero, then builds a
// fresh BEDUnion from the padded entries.
func padEntries(header *sam.Header, bedPath string) (bio.BEDUnion, error) {
	raw, err := bio.NewBEDUnionFromPath(bedPath, bio.NewBEDOpts{SAMHeader: header})
	if err != nil {
		return bio.BEDUnion{}, err
	}
	var entries []bio.Entry
	for _, ref := range header.Refs() {
		start := bio.PosType(0)
		for {
			if !raw.ContainsByName(ref.Name(), start) {
				next := nextContainedStart(&raw, ref.Name(), start, bio.PosType(ref.Len()))
				if next < 0 {
					break
				}
				start = next
				continue
			}
			end := start
			for raw.ContainsByName(ref.Name(), end) {
				end++
			}
			padStart := start - interestingPad
			if padStart < 0 {
				padStart = 0
			}
			padEnd := end + interestingPad
			entries = append(entries, bio.Entry{ChrName: ref.Name(), Start0: padStart, End: padEnd})
			start = end
		}
	}
	return bio.NewBEDUnionFromEntries(entries, bio.NewBEDOpts{SAMHeader: header})
}

// nextContainedStart linearly scans forward for the next position
// contained in raw, returning -1 if none remains below limit. BED files are
// small relative to genome windows, so this is adequate; it is not on any
// per-read hot path.
func nextContainedStart(raw *bio.BEDUnion, chrom string, from, limit bio.PosType) bio.PosType {
	for p := from; p < limit; p++ {
		if raw.ContainsByName(chrom, p) {
			return p
		}
	}
	return -1
}

func refID(header *sam.Header, chrom string) int {
	for _, ref := range header.Refs() {
		if ref.Name() == chrom {
			return ref.ID()
		}
	}
	return -1
}
