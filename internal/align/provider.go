package align

import (
	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/grailbio/base/errors"
)

// Provider reads alignments, primary or not, from a BAM-like container in parallel,
// narrowed from grailbio/bio/encoding/bamprovider's Provider/Iterator pair.
type Provider interface {
	// Header returns the reference dictionary, used to order output lines
	// by the same chrom ordering the reference header declares.
	Header() (*sam.Header, error)

	// Iterator returns every alignment on chrom whose start position lies in
	// [start, end), in coordinate order, primary or not; an alignment that
	// starts before start and reaches into the window is not returned, so
	// each alignment belongs to exactly one window. Signature extraction still
	// restricts itself to IsPrimary(a.Flag) alignments, but coverage
	// accounting needs to see the non-primary records too.
	Iterator(chrom string, start, end int) Iterator

	Close() error
}

// Iterator walks alignments in ascending reference-position order.
type Iterator interface {
	// Scan advances to the next alignment, primary or not, returning false at end
	// of range or on error (check Err()).
	Scan() bool

	// Alignment returns the current record. Valid only after Scan() == true.
	Alignment() Alignment

	Err() error
	Close() error
}

// BAMProvider is a Provider backed by a single indexed BAM file, opened
// independently per caller the way bamprovider.BAMProvider's
// allocateIterator does: threads never share a *bam.Reader.
type BAMProvider struct {
	Path    string
	Index   string // defaults to Path + ".bai"
	KeepSeq bool   // whether Iterator.Alignment() populates QuerySequence
}

type bamIterator struct {
	p       *BAMProvider
	file    *fileHandle
	reader  *bam.Reader
	it      *bam.Iterator
	start   int
	end     int
	refName string
	cur     Alignment
	err     error
}

// Header opens the file just long enough to read its header. The
// orchestrator calls it once, before the window scan, matching
// bamprovider.BAMProvider.GetHeader.
func (p *BAMProvider) Header() (*sam.Header, error) {
	fh, err := openBAM(p.Path)
	if err != nil {
		return nil, errors.E(err, "align: opening BAM for header")
	}
	defer fh.Close()
	r, err := bam.NewReader(fh.f, 0)
	if err != nil {
		return nil, errors.E(err, "align: reading BAM header")
	}
	return r.Header(), nil
}

// Iterator opens a fresh file handle and index lookup for [chrom:start,
// chrom:end); this mirrors bamIterator.reset's per-call chunk lookup.
func (p *BAMProvider) Iterator(chrom string, start, end int) Iterator {
	fh, err := openBAM(p.Path)
	if err != nil {
		return &errIterator{err: errors.E(err, "align: opening BAM")}
	}
	r, err := bam.NewReader(fh.f, 0)
	if err != nil {
		fh.Close()
		return &errIterator{err: errors.E(err, "align: reading BAM header")}
	}
	idx, err := loadIndex(p.indexPath())
	if err != nil {
		fh.Close()
		return &errIterator{err: errors.E(err, "align: loading BAM index")}
	}
	header := r.Header()
	ref := refByName(header, chrom)
	if ref == nil {
		fh.Close()
		return &errIterator{err: errors.New("align: chromosome " + chrom + " not found in header")}
	}
	chunks, err := idx.Chunks(ref, start, end)
	if err != nil {
		fh.Close()
		return &errIterator{err: errors.E(err, "align: indexing "+chrom)}
	}
	it, err := bam.NewIterator(r, chunks)
	if err != nil {
		fh.Close()
		return &errIterator{err: errors.E(err, "align: constructing iterator")}
	}
	return &bamIterator{p: p, file: fh, reader: r, it: it, start: start, end: end, refName: chrom}
}

func (p *BAMProvider) indexPath() string {
	if p.Index != "" {
		return p.Index
	}
	return p.Path + ".bai"
}

func (p *BAMProvider) Close() error { return nil }

// Scan implements Iterator. It skips records whose start lies outside
// [start, end) but otherwise passes every alignment through, primary or
// not: callers that only want primary alignments check IsPrimary(a.Flag)
// themselves, the way count_coverage's source loop inspects every fetched
// record before filtering on flag.
func (i *bamIterator) Scan() bool {
	for i.it.Next() {
		rec := i.it.Record()
		if rec.Start() < i.start || rec.Start() >= i.end {
			continue
		}
		a, err := FromRecord(rec, i.p.KeepSeq)
		if err != nil {
			// Per-alignment parse errors are recoverable: skip this
			// record, keep scanning.
			continue
		}
		i.cur = a
		return true
	}
	i.err = i.it.Error()
	return false
}

func (i *bamIterator) Alignment() Alignment { return i.cur }
func (i *bamIterator) Err() error           { return i.err }
func (i *bamIterator) Close() error {
	if i.file != nil {
		return i.file.Close()
	}
	return nil
}

// errIterator is a zero-record Iterator wrapping a construction error,
// matching bamprovider.NewErrorIterator's shape.
type errIterator struct{ err error }

func (e *errIterator) Scan() bool        { return false }
func (e *errIterator) Alignment() Alignment { return Alignment{} }
func (e *errIterator) Err() error        { return e.err }
func (e *errIterator) Close() error      { return nil }

func refByName(h *sam.Header, name string) *sam.Reference {
	for _, ref := range h.Refs() {
		if ref.Name() == name {
			return ref
		}
	}
	return nil
}
