package align

import "github.com/biogo/hts/sam"

// FakeProvider is only for unittests; it serves the given Alignments whose
// chrom matches and whose RefStart lies in the requested window, the way
// bamprovider.NewFakeProvider serves canned sam.Records.
type FakeProvider struct {
	header *sam.Header
	aligns []Alignment
}

// NewFakeProvider constructs a Provider over an in-memory set of
// alignments, for use by tests (internal/orchestrate's) that don't need
// real BAM I/O.
func NewFakeProvider(header *sam.Header, aligns []Alignment) *FakeProvider {
	return &FakeProvider{header: header, aligns: aligns}
}

func (p *FakeProvider) Header() (*sam.Header, error) { return p.header, nil }
func (p *FakeProvider) Close() error                 { return nil }

func (p *FakeProvider) Iterator(chrom string, start, end int) Iterator {
	var matches []Alignment
	for _, a := range p.aligns {
		if a.Chrom == chrom && a.RefStart >= start && a.RefStart < end {
			matches = append(matches, a)
		}
	}
	return &fakeIterator{aligns: matches, idx: -1}
}

type fakeIterator struct {
	aligns []Alignment
	idx    int
}

func (i *fakeIterator) Scan() bool {
	i.idx++
	return i.idx < len(i.aligns)
}

func (i *fakeIterator) Alignment() Alignment { return i.aligns[i.idx] }
func (i *fakeIterator) Err() error           { return nil }
func (i *fakeIterator) Close() error         { return nil }
