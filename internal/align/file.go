package align

import (
	"os"

	"github.com/biogo/hts/bam"
)

// fileHandle wraps the underlying *os.File so bamIterator.Close can release
// it; each worker thread opens its own handle independently rather than
// sharing one across goroutines.
type fileHandle struct{ f *os.File }

func openBAM(path string) (*fileHandle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &fileHandle{f: f}, nil
}

func (h *fileHandle) Close() error { return h.f.Close() }

func loadIndex(path string) (*bam.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return bam.ReadIndex(f)
}
