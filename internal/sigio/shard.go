// Package sigio is the per-window signature store and cross-window merge:
// Phase-1 workers append to one recordio shard per (window,
// signature kind), sorted before flush; after all windows complete, the
// shards for each kind are k-way merged into a single, globally sorted,
// deduplicated plain-text stream. The recordio+zstd shard format and the
// *os.File-based temp-file handling mirror pileup/snp/pileup.go and
// pileup/snp/output.go's use of recordio.NewWriter/NewScanner over
// temporary shard files.
package sigio

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/recordio"
	"github.com/grailbio/base/recordio/recordiozstd"
	"github.com/kpalin/cutesv-go/internal/signature"
)

func init() {
	recordiozstd.Init()
}

// ShardWriter accumulates the signatures and read descriptors emitted while
// processing a single window, and flushes them as sorted, compressed
// recordio shards under dir on Flush.
type ShardWriter struct {
	dir      string
	windowID string

	sigs  map[signature.Kind][]signature.Signature
	reads []signature.ReadDescriptor
}

// NewShardWriter creates a writer for one window's output. windowID must be
// unique across concurrently running Phase-1 workers.
func NewShardWriter(dir, windowID string) *ShardWriter {
	return &ShardWriter{
		dir:      dir,
		windowID: windowID,
		sigs:     make(map[signature.Kind][]signature.Signature),
	}
}

// AddSignature buffers one signature for this window.
func (w *ShardWriter) AddSignature(s signature.Signature) {
	w.sigs[s.Kind] = append(w.sigs[s.Kind], s)
}

// AddRead buffers one read descriptor for this window's coverage shard.
func (w *ShardWriter) AddRead(r signature.ReadDescriptor) {
	w.reads = append(w.reads, r)
}

// Flush sorts each kind's buffered signatures and the read descriptors, and
// writes one recordio shard per kind plus one reads shard under the shard
// directory, where MergeKind discovers them by listing it. It returns only
// an error.
func (w *ShardWriter) Flush() error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return errors.E(err, fmt.Sprintf("sigio: creating shard dir %q", w.dir))
	}
	for kind, sigs := range w.sigs {
		sort.SliceStable(sigs, func(i, j int) bool { return signature.Less(sigs[i], sigs[j]) })
		if err := writeSigShard(w.sigShardPath(kind), sigs); err != nil {
			return err
		}
	}
	sort.SliceStable(w.reads, func(i, j int) bool {
		a, b := w.reads[i], w.reads[j]
		if a.Chrom != b.Chrom {
			return a.Chrom < b.Chrom
		}
		return a.RefStart < b.RefStart
	})
	return writeReadShard(w.readShardPath(), w.reads)
}

func (w *ShardWriter) sigShardPath(kind signature.Kind) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s.%s.rio", w.windowID, kind))
}

func (w *ShardWriter) readShardPath() string {
	return filepath.Join(w.dir, fmt.Sprintf("%s.reads.rio", w.windowID))
}

func writeSigShard(path string, sigs []signature.Signature) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.E(err, fmt.Sprintf("sigio: creating shard %q", path))
	}
	defer f.Close()
	w := recordio.NewWriter(f, recordio.WriterOpts{
		Marshal:      marshalSigLine,
		Transformers: []string{recordiozstd.Name},
	})
	for i := range sigs {
		w.Append(sigs[i])
	}
	return w.Finish()
}

func writeReadShard(path string, reads []signature.ReadDescriptor) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.E(err, fmt.Sprintf("sigio: creating reads shard %q", path))
	}
	defer f.Close()
	w := recordio.NewWriter(f, recordio.WriterOpts{
		Marshal:      marshalReadLine,
		Transformers: []string{recordiozstd.Name},
	})
	for i := range reads {
		w.Append(reads[i])
	}
	return w.Finish()
}

func marshalSigLine(scratch []byte, v interface{}) ([]byte, error) {
	return append(scratch[:0], v.(signature.Signature).Encode()...), nil
}

func unmarshalSigLine(b []byte) (interface{}, error) {
	return signature.Decode(string(b))
}

func marshalReadLine(scratch []byte, v interface{}) ([]byte, error) {
	return append(scratch[:0], v.(signature.ReadDescriptor).Encode()...), nil
}

func unmarshalReadLine(b []byte) (interface{}, error) {
	return signature.DecodeRead(string(b))
}

// ReadSigShard decodes every signature written to one shard file, in the
// order it was written (already sorted by ShardWriter.Flush).
func ReadSigShard(path string) ([]signature.Signature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.E(err, fmt.Sprintf("sigio: opening shard %q", path))
	}
	defer f.Close()
	scanner := recordio.NewScanner(f, recordio.ScannerOpts{Unmarshal: unmarshalSigLine})
	var out []signature.Signature
	for scanner.Scan() {
		out = append(out, scanner.Get().(signature.Signature))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(err, fmt.Sprintf("sigio: scanning shard %q", path))
	}
	return out, nil
}

// ReadReadShard decodes every read descriptor written to one reads shard.
func ReadReadShard(path string) ([]signature.ReadDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.E(err, fmt.Sprintf("sigio: opening reads shard %q", path))
	}
	defer f.Close()
	scanner := recordio.NewScanner(f, recordio.ScannerOpts{Unmarshal: unmarshalReadLine})
	var out []signature.ReadDescriptor
	for scanner.Scan() {
		out = append(out, scanner.Get().(signature.ReadDescriptor))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(err, fmt.Sprintf("sigio: scanning reads shard %q", path))
	}
	return out, nil
}
