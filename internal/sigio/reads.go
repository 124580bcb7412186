package sigio

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/kpalin/cutesv-go/internal/signature"
)

// LoadAllReads reads every per-window reads shard under dir and groups the
// descriptors by chromosome, for Phase 2's coverage sweep.
// A primary alignment belongs to exactly one window, so no cross-shard
// deduplication is needed here the way MergeKind needs it for signatures.
func LoadAllReads(dir string) (map[string][]signature.ReadDescriptor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.E(err, fmt.Sprintf("sigio: reading shard dir %q", dir))
	}
	out := make(map[string][]signature.ReadDescriptor)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".reads.rio") {
			continue
		}
		reads, err := ReadReadShard(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		for _, r := range reads {
			out[r.Chrom] = append(out[r.Chrom], r)
		}
	}
	return out, nil
}

// ReadMergedAll decodes every line of a MergeKind output stream.
func ReadMergedAll(path string) ([]signature.Signature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.E(err, fmt.Sprintf("sigio: opening merged stream %q", path))
	}
	defer f.Close()

	var out []signature.Signature
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		s, err := signature.Decode(sc.Text())
		if err != nil {
			return nil, errors.E(err, fmt.Sprintf("sigio: decoding %q", path))
		}
		out = append(out, s)
	}
	return out, sc.Err()
}
