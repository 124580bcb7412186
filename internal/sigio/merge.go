package sigio

import (
	"bufio"
	"container/heap"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/kpalin/cutesv-go/internal/signature"
)

// MergeKind k-way merges every per-window shard for one signature kind
// under dir into a single globally sorted stream at outPath, eliding exact
// duplicate lines.
func MergeKind(dir string, kind signature.Kind, outPath string) error {
	paths, err := shardPaths(dir, kind)
	if err != nil {
		return err
	}
	streams := make([]*sigStream, 0, len(paths))
	for _, p := range paths {
		sigs, err := ReadSigShard(p)
		if err != nil {
			return err
		}
		if len(sigs) == 0 {
			continue
		}
		streams = append(streams, &sigStream{sigs: sigs})
	}

	out, err := os.Create(outPath)
	if err != nil {
		return errors.E(err, fmt.Sprintf("sigio: creating merged output %q", outPath))
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	h := sigHeap(streams)
	heap.Init(&h)
	var last string
	haveLast := false
	for h.Len() > 0 {
		s := h[0]
		line := s.sigs[s.idx].Encode()
		if !haveLast || line != last {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
			last = line
			haveLast = true
		}
		s.idx++
		if s.idx >= len(s.sigs) {
			heap.Pop(&h)
		} else {
			heap.Fix(&h, 0)
		}
	}
	return w.Flush()
}

// shardPaths lists every per-window shard file for kind under dir, in
// deterministic (sorted) order so that MergeKind is reproducible independent of
// filesystem directory-listing order.
func shardPaths(dir string, kind signature.Kind) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.E(err, fmt.Sprintf("sigio: reading shard dir %q", dir))
	}
	suffix := "." + string(kind) + ".rio"
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

type sigStream struct {
	sigs []signature.Signature
	idx  int
}

// sigHeap is a min-heap over the current head of each per-window stream,
// ordered by signature.Less, implementing the k-way merge's frontier.
type sigHeap []*sigStream

func (h sigHeap) Len() int { return len(h) }
func (h sigHeap) Less(i, j int) bool {
	return signature.Less(h[i].sigs[h[i].idx], h[j].sigs[h[j].idx])
}
func (h sigHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *sigHeap) Push(x interface{}) { *h = append(*h, x.(*sigStream)) }
func (h *sigHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
