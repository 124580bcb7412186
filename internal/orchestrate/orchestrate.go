// Package orchestrate runs the two-phase worker pool:
// Phase 1 fans a window-extraction task out per genomic shard; Phase 2 fans
// a cluster+genotype task out per (chrom, svtype) plus one per ordered
// (chrom1, chrom2) pair for TRA. Both phases are driven by
// github.com/grailbio/base/traverse.Each, the same fan-out primitive
// pileup/snp/pileup.go's main loop uses.
package orchestrate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/traverse"

	"github.com/kpalin/cutesv-go/internal/align"
	"github.com/kpalin/cutesv-go/internal/cluster"
	"github.com/kpalin/cutesv-go/internal/config"
	"github.com/kpalin/cutesv-go/internal/genotype"
	"github.com/kpalin/cutesv-go/internal/sigextract"
	"github.com/kpalin/cutesv-go/internal/sigio"
	"github.com/kpalin/cutesv-go/internal/signature"
	"github.com/kpalin/cutesv-go/internal/vcfwrite"
	"github.com/kpalin/cutesv-go/internal/window"
)

// insDelDupInvKinds are the four SV kinds clustered per (chrom, svtype);
// TRA is handled separately, per ordered chromosome pair.
var insDelDupInvKinds = []signature.Kind{
	signature.KindINS, signature.KindDEL, signature.KindDUP, signature.KindINV,
}

// Run executes the full caller: Phase 1 extraction, Phase 2
// cluster+genotype, and the final sorted VCF write.
func Run(provider align.Provider, opts *config.Opts) (err error) {
	header, err := provider.Header()
	if err != nil {
		return errors.E(err, "orchestrate: reading alignment header")
	}

	shards := window.Plan(header, opts.Batches)
	shards, err = window.FilterByBED(header, shards, opts.IncludeBed)
	if err != nil {
		return err
	}

	shardDir := filepath.Join(opts.WorkDir, "signatures")
	if err := extractPhase(provider, shards, shardDir, opts); err != nil {
		return err
	}

	calls, contigs, err := clusterPhase(header, shardDir, opts)
	if err != nil {
		return err
	}

	out, err := os.Create(opts.Output)
	if err != nil {
		return errors.E(err, "orchestrate: creating output file")
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := vcfwrite.WriteHeader(out, contigs, opts.Sample); err != nil {
		return errors.E(err, "orchestrate: writing header")
	}
	w := vcfwrite.NewWriter(out, nil, opts)
	for _, c := range calls {
		if err := w.WriteCall(c); err != nil {
			return errors.E(err, "orchestrate: writing call")
		}
	}

	if !opts.RetainWorkDir {
		if rmErr := os.RemoveAll(opts.WorkDir); rmErr != nil {
			return errors.E(rmErr, "orchestrate: cleaning work directory")
		}
	}
	return nil
}

// extractPhase is Phase 1: one independent task per window,
// each writing its own uniquely named shard under shardDir. A failure in
// any task cancels the remaining ones and is re-raised (traverse.Each's
// built-in fail-fast), leaving whatever shards were already written in
// place.
func extractPhase(provider align.Provider, shards []window.Shard, shardDir string, opts *config.Opts) error {
	return traverse.Each(len(shards), func(i int) error {
		s := shards[i]
		windowID := fmt.Sprintf("%s_%d_%d", s.Chrom, s.Start, s.End)
		it := provider.Iterator(s.Chrom, s.Start, s.End)
		defer it.Close()

		w := sigio.NewShardWriter(shardDir, windowID)
		for it.Scan() {
			a := it.Alignment()
			primary := align.IsPrimary(a.Flag)
			w.AddRead(signature.ReadDescriptor{
				Chrom:     a.Chrom,
				RefStart:  a.RefStart,
				RefEnd:    a.RefEnd,
				IsPrimary: primary,
				ReadTag:   align.ReadTag(a.Name, a.ReadGroup),
			})
			if !primary || !sigextract.Gate(a, opts) {
				continue
			}
			for _, sig := range sigextract.ExtractInAlignment(a, opts) {
				w.AddSignature(sig)
			}
			for _, sig := range sigextract.ExtractSplit(a, opts) {
				w.AddSignature(sig)
			}
		}
		if err := it.Err(); err != nil {
			return errors.E(err, "orchestrate: scanning window "+windowID)
		}
		return w.Flush()
	})
}

// clusterPhase is Phase 2. It first merges the five per-kind
// signature streams (one traverse.Each task per kind), then fans out one
// task per (chrom, svtype) plus one per TRA chromosome pair.
func clusterPhase(header *sam.Header, shardDir string, opts *config.Opts) ([]genotype.Call, []vcfwrite.Contig, error) {
	mergedPaths := make(map[signature.Kind]string, 5)
	kinds := append(append([]signature.Kind{}, insDelDupInvKinds...), signature.KindTRA)
	for _, k := range kinds {
		mergedPaths[k] = filepath.Join(shardDir, fmt.Sprintf("merged.%s.tsv", k))
	}
	if err := traverse.Each(len(kinds), func(i int) error {
		return sigio.MergeKind(shardDir, kinds[i], mergedPaths[kinds[i]])
	}); err != nil {
		return nil, nil, errors.E(err, "orchestrate: merging signature shards")
	}

	reads, err := sigio.LoadAllReads(shardDir)
	if err != nil {
		return nil, nil, errors.E(err, "orchestrate: loading read coverage")
	}

	refOrder := make(map[string]int, len(header.Refs()))
	refLen := make(map[string]int, len(header.Refs()))
	for i, ref := range header.Refs() {
		refOrder[ref.Name()] = i
		refLen[ref.Name()] = ref.Len()
	}

	tasks, err := planGenotypeTasks(header, mergedPaths, opts)
	if err != nil {
		return nil, nil, err
	}

	results := make([][]genotype.Call, len(tasks))
	if err := traverse.Each(len(tasks), func(i int) error {
		results[i] = genotypeTask(tasks[i], reads, opts)
		return nil
	}); err != nil {
		return nil, nil, errors.E(err, "orchestrate: cluster+genotype phase")
	}

	var calls []genotype.Call
	contigSeen := map[string]bool{}
	for _, r := range results {
		for _, c := range r {
			calls = append(calls, c)
			contigSeen[c.Chrom] = true
		}
	}
	sort.SliceStable(calls, func(i, j int) bool {
		oi, oj := refOrder[calls[i].Chrom], refOrder[calls[j].Chrom]
		if oi != oj {
			return oi < oj
		}
		return calls[i].Pos < calls[j].Pos
	})

	var contigs []vcfwrite.Contig
	var names []string
	for name := range contigSeen {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return refOrder[names[i]] < refOrder[names[j]] })
	for _, name := range names {
		contigs = append(contigs, vcfwrite.Contig{Name: name, Length: refLen[name]})
	}
	return calls, contigs, nil
}

// genotypeTask is one Phase-2 unit of work: either a (chrom, svtype)
// cluster+genotype, or a TRA chromosome-pair cluster+genotype.
type genotypeTask struct {
	kind  signature.Kind
	chrom string
	sigs  []signature.Signature
}

func planGenotypeTasks(header *sam.Header, mergedPaths map[signature.Kind]string, opts *config.Opts) ([]genotypeTask, error) {
	var tasks []genotypeTask
	for _, kind := range insDelDupInvKinds {
		sigs, err := sigio.ReadMergedAll(mergedPaths[kind])
		if err != nil {
			return nil, err
		}
		byChrom := map[string][]signature.Signature{}
		for _, s := range sigs {
			byChrom[s.Chrom] = append(byChrom[s.Chrom], s)
		}
		for _, ref := range header.Refs() {
			if members, ok := byChrom[ref.Name()]; ok {
				tasks = append(tasks, genotypeTask{kind: kind, chrom: ref.Name(), sigs: members})
			}
		}
	}

	traSigs, err := sigio.ReadMergedAll(mergedPaths[signature.KindTRA])
	if err != nil {
		return nil, err
	}
	type pairKey struct{ a, b string }
	byPair := map[pairKey][]signature.Signature{}
	var pairOrder []pairKey
	for _, s := range traSigs {
		key := pairKey{s.Chrom, s.Chrom2}
		if _, ok := byPair[key]; !ok {
			pairOrder = append(pairOrder, key)
		}
		byPair[key] = append(byPair[key], s)
	}
	for _, key := range pairOrder {
		tasks = append(tasks, genotypeTask{kind: signature.KindTRA, chrom: key.a, sigs: byPair[key]})
	}
	return tasks, nil
}

func genotypeTask(t genotypeTask, reads map[string][]signature.ReadDescriptor, opts *config.Opts) []genotype.Call {
	var candidates []cluster.Candidate
	switch t.kind {
	case signature.KindINS, signature.KindDEL:
		candidates = cluster.ClusterInsDel(t.sigs, t.kind, opts)
	case signature.KindDUP, signature.KindINV:
		candidates = cluster.ClusterDupInv(t.sigs, t.kind, opts)
	case signature.KindTRA:
		candidates = cluster.ClusterTra(t.sigs, opts)
	}
	candidates = cluster.SizeGate(candidates, opts)

	chromReads := reads[t.chrom]
	calls := make([]genotype.Call, len(candidates))
	for i, c := range candidates {
		calls[i] = genotype.Genotype(c, chromReads, opts)
	}
	return calls
}
