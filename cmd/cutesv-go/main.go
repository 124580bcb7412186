package main

// cutesv-go calls structural variants from a long-read alignment file.
//
// Usage: cutesv-go -input reads.bam -reference ref.fa -output calls.vcf -work_dir /tmp/cutesv-go

import (
	"flag"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/kpalin/cutesv-go/internal/align"
	"github.com/kpalin/cutesv-go/internal/config"
	"github.com/kpalin/cutesv-go/internal/orchestrate"
)

var (
	inputFlag     = flag.String("input", "", "Path to the coordinate-sorted, indexed BAM file of long-read alignments")
	referenceFlag = flag.String("reference", "", "Path to the indexed reference FASTA")
	outputFlag    = flag.String("output", "", "Path of the VCF file to write")
	workDirFlag   = flag.String("work_dir", "", "Scratch directory for intermediate signature shards")

	threadsFlag = flag.Int("threads", config.DefaultOpts.Threads, "Accepted but not consulted; the worker pools run one goroutine per window or cluster task")
	batchesFlag = flag.Int("batches", config.DefaultOpts.Batches, "Window size, in bases, per chromosome shard")

	minSizeFlag = flag.Int("min_size", config.DefaultOpts.MinSize, "Minimum SV length reported")
	maxSizeFlag = flag.Int("max_size", config.DefaultOpts.MaxSize, "Maximum SV length reported; -1 disables the upper bound")

	minMapQFlag        = flag.Int("min_mapq", config.DefaultOpts.MinMapQ, "Minimum mapping quality to extract signatures from a read")
	minReadLenFlag     = flag.Int("min_read_len", config.DefaultOpts.MinReadLen, "Minimum query length to extract signatures from a read")
	maxSplitPartsFlag  = flag.Int("max_split_parts", config.DefaultOpts.MaxSplitParts, "Maximum number of alignment parts (primary plus supplementary) of a split read; reads with more parts contribute no split-read signatures")
	minSupportFlag     = flag.Int("min_support", config.DefaultOpts.MinSupport, "Minimum number of supporting reads per SV candidate")
	minSigLengthFlag   = flag.Int("min_sig_length", config.DefaultOpts.MinSigLength, "Minimum length of a CIGAR insertion or deletion extracted as a signature")

	mergeDelThresholdFlag = flag.Int("merge_del_threshold", config.DefaultOpts.MergeDelThreshold, "Gap at or below which adjacent deletion signatures in one read are merged")
	mergeInsThresholdFlag = flag.Int("merge_ins_threshold", config.DefaultOpts.MergeInsThreshold, "Gap at or below which adjacent insertion signatures in one read are merged")

	diffRatioMergingInsFlag = flag.Float64("diff_ratio_merging_ins", config.DefaultOpts.DiffRatioMergingIns, "Length-similarity ratio for INS sub-clustering")
	diffRatioMergingDelFlag = flag.Float64("diff_ratio_merging_del", config.DefaultOpts.DiffRatioMergingDel, "Length-similarity ratio for DEL sub-clustering")

	maxClusterBiasInsFlag = flag.Int("max_cluster_bias_ins", config.DefaultOpts.MaxClusterBiasIns, "Position clustering bias for INS")
	maxClusterBiasDelFlag = flag.Int("max_cluster_bias_del", config.DefaultOpts.MaxClusterBiasDel, "Position clustering bias for DEL")
	maxClusterBiasDupFlag = flag.Int("max_cluster_bias_dup", config.DefaultOpts.MaxClusterBiasDup, "Position clustering bias for DUP")
	maxClusterBiasInvFlag = flag.Int("max_cluster_bias_inv", config.DefaultOpts.MaxClusterBiasInv, "Position clustering bias for INV")
	maxClusterBiasTraFlag = flag.Int("max_cluster_bias_tra", config.DefaultOpts.MaxClusterBiasTra, "Position clustering bias for TRA breakends")

	diffRatioFilteringTraFlag = flag.Float64("diff_ratio_filtering_tra", config.DefaultOpts.DiffRatioFilteringTra, "Gap-spread ratio threshold for TRA cluster admission")

	gtRoundFlag          = flag.Int("gt_round", config.DefaultOpts.GtRound, "Maximum number of reads sampled per candidate during genotyping")
	remainReadsRatioFlag = flag.Float64("remain_reads_ratio", config.DefaultOpts.RemainReadsRatio, "Fraction of a candidate's distinct supporting reads retained when it has more than 1000 of them")

	includeBedFlag = flag.String("include_bed", "", "Restrict calling to the regions in this BED file")
	iVcfFlag       = flag.String("ivcf", "", "Accepted but not consulted; variants are always discovered from the alignments")

	sampleFlag        = flag.String("sample", config.DefaultOpts.Sample, "Sample name written to the VCF header and genotype column")
	reportReadIDFlag  = flag.Bool("report_readid", config.DefaultOpts.ReportReadID, "Include RNAMES in the INFO column")
	genotypeFlag      = flag.Bool("genotype", config.DefaultOpts.Genotype, "Accepted but not consulted; genotype likelihoods are always computed")
	retainWorkDirFlag = flag.Bool("retain_work_dir", config.DefaultOpts.RetainWorkDir, "Keep the scratch work directory after completion")
	maxRefAlleleFlag  = flag.Int("max_ref_allele_len", config.DefaultOpts.MaxRefAllele, "Accepted but not consulted; the REF column always holds a single base")
	verboseFlag       = flag.Int("verbose", config.DefaultOpts.Verbose, "Accepted but not consulted by the logging setup")
)

func optsFromFlags() *config.Opts {
	o := config.DefaultOpts
	o.Input = *inputFlag
	o.Reference = *referenceFlag
	o.Output = *outputFlag
	o.WorkDir = *workDirFlag
	o.Threads = *threadsFlag
	o.Batches = *batchesFlag
	o.MinSize = *minSizeFlag
	o.MaxSize = *maxSizeFlag
	o.MinMapQ = *minMapQFlag
	o.MinReadLen = *minReadLenFlag
	o.MaxSplitParts = *maxSplitPartsFlag
	o.MinSupport = *minSupportFlag
	o.MinSigLength = *minSigLengthFlag
	o.MergeDelThreshold = *mergeDelThresholdFlag
	o.MergeInsThreshold = *mergeInsThresholdFlag
	o.DiffRatioMergingIns = *diffRatioMergingInsFlag
	o.DiffRatioMergingDel = *diffRatioMergingDelFlag
	o.MaxClusterBiasIns = *maxClusterBiasInsFlag
	o.MaxClusterBiasDel = *maxClusterBiasDelFlag
	o.MaxClusterBiasDup = *maxClusterBiasDupFlag
	o.MaxClusterBiasInv = *maxClusterBiasInvFlag
	o.MaxClusterBiasTra = *maxClusterBiasTraFlag
	o.DiffRatioFilteringTra = *diffRatioFilteringTraFlag
	o.GtRound = *gtRoundFlag
	o.RemainReadsRatio = *remainReadsRatioFlag
	o.IncludeBed = *includeBedFlag
	o.IVcf = *iVcfFlag
	o.Sample = *sampleFlag
	o.ReportReadID = *reportReadIDFlag
	o.Genotype = *genotypeFlag
	o.RetainWorkDir = *retainWorkDirFlag
	o.MaxRefAllele = *maxRefAlleleFlag
	o.Verbose = *verboseFlag
	return &o
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	flag.Usage = func() {
		os.Stderr.WriteString(`Usage: cutesv-go -input reads.bam -reference ref.fa -output calls.vcf -work_dir /tmp/cutesv-go

Calls insertions, deletions, duplications, inversions, and translocation
breakends from a coordinate-sorted, indexed long-read BAM file.
`)
		flag.PrintDefaults()
	}
	shutdown := grail.Init()
	defer shutdown()

	opts := optsFromFlags()
	if err := opts.Validate(); err != nil {
		log.Panicf("cutesv-go: %v", err)
	}
	if err := os.MkdirAll(opts.WorkDir, 0755); err != nil {
		log.Panicf("cutesv-go: creating work dir %v: %v", opts.WorkDir, err)
	}

	provider := &align.BAMProvider{Path: opts.Input}
	defer func() {
		if cerr := provider.Close(); cerr != nil {
			log.Printf("cutesv-go: closing alignment container: %v", cerr)
		}
	}()

	if err := orchestrate.Run(provider, opts); err != nil {
		log.Panicf("cutesv-go: %v", err)
	}
}
