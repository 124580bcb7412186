// Package config defines the runtime configuration for the structural
// variant caller and its validation against the preconditions the rest of
// the pipeline relies on.
package config

import (
	"fmt"
	"os"

	"github.com/grailbio/base/errors"
)

// Opts holds every tunable of the caller, one field per CLI flag described
// in cmd/cutesv-go. It is passed as a *Opts pointer into the leaf packages.
type Opts struct {
	Input     string // alignment container path (BAM)
	Reference string // indexed reference FASTA path
	Output    string // output variant file path
	WorkDir   string // scratch directory for signature shards

	Threads int
	Batches int // window size in bases, per chromosome

	MinSize int // minimum SV length retained at output time
	MaxSize int // maximum SV length retained; -1 disables the upper bound

	MinMapQ       int
	MinReadLen    int
	MaxSplitParts int

	MinSupport   int
	MinSigLength int

	MergeDelThreshold int
	MergeInsThreshold int

	DiffRatioMergingIns float64
	DiffRatioMergingDel float64

	MaxClusterBiasIns int
	MaxClusterBiasDel int
	MaxClusterBiasDup int
	MaxClusterBiasInv int
	MaxClusterBiasTra int

	DiffRatioFilteringTra float64

	GtRound          int
	RemainReadsRatio float64

	IncludeBed string // optional BED of regions of interest
	IVcf       string // optional force-call input variant file

	Sample        string
	ReportReadID  bool
	Genotype      bool
	RetainWorkDir bool
	MaxRefAllele  int
	Verbose       int
}

// DefaultOpts mirrors cuteSV's published defaults, translated to the field
// names above. Analogous to fusion.DefaultOpts / pileup/snp.DefaultOpts.
var DefaultOpts = Opts{
	Threads:               16,
	Batches:               10000000,
	MinSize:               30,
	MaxSize:               100000,
	MinMapQ:               20,
	MinReadLen:            500,
	MaxSplitParts:         7,
	MinSupport:            10,
	MinSigLength:          30,
	MergeDelThreshold:     0,
	MergeInsThreshold:     100,
	DiffRatioMergingIns:   0.3,
	DiffRatioMergingDel:   0.3,
	MaxClusterBiasIns:     100,
	MaxClusterBiasDel:     200,
	MaxClusterBiasDup:     500,
	MaxClusterBiasInv:     500,
	MaxClusterBiasTra:     50,
	DiffRatioFilteringTra: 0.6,
	GtRound:               500,
	RemainReadsRatio:      1.0,
	Sample:                "SAMPLE",
	MaxRefAllele:          256,
}

// Validate checks the preconditions that are fatal if violated: missing
// reference, unreadable alignment file, multi-read-group inputs are left to
// the caller (it has to inspect the header), but path-level checks belong
// here so they fail before any worker is spawned.
func (o *Opts) Validate() error {
	if o.Input == "" {
		return errors.New("config: -input is required")
	}
	if _, err := os.Stat(o.Input); err != nil {
		return errors.E(err, fmt.Sprintf("config: alignment container %q is not readable", o.Input))
	}
	if o.Reference == "" {
		return errors.New("config: -reference is required")
	}
	if _, err := os.Stat(o.Reference); err != nil {
		return errors.E(err, fmt.Sprintf("config: reference %q is not readable", o.Reference))
	}
	if o.Output == "" {
		return errors.New("config: -output is required")
	}
	if o.WorkDir == "" {
		return errors.New("config: -work_dir is required")
	}
	if o.Threads <= 0 {
		return errors.New("config: -threads must be positive")
	}
	if o.Batches <= 0 {
		return errors.New("config: -batches must be positive")
	}
	if o.MaxSize != -1 && o.MaxSize < o.MinSize {
		return errors.New("config: -max_size must be -1 or >= -min_size")
	}
	if o.MinSupport <= 0 {
		return errors.New("config: -min_support must be positive")
	}
	if o.RemainReadsRatio <= 0 || o.RemainReadsRatio > 1 {
		return errors.New("config: -remain_reads_ratio must be in (0, 1]")
	}
	return nil
}

// MaxClusterBias returns the per-SV-type clustering bias, indexed by
// signature.Kind, mirroring max_cluster_bias[svtype] map.
func (o *Opts) MaxClusterBias(kind string) int {
	switch kind {
	case "INS":
		return o.MaxClusterBiasIns
	case "DEL":
		return o.MaxClusterBiasDel
	case "DUP":
		return o.MaxClusterBiasDup
	case "INV":
		return o.MaxClusterBiasInv
	case "TRA":
		return o.MaxClusterBiasTra
	default:
		panic("config: unknown SV kind " + kind)
	}
}

// DiffRatioMerging returns the length-similarity merging ratio for INS/DEL
// clustering.
func (o *Opts) DiffRatioMerging(kind string) float64 {
	switch kind {
	case "INS":
		return o.DiffRatioMergingIns
	case "DEL":
		return o.DiffRatioMergingDel
	default:
		panic("config: DiffRatioMerging only applies to INS/DEL, got " + kind)
	}
}

// ThresholdRefCount returns the SV-type-dependent coverage-counting
// short-circuit threshold, as a function of min_support.
func ThresholdRefCount(minSupport int) int {
	switch {
	case minSupport <= 2:
		return 20 * minSupport
	case minSupport <= 5:
		return 9 * minSupport
	case minSupport <= 15:
		return 7 * minSupport
	default:
		return 5 * minSupport
	}
}
