package cluster

import (
	"github.com/kpalin/cutesv-go/internal/config"
	"github.com/kpalin/cutesv-go/internal/signature"
)

// ClusterGivenPositions builds one Candidate anchored at an externally
// supplied (chrom, pos[, end]) rather than discovering its position from
// the signature stream, the force-call seam SPEC_FULL.md's supplemented
// features describe: given a set of candidate positions from an input VCF
// (-ivcf), collect the signatures within max_cluster_bias[svtype] of each
// position and genotype whatever support is found there, even below
// min_support. Unlike the discovery clusterers it never filters on read
// count; an empty match still yields a zero-support candidate so the caller
// can emit a homozygous-reference call.
func ClusterGivenPositions(sigs []signature.Signature, kind signature.Kind, chrom string, pos, end int, opts *config.Opts) Candidate {
	bias := opts.MaxClusterBias(string(kind))
	var members []signature.Signature
	for _, s := range sigs {
		if s.Chrom != chrom {
			continue
		}
		switch kind {
		case signature.KindDUP, signature.KindINV:
			if max2(s.Pos, pos) <= min2(s.End, end)+bias {
				members = append(members, s)
			}
		default:
			if absInt(s.Pos-pos) <= bias {
				members = append(members, s)
			}
		}
	}

	c := Candidate{
		Chrom:  chrom,
		SVType: kind,
		Pos:    pos,
		End:    end,
		Length: end - pos,
		CIPos:  "-0,0",
		CILen:  "-0,0",
	}
	if len(members) == 0 {
		return c
	}

	reads := make([]string, 0, len(members))
	seen := make(map[string]bool, len(members))
	var lengths []int
	for _, m := range members {
		if !seen[m.ReadTag] {
			seen[m.ReadTag] = true
			reads = append(reads, m.ReadTag)
		}
		lengths = append(lengths, m.Length)
	}
	c.SupportingReads = reads
	if kind == signature.KindINS || kind == signature.KindDEL {
		c.Length = medianInt(lengths)
		c.RepresentativeSeq = representativeSeq(members, c.Length)
	}
	return c
}
