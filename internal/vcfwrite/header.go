package vcfwrite

import (
	"fmt"
	"io"
)

// Contig names one reference sequence bearing at least one call; only such
// contigs get a ##contig header line, not the full reference dictionary.
type Contig struct {
	Name   string
	Length int
}

// WriteHeader emits the VCF meta-information and column header lines:
// fileformat, one ##contig per contig bearing a call, the
// INFO/FORMAT declarations, and the #CHROM column line naming sample.
func WriteHeader(w io.Writer, contigs []Contig, sample string) error {
	lines := []string{
		"##fileformat=VCFv4.2",
		`##ALT=<ID=INS,Description="Insertion">`,
		`##ALT=<ID=DEL,Description="Deletion">`,
		`##ALT=<ID=DUP,Description="Duplication">`,
		`##ALT=<ID=INV,Description="Inversion">`,
		`##INFO=<ID=SVTYPE,Number=1,Type=String,Description="Type of structural variant">`,
		`##INFO=<ID=SVLEN,Number=1,Type=Integer,Description="Difference in length between REF and ALT alleles">`,
		`##INFO=<ID=END,Number=1,Type=Integer,Description="End position of the variant">`,
		`##INFO=<ID=CIPOS,Number=2,Type=Integer,Description="Confidence interval around POS">`,
		`##INFO=<ID=CILEN,Number=2,Type=Integer,Description="Confidence interval around inserted/deleted material length">`,
		`##INFO=<ID=RE,Number=1,Type=Integer,Description="Number of reads supporting the variant">`,
		`##INFO=<ID=RNAMES,Number=.,Type=String,Description="Names of supporting reads">`,
		`##INFO=<ID=STRAND,Number=1,Type=String,Description="Strand orientation of the adjacency">`,
		`##INFO=<ID=AF,Number=1,Type=Float,Description="Allele frequency">`,
		`##INFO=<ID=PRECISION,Number=1,Type=String,Description="Precise or imprecise structural variation">`,
		`##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`,
		`##FORMAT=<ID=DR,Number=1,Type=Integer,Description="Reference reads">`,
		`##FORMAT=<ID=DV,Number=1,Type=Integer,Description="Variant reads">`,
		`##FORMAT=<ID=PL,Number=G,Type=Integer,Description="Phred-scaled genotype likelihoods">`,
		`##FORMAT=<ID=GQ,Number=1,Type=Integer,Description="Genotype quality">`,
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	for _, c := range contigs {
		if _, err := fmt.Fprintf(w, "##contig=<ID=%s,length=%d>\n", c.Name, c.Length); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\t%s\n", sample)
	return err
}
