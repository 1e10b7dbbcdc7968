package uniprot

import "strings"

// Record is one row of the knowledge base result set.
type Record struct {
	// Protein is the protein entry IRI.
	Protein string

	// Name is the protein's display name.
	Name string

	// Link is the nucleotide cross-reference IRI.
	Link string

	// AASequence is the amino acid sequence, when requested.
	AASequence string
}

// Accession derives the nucleotide accession from the cross-reference link
// by taking the final path segment of the IRI.
func (r Record) Accession() string {
	link := strings.TrimSuffix(r.Link, "/")
	if i := strings.LastIndex(link, "/"); i >= 0 {
		return link[i+1:]
	}
	return link
}
