package uniprot

import (
	"fmt"
	"strings"
)

// queryPrefixes declares the vocabularies the classification query uses.
const queryPrefixes = `PREFIX xsd: <http://www.w3.org/2001/XMLSchema#>
PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
PREFIX up: <http://purl.uniprot.org/core/>
PREFIX go: <http://purl.obolibrary.org/obo/GO_>`

// nucleotideDatabase is the cross-reference database label records must
// link to for their accession to be downloadable from the sequence archive.
const nucleotideDatabase = "EMBL nucleotide sequence database"

// ValidateTerm checks that a GO term consists entirely of digit characters.
// Leading zeros are significant (GO_0005737 and GO_5737 name different
// terms), so terms are never parsed as integers.
func ValidateTerm(term string) error {
	if term == "" {
		return fmt.Errorf("empty GO term")
	}
	for _, r := range term {
		if r < '0' || r > '9' {
			return fmt.Errorf("invalid GO term %q: must contain only digits", term)
		}
	}
	return nil
}

// ValidateTerms checks a full term list, requiring at least one term.
func ValidateTerms(terms []string) error {
	if len(terms) == 0 {
		return fmt.Errorf("at least one GO term is required")
	}
	for _, term := range terms {
		if err := ValidateTerm(term); err != nil {
			return err
		}
	}
	return nil
}

// BuildQuery assembles the SPARQL query selecting proteins classified under
// any of the GO terms, directly or through a subclass, together with their
// display names and nucleotide cross-reference links. With includeAminoAcids
// the protein's amino acid sequence is selected as well. A positive limit
// caps the row count; zero or negative means no cap.
func BuildQuery(terms []string, includeAminoAcids bool, limit int) string {
	var b strings.Builder

	b.WriteString(queryPrefixes)
	b.WriteString("\n")

	b.WriteString("SELECT ?protein ?name ?link")
	if includeAminoAcids {
		b.WriteString(" ?aa_sequence")
	}
	b.WriteString("\n")

	b.WriteString("WHERE {\n")
	b.WriteString("values ?go_terms {")
	for _, term := range terms {
		b.WriteString(" go:")
		b.WriteString(term)
	}
	b.WriteString(" }\n")
	b.WriteString("?protein a up:Protein ;\n")
	b.WriteString("    rdfs:label ?name ;\n")
	b.WriteString("    up:classifiedWith|(up:classifiedWith/rdfs:subClassOf) ?go_terms .\n")
	if includeAminoAcids {
		b.WriteString("?protein up:sequence ?seq .\n")
		b.WriteString("?seq rdf:value ?aa_sequence .\n")
	}
	b.WriteString("?protein rdfs:seeAlso ?link .\n")
	b.WriteString("?link up:database ?database .\n")
	b.WriteString("?database rdfs:label '")
	b.WriteString(nucleotideDatabase)
	b.WriteString("' .\n")
	b.WriteString("}")

	if limit > 0 {
		fmt.Fprintf(&b, "\nLIMIT %d", limit)
	}

	return b.String()
}
