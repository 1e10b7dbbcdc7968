// Package results persists the intermediate knowledge base result table,
// letting a resumed session skip the query step.
package results

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dorbarker/gogetem/pkg/uniprot"
)

// FileName is the conventional table name inside an output directory.
const FileName = "uniprot_results.tsv"

var header = []string{"protein", "name", "link", "aa_sequence"}

// Save writes records to a tab separated table at path, creating parent
// directories if absent. Rows always carry all four columns, so a table
// written without amino acid sequences loads identically.
func Save(path string, records []uniprot.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		row := []string{rec.Protein, rec.Name, rec.Link, rec.AASequence}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write row for %s: %w", rec.Protein, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// Load reads a table written by Save.
func Load(path string) ([]uniprot.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = len(header)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("table %s has no header", path)
	}
	for i, want := range header {
		if rows[0][i] != want {
			return nil, fmt.Errorf("table %s has unexpected header %v", path, rows[0])
		}
	}

	records := make([]uniprot.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, uniprot.Record{
			Protein:    row[0],
			Name:       row[1],
			Link:       row[2],
			AASequence: row[3],
		})
	}

	return records, nil
}

// Accessions extracts nucleotide accessions from records in table order,
// keeping the first occurrence of each and skipping records without a
// cross-reference link. Several proteins can share one nucleotide entry,
// and a duplicated accession would be fetched twice.
func Accessions(records []uniprot.Record) []string {
	seen := make(map[string]struct{}, len(records))
	accs := make([]string, 0, len(records))

	for _, rec := range records {
		acc := rec.Accession()
		if acc == "" {
			continue
		}
		if _, ok := seen[acc]; ok {
			continue
		}
		seen[acc] = struct{}{}
		accs = append(accs, acc)
	}

	return accs
}
