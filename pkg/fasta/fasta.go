// Package fasta provides FASTA formatting and parsing helpers.
// Records render as one header line followed by one sequence line.
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Record is a single FASTA record (header and sequence).
type Record struct {
	Header   string
	Sequence string
}

// String renders the record as a header line plus one sequence line.
func (r Record) String() string {
	return ">" + r.Header + "\n" + r.Sequence + "\n"
}

// ENARecord builds a record in the ENA browser header convention,
// ENA|<accession>|<accession.version>|<description>. The unversioned
// accession is the versioned one with its final dot segment removed.
func ENARecord(accession, description, sequence string) Record {
	base := accession
	if i := strings.LastIndex(accession, "."); i >= 0 {
		base = accession[:i]
	}

	return Record{
		Header:   fmt.Sprintf("ENA|%s|%s|%s", base, accession, description),
		Sequence: sequence,
	}
}

// Parse reads FASTA records from r. Lines beginning with '>' denote headers;
// sequence lines belonging to one record are concatenated.
func Parse(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	// UniProt amino acid sequences arrive unwrapped, so lines can run long
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var records []Record
	var header string
	var seq strings.Builder
	open := false

	flush := func() {
		if open {
			records = append(records, Record{Header: header, Sequence: seq.String()})
		}
		seq.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			flush()
			header = line[1:]
			open = true
		} else if open {
			seq.WriteString(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan fasta: %w", err)
	}
	flush()

	return records, nil
}

// Write writes records to w in input order.
func Write(w io.Writer, records []Record) error {
	for _, rec := range records {
		if _, err := io.WriteString(w, rec.String()); err != nil {
			return fmt.Errorf("write record %s: %w", rec.Header, err)
		}
	}
	return nil
}

// WriteFile writes records to path, creating parent directories if absent.
func WriteFile(path string, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	if err := Write(w, records); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
