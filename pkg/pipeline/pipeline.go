// Package pipeline runs one full retrieval session: query the knowledge
// base, persist the results table, download the nucleotide batches, and
// optionally assemble the amino acid FASTA file.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/dorbarker/gogetem/pkg/batch"
	"github.com/dorbarker/gogetem/pkg/dedup"
	"github.com/dorbarker/gogetem/pkg/download"
	"github.com/dorbarker/gogetem/pkg/ena"
	"github.com/dorbarker/gogetem/pkg/fasta"
	"github.com/dorbarker/gogetem/pkg/logging"
	"github.com/dorbarker/gogetem/pkg/results"
	"github.com/dorbarker/gogetem/pkg/uniprot"
)

// Layout inside the output directory.
const (
	// NucleotideDir holds one digest-named FASTA file per batch.
	NucleotideDir = "nucleotide"

	// AminoAcidDir holds the concatenated amino acid FASTA file.
	AminoAcidDir = "amino_acid"

	// AminoAcidFile is the concatenated amino acid FASTA file name.
	AminoAcidFile = "amino_acids.fasta"
)

// KnowledgeBase queries protein records for GO terms.
type KnowledgeBase interface {
	Search(ctx context.Context, terms []string, includeAminoAcids bool, limit int) ([]uniprot.Record, error)
}

// Config holds a full retrieval session configuration.
type Config struct {
	// GOTerms are the Gene Ontology terms to search, digits only
	GOTerms []string

	// Limit caps the number of knowledge base rows; zero means no cap
	Limit int

	// IncludeAminoAcids also retrieves amino acid sequences
	IncludeAminoAcids bool

	// OutDir is the session output directory
	OutDir string

	// Resume loads the results table from OutDir instead of querying
	Resume bool

	// BatchCeiling overrides the batch planner ceiling; zero uses the default
	BatchCeiling int

	// UniProt configures the knowledge base client
	UniProt uniprot.Config

	// Archive configures the fetch client
	Archive ena.Config

	// Download configures retry and pacing
	Download download.Config
}

// DefaultConfig returns a session configuration with production defaults
// for everything but the terms and output directory.
func DefaultConfig() Config {
	return Config{
		UniProt:  uniprot.DefaultConfig(),
		Archive:  ena.DefaultConfig(),
		Download: download.DefaultConfig(),
	}
}

// Pipeline is one configured retrieval session.
type Pipeline struct {
	config  Config
	kb      KnowledgeBase
	fetcher download.Fetcher
	store   dedup.Store
	logger  zerolog.Logger
}

// New creates a pipeline for one retrieval session. GO terms are validated
// here, before any network activity; a resumed session needs no terms.
func New(cfg Config) (*Pipeline, error) {
	if cfg.OutDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if !cfg.Resume {
		if err := uniprot.ValidateTerms(cfg.GOTerms); err != nil {
			return nil, err
		}
	}

	return &Pipeline{
		config:  cfg,
		kb:      uniprot.New(cfg.UniProt),
		fetcher: ena.New(cfg.Archive),
		logger:  logging.NewLogger("pipeline"),
	}, nil
}

// SetKnowledgeBase replaces the knowledge base client (for testing).
func (p *Pipeline) SetKnowledgeBase(kb KnowledgeBase) {
	p.kb = kb
}

// SetFetcher replaces the archive fetch client (for testing).
func (p *Pipeline) SetFetcher(fetcher download.Fetcher) {
	p.fetcher = fetcher
}

// SetStore replaces the dedup store. The default is a file store under
// OutDir/nucleotide; a Redis store lets several hosts share one index.
func (p *Pipeline) SetStore(store dedup.Store) {
	p.store = store
}

// TablePath returns the results table location for the session.
func (p *Pipeline) TablePath() string {
	return filepath.Join(p.config.OutDir, results.FileName)
}

// Run executes the session. Produced artifacts: the results table, one
// digest-named FASTA file per batch under OutDir/nucleotide, and, with
// IncludeAminoAcids, the concatenated amino acid file. Re-running over the
// same directory skips every batch already on disk.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()

	p.logger.Info().
		Strs("go_terms", p.config.GOTerms).
		Str("outdir", p.config.OutDir).
		Bool("resume", p.config.Resume).
		Msg("Starting retrieval session")

	records, err := p.loadOrQuery(ctx)
	if err != nil {
		return err
	}

	accessions := results.Accessions(records)
	keys := batch.Plan(accessions, p.config.BatchCeiling)

	p.logger.Info().
		Int("records", len(records)).
		Int("accessions", len(accessions)).
		Int("batches", len(keys)).
		Msg("Planned download batches")

	store := p.store
	if store == nil {
		fs, err := dedup.NewFileStore(filepath.Join(p.config.OutDir, NucleotideDir))
		if err != nil {
			return err
		}
		store = fs
	}

	orch, err := download.New(p.fetcher, store, p.config.Download)
	if err != nil {
		return err
	}
	if err := orch.Run(ctx, keys); err != nil {
		return err
	}

	if p.config.IncludeAminoAcids {
		if err := p.writeAminoAcids(records); err != nil {
			return err
		}
	}

	p.logger.Info().
		Dur("duration", time.Since(start)).
		Msg("Retrieval session complete")

	return nil
}

// loadOrQuery resumes from the results table or queries the knowledge base
// and persists the table for later resumption.
func (p *Pipeline) loadOrQuery(ctx context.Context) ([]uniprot.Record, error) {
	tablePath := p.TablePath()

	if p.config.Resume {
		records, err := results.Load(tablePath)
		if err != nil {
			return nil, fmt.Errorf("resume session: %w", err)
		}
		p.logger.Info().
			Int("records", len(records)).
			Str("table", tablePath).
			Msg("Resumed from results table")
		return records, nil
	}

	records, err := p.kb.Search(ctx, p.config.GOTerms, p.config.IncludeAminoAcids, p.config.Limit)
	if err != nil {
		return nil, err
	}

	if err := results.Save(tablePath, records); err != nil {
		return nil, err
	}
	p.logger.Info().
		Int("records", len(records)).
		Str("table", tablePath).
		Msg("Results table written")

	return records, nil
}

// writeAminoAcids assembles the concatenated amino acid FASTA file, one
// record per table row carrying a sequence.
func (p *Pipeline) writeAminoAcids(records []uniprot.Record) error {
	var aaRecords []fasta.Record
	for _, rec := range records {
		if rec.AASequence == "" {
			continue
		}
		aaRecords = append(aaRecords, fasta.ENARecord(rec.Accession(), rec.Name, rec.AASequence))
	}

	path := filepath.Join(p.config.OutDir, AminoAcidDir, AminoAcidFile)
	if err := fasta.WriteFile(path, aaRecords); err != nil {
		return err
	}

	p.logger.Info().
		Str("path", path).
		Int("records", len(aaRecords)).
		Msg("Amino acid sequences written")

	return nil
}
