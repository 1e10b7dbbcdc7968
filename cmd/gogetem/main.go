package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dorbarker/gogetem/pkg/logging"
	"github.com/dorbarker/gogetem/pkg/pipeline"
)

const version = "0.1.0"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gogetem",
		Short: "Retrieve nucleotide and amino acid sequences for GO terms",
		Long: `gogetem queries the UniProt knowledge base for proteins annotated with
the given Gene Ontology terms, writes the results table, and downloads the
cross-referenced nucleotide sequences from the European Nucleotide Archive
in content-addressed batches. Re-running over the same output directory,
or resuming with --resume, skips everything already on disk.`,
		Version:      version,
		SilenceUsage: true,
		RunE:         run,
	}

	cmd.Flags().StringSlice("go-terms", nil, "GO terms to search, digits only (e.g. 0005737)")
	cmd.Flags().Int("limit", 0, "cap the number of knowledge base rows (default no cap)")
	cmd.Flags().Bool("amino-acids", false, "also retrieve amino acid sequences")
	cmd.Flags().String("outdir", "", "output directory for a new session")
	cmd.Flags().String("resume", "", "resume a prior session from its output directory")
	cmd.Flags().Int("batch-size", 0, "batch ceiling in accession characters (default 1000)")
	cmd.Flags().Duration("round-delay", 30*time.Second, "wait between retry rounds")
	cmd.Flags().Duration("pacing-delay", time.Second, "wait between consecutive archive requests")
	cmd.Flags().Int("max-rounds", 0, "give up after this many retry rounds (default until done)")
	cmd.Flags().Bool("verbose", false, "enable debug logging")

	cmd.MarkFlagsMutuallyExclusive("outdir", "resume")
	cmd.MarkFlagsOneRequired("outdir", "resume")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logCfg := logging.DefaultConfig()
	logCfg.Pretty = true
	if verbose {
		logCfg.Level = logging.LevelDebug
	}
	logging.Setup(logCfg)

	cfg, err := sessionConfig(cmd)
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return p.Run(ctx)
}

// sessionConfig resolves flags and environment overrides into a pipeline
// configuration.
func sessionConfig(cmd *cobra.Command) (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()

	var err error
	if cfg.GOTerms, err = cmd.Flags().GetStringSlice("go-terms"); err != nil {
		return cfg, err
	}
	cfg.Limit, _ = cmd.Flags().GetInt("limit")
	cfg.IncludeAminoAcids, _ = cmd.Flags().GetBool("amino-acids")
	cfg.BatchCeiling, _ = cmd.Flags().GetInt("batch-size")
	cfg.Download.RoundDelay, _ = cmd.Flags().GetDuration("round-delay")
	cfg.Download.PacingDelay, _ = cmd.Flags().GetDuration("pacing-delay")
	cfg.Download.MaxRounds, _ = cmd.Flags().GetInt("max-rounds")

	outdir, _ := cmd.Flags().GetString("outdir")
	resume, _ := cmd.Flags().GetString("resume")
	if resume != "" {
		cfg.OutDir = resume
		cfg.Resume = true
	} else {
		cfg.OutDir = outdir
	}

	// Endpoint overrides, mainly for pointing tests at local services
	cfg.UniProt.Endpoint = getEnv("GOGETEM_UNIPROT_URL", cfg.UniProt.Endpoint)
	cfg.Archive.BaseURL = getEnv("GOGETEM_ENA_URL", cfg.Archive.BaseURL)

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
