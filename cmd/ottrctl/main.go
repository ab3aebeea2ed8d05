// ottrctl is the command-line front end for the expansion engine and triple
// store: a thin collaborator wiring input loading, template construction,
// the driver, and the store's export routines together.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oxhq/stottr/internal/config"
	"github.com/oxhq/stottr/internal/logging"
)

func main() {
	root := &cobra.Command{
		Use:   "ottrctl",
		Short: "Expand tabular data against OTTR templates into an RDF triple store",
	}

	root.AddCommand(newExpandCmd(), newQueryCmd(), newExportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// inputFlags are the flags shared by every subcommand that needs to build a
// store from a CSV input and a default template.
type inputFlags struct {
	csvPath            string
	pkColumn           string
	fkColumns          []string
	templatePrefix     string
	predicatePrefixIRI string
	iriColumns         []string
	spillFolder        string
	workers            int
	catalogDSN         string
	logLevel           string
}

func addInputFlags(cmd *cobra.Command, f *inputFlags) {
	fs := cmd.Flags()
	fs.StringVar(&f.csvPath, "csv", "", "Path to the input CSV table (required)")
	fs.StringVar(&f.pkColumn, "pk", "id", "Primary-key column name")
	fs.StringSliceVar(&f.fkColumns, "fk", nil, "Foreign-key column names")
	fs.StringVar(&f.templatePrefix, "template-prefix", "", "Default-template name prefix (OTTR_DEFAULT_TEMPLATE_PREFIX if unset)")
	fs.StringVar(&f.predicatePrefixIRI, "predicate-prefix", "", "Default-template predicate prefix IRI (OTTR_DEFAULT_PREDICATE_PREFIX if unset)")
	fs.StringSliceVar(&f.iriColumns, "iri-column", nil, "Columns (besides pk/fk) whose values are IRIs rather than literals")
	fs.StringVar(&f.spillFolder, "spill-folder", "", "Directory for on-disk bucket spilling (empty keeps everything in memory)")
	fs.IntVar(&f.workers, "workers", 0, "Worker pool size (0 uses OTTR_WORKERS/default)")
	fs.StringVar(&f.catalogDSN, "catalog-dsn", "", "Catalog database DSN (OTTR_CATALOG_DSN if unset)")
	fs.StringVar(&f.logLevel, "log-level", "", "debug|info|warning|error (OTTR_LOG_LEVEL if unset)")
}

func (f *inputFlags) resolve() *config.Config {
	cfg := config.LoadConfig("")
	if f.spillFolder != "" {
		cfg.SpillFolder = f.spillFolder
	}
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	if f.catalogDSN != "" {
		cfg.CatalogDSN = f.catalogDSN
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.templatePrefix != "" {
		cfg.DefaultTemplatePrefix = f.templatePrefix
	}
	if f.predicatePrefixIRI != "" {
		cfg.DefaultPredicatePrefixIRI = f.predicatePrefixIRI
	}
	return cfg
}

func newLogger(cfg *config.Config) *logrus.Logger {
	return logging.New(logging.Level(cfg.LogLevel))
}
