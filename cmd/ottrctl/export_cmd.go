package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	f := &inputFlags{}
	var ntriplesPath, parquetDir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Expand a CSV input table and dump the resulting store as N-Triples or Parquet",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := expandInput(f)
			if err != nil {
				return err
			}
			switch {
			case ntriplesPath != "":
				out, err := os.Create(ntriplesPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", ntriplesPath, err)
				}
				defer out.Close()
				return b.store.WriteNTriples(out)
			case parquetDir != "":
				return b.store.WriteParquet(parquetDir)
			default:
				return b.store.WriteNTriples(os.Stdout)
			}
		},
	}
	addInputFlags(cmd, f)
	cmd.Flags().StringVar(&ntriplesPath, "out-ntriples", "", "Write N-Triples to this file (default: stdout)")
	cmd.Flags().StringVar(&parquetDir, "out-parquet-dir", "", "Write one Parquet file per bucket into this directory")
	return cmd
}
