package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExpandCmd() *cobra.Command {
	f := &inputFlags{}
	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Expand a CSV input table against a synthesized default template",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := expandInput(f)
			if err != nil {
				return err
			}
			fmt.Printf("call_uuid=%s template=%s buckets=%d\n", b.callUUID, b.tmplName, len(b.store.Buckets()))
			return nil
		},
	}
	addInputFlags(cmd, f)
	return cmd
}
