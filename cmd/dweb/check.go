package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Register all models and report configuration errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, cleanup, err := offlineRegistry(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			for _, meta := range reg.Models() {
				_, _ = fmt.Fprintf(out, "%-10s %d accessors (default %s)\n",
					meta.Name(), len(meta.Managers()), meta.DefaultManager())
			}
			_, _ = fmt.Fprintf(out, "ok: %d models\n", len(reg.Models()))
			return nil
		},
	}
}
