package main

import (
	"encoding/json"
	"fmt"

	"github.com/dweb/dweb/infrastructure/persistence"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func inspectCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect [model]",
		Short: "Print model metadata",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, cleanup, err := offlineRegistry(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			var descriptions []persistence.Description
			if len(args) == 1 {
				meta, ok := reg.Lookup(args[0])
				if !ok {
					return fmt.Errorf("unknown model %q", args[0])
				}
				descriptions = append(descriptions, meta.Describe())
			} else {
				for _, meta := range reg.Models() {
					descriptions = append(descriptions, meta.Describe())
				}
			}

			out := cmd.OutOrStdout()
			switch format {
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(descriptions); err != nil {
					return fmt.Errorf("encode yaml: %w", err)
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(descriptions); err != nil {
					return fmt.Errorf("encode json: %w", err)
				}
				return nil
			default:
				return fmt.Errorf("unknown format %q (want yaml or json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml, json")

	return cmd
}
