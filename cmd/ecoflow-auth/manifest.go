package main

import (
	"encoding/json"

	"github.com/EcoFlowJS/ecoflow-authentication/manifest"
	"github.com/spf13/cobra"
)

func newManifestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "manifest",
		Short: "Print the plugin manifest as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := manifest.Default()
			if err := m.Validate(); err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(m)
		},
	}
}
