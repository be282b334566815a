package main

import (
	"github.com/EcoFlowJS/ecoflow-authentication/manifest"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "ecoflow-auth",
		Short:         "EcoFlow authentication plugin host",
		Long:          "Serve ecoflow-authentication pipelines, print the plugin manifest and sign tokens.",
		Version:       manifest.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCommand(),
		newManifestCommand(),
		newSignCommand(),
	)
	return root
}
