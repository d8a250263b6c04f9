package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/platewise/internal/analyzer"
	"github.com/Veraticus/platewise/internal/cli"
	"github.com/Veraticus/platewise/internal/common"
)

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the analysis service is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			client := analyzer.NewClient(settings.Service.BaseURL, settings.Service.Timeout)
			status, err := client.Health(cmd.Context())
			if err != nil {
				return common.NewUserError("Analysis service at "+client.BaseURL()+" is not healthy", err)
			}

			writeln(cmd.OutOrStdout(), cli.RenderHealth(client.BaseURL(), status))
			return nil
		},
	}
}
