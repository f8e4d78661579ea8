// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AlexLyubovenko/ai-blog-generator/pkg/types"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the model, news, and Telegram services",
	Long: `Health checks each external service and prints a report. The exit
status is non-zero when the overall status is degraded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildComponents(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		report := c.pipeline.Health(cmd.Context())
		format, _ := cmd.Flags().GetString("format")
		if err := writeFormatted(os.Stdout, format, report); err != nil {
			return err
		}
		if report.Status != types.HealthHealthy {
			return fmt.Errorf("status %s", report.Status)
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().String("format", formatYAML, "output format: json or yaml")

	rootCmd.AddCommand(healthCmd)
}
