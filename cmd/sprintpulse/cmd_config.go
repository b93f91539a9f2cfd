package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sprint-insights/config"
)

var sampleConfigCmd = &cobra.Command{
	Use:   "sample-config",
	Short: "Write config.sample.json with every supported setting",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.CreateSampleConfig(); err != nil {
			return err
		}
		fmt.Println("✅ Wrote config.sample.json")
		return nil
	},
}
