/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/ringlog/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with a generated API key",
	Long: `Write a configuration file with sensible defaults and a freshly
generated client API key. Refuses to overwrite an existing file.

Example:
  ringlog init
  ringlog init --config ./ringlog.yaml -f /tmp/ringlog.arena`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		arenaFile, _ := cmd.Flags().GetString("arena-file")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}
		if config.ConfigExists(configPath) {
			cmd.Printf("Config already exists at %s\n", configPath)
			return
		}

		cfg, err := config.BootstrapConfig(configPath, arenaFile)
		if err != nil {
			cmd.Printf("Error bootstrapping config: %v\n", err)
			return
		}

		cmd.Printf("Wrote %s\n", configPath)
		cmd.Printf("Client API key: %s\n", cfg.Security.ClientAPIKey)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("config", "", "Path to write the configuration file")
}
