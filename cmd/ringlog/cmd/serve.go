/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/ringlog/pkg/api"
	"github.com/ssargent/ringlog/pkg/config"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the ringlog REST API server over the buffer opened by the root
flags. Requests are authenticated with the X-API-Key header.

Examples:
  ringlog serve --api-key=mysecretkey --port=8080
  ringlog serve --config ~/.config/ringlog/config.yaml -f /tmp/ringlog.arena`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetInt("port")
		bind, _ := cmd.Flags().GetString("bind")
		apiKey, _ := cmd.Flags().GetString("api-key")
		archiveDir, _ := cmd.Flags().GetString("archive-dir")
		configPath, _ := cmd.Flags().GetString("config")

		if configPath != "" {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				cmd.Printf("Error loading config: %v\n", err)
				return
			}
			if !cmd.Flags().Changed("port") {
				port = cfg.Port
			}
			if !cmd.Flags().Changed("bind") {
				bind = cfg.Bind
			}
			if apiKey == "" {
				apiKey = cfg.Security.ClientAPIKey
			}
			if archiveDir == "" && cfg.Archive.Enabled {
				archiveDir = cfg.Archive.Dir
			}
		}

		if apiKey == "" || apiKey == "auto" {
			cmd.Println("Error: --api-key is required (or run 'ringlog init' first)")
			return
		}

		store, ok := ringFromContext(cmd)
		if !ok {
			cmd.Println("Error: ring store not found in context")
			return
		}

		serverConfig := api.ServerConfig{
			Port:       port,
			Bind:       bind,
			APIKey:     apiKey,
			ArchiveDir: archiveDir,
		}
		if err := api.StartServer(store, serverConfig); err != nil {
			cmd.Printf("Error starting server: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind to")
	serveCmd.Flags().String("api-key", "", "API key for client authentication")
	serveCmd.Flags().String("archive-dir", "", "Persist drained records to this archive directory")
	serveCmd.Flags().String("config", "", "Path to a YAML configuration file")
}
