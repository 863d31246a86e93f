/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/ringlog/pkg/ring"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ringlog",
	Short: "ringlog - shared in-memory log buffer",
	Long: `ringlog is a fixed-size circular buffer for structured log records.
Producers append concurrently without locking; a single reader drains
records in order. With --arena-file the buffer lives in a shared file
mapping, so append, drain and flush can run from separate processes
against the same buffer.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		arenaFile, _ := cmd.Flags().GetString("arena-file")
		capacity, _ := cmd.Flags().GetInt("capacity")
		verify, _ := cmd.Flags().GetBool("verify")

		store, err := ring.NewRingStore(ring.RingConfig{
			Capacity:        capacity,
			ArenaFile:       arenaFile,
			VerifyIntegrity: verify,
		})
		if err != nil {
			return fmt.Errorf("failed to open ring store: %w", err)
		}
		// Store in command context
		cmd.SetContext(context.WithValue(cmd.Context(), "ring", store))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store, ok := cmd.Context().Value("ring").(*ring.RingStore); ok {
			return store.Close()
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// ringFromContext fetches the store opened by PersistentPreRunE.
func ringFromContext(cmd *cobra.Command) (*ring.RingStore, bool) {
	store, ok := cmd.Context().Value("ring").(*ring.RingStore)
	return store, ok
}

func init() {
	rootCmd.PersistentFlags().StringP("arena-file", "f", "", "Backing file for a shared arena (empty = private memory)")
	rootCmd.PersistentFlags().IntP("capacity", "c", 0, "Arena capacity in bytes (0 = default)")
	rootCmd.PersistentFlags().Bool("verify", true, "Verify record integrity markers while draining")
}
