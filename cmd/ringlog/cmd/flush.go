package cmd

import (
	"github.com/spf13/cobra"
)

// flushCmd represents the flush command
var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Discard all buffered records",
	Long: `Empty the buffer without reading it. Records appended while the flush
runs may be discarded with it.

Example:
  ringlog flush -f /tmp/ringlog.arena`,
	Run: func(cmd *cobra.Command, args []string) {
		store, ok := ringFromContext(cmd)
		if !ok {
			cmd.Println("Error: ring store not found in context")
			return
		}
		if err := store.Reset(); err != nil {
			cmd.Printf("Error flushing buffer: %v\n", err)
			return
		}
		cmd.Println("Buffer flushed")
	},
}

func init() {
	rootCmd.AddCommand(flushCmd)
}
