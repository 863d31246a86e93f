package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/ssargent/ringlog/pkg/archive"
	"github.com/ssargent/ringlog/pkg/levels"
)

// drainCmd represents the drain command
var drainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Drain unread records from the buffer",
	Long: `Drain every unread record from the buffer, oldest first. Records are
consumed: a second drain returns only what was appended in between.

Example:
  ringlog drain -f /tmp/ringlog.arena --json
  ringlog drain -f /tmp/ringlog.arena --archive-dir ./archive`,
	Run: func(cmd *cobra.Command, args []string) {
		asJSON, _ := cmd.Flags().GetBool("json")
		archiveDir, _ := cmd.Flags().GetString("archive-dir")

		store, ok := ringFromContext(cmd)
		if !ok {
			cmd.Println("Error: ring store not found in context")
			return
		}

		// Open the sink before draining: records are consumed by the
		// session and cannot be replayed if the archive fails to open.
		var sink *archive.Archive
		if archiveDir != "" {
			var err error
			sink, err = archive.Open(archiveDir)
			if err != nil {
				cmd.Printf("Error opening archive: %v\n", err)
				return
			}
			defer sink.Close()
		}

		drained, err := store.Drain()
		if err != nil {
			cmd.Printf("Error draining records: %v\n", err)
			return
		}

		for _, d := range drained {
			name, err := levels.ToText(int(d.Record.Level))
			if err != nil {
				name = "?"
			}

			if sink != nil {
				if _, err := sink.Store(d.Record, d.Position); err != nil {
					cmd.Printf("Error archiving record: %v\n", err)
					return
				}
			}

			if asJSON {
				out, _ := json.Marshal(map[string]interface{}{
					"level":      d.Record.Level,
					"level_name": name,
					"errno":      d.Record.SavedErrno,
					"message":    string(d.Record.Message),
					"detail":     string(d.Record.Detail),
					"hint":       string(d.Record.Hint),
					"position":   d.Position,
				})
				cmd.Println(string(out))
			} else {
				cmd.Printf("%s\t%s\n", name, d.Record.Message)
			}
		}
		cmd.Printf("Drained %d records\n", len(drained))
	},
}

func init() {
	rootCmd.AddCommand(drainCmd)
	drainCmd.Flags().Bool("json", false, "Print records as JSON lines")
	drainCmd.Flags().String("archive-dir", "", "Persist drained records to this archive directory")
}
