package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/ringlog/pkg/levels"
)

// appendCmd represents the append command
var appendCmd = &cobra.Command{
	Use:   "append <message>",
	Short: "Append a log record to the buffer",
	Long: `Append one log record to the buffer.

Example:
  ringlog append -f /tmp/ringlog.arena --level WARNING --errno 28 "disk low"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		levelName, _ := cmd.Flags().GetString("level")
		errno, _ := cmd.Flags().GetInt32("errno")
		detail, _ := cmd.Flags().GetString("detail")
		hint, _ := cmd.Flags().GetString("hint")

		code, err := levels.FromText(levelName)
		if err != nil {
			cmd.Printf("Error: %v\n", err)
			return
		}

		store, ok := ringFromContext(cmd)
		if !ok {
			cmd.Println("Error: ring store not found in context")
			return
		}

		var detailBytes, hintBytes []byte
		if detail != "" {
			detailBytes = []byte(detail)
		}
		if hint != "" {
			hintBytes = []byte(hint)
		}

		position, err := store.Append(uint8(code), errno, []byte(args[0]), detailBytes, hintBytes)
		if err != nil {
			cmd.Printf("Error appending record: %v\n", err)
			return
		}
		cmd.Printf("Appended at position %d\n", position)
	},
}

func init() {
	rootCmd.AddCommand(appendCmd)
	appendCmd.Flags().StringP("level", "l", "LOG", "Severity level name")
	appendCmd.Flags().Int32("errno", 0, "Saved errno to attach to the record")
	appendCmd.Flags().String("detail", "", "Detail text")
	appendCmd.Flags().String("hint", "", "Hint text")
}
