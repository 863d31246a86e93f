package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/ringlog/pkg/levels"
)

// levelsCmd represents the levels command
var levelsCmd = &cobra.Command{
	Use:   "levels [name]",
	Short: "List severity levels or look one up",
	Long: `List the registered severity levels, or resolve one name to its code.

Example:
  ringlog levels
  ringlog levels WARNING`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 1 {
			code, err := levels.FromText(args[0])
			if err != nil {
				cmd.Printf("Error: %v\n", err)
				return
			}
			cmd.Printf("%d\n", code)
			return
		}
		for _, l := range levels.Levels() {
			cmd.Printf("%-10s %d\n", l.Name, l.Code)
		}
	},
}

func init() {
	rootCmd.AddCommand(levelsCmd)
}
