package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"flowkit/internal/command"
)

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List registered commands",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range command.DefaultRegistry.Names() {
			c, err := command.DefaultRegistry.Get(name)
			if err != nil {
				continue
			}
			fmt.Printf("%-12s %s\n", name, c.Description())
		}
	},
}

func init() {
	rootCmd.AddCommand(commandsCmd)
}
