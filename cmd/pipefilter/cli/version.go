package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set via ldflags
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of pipefilter",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pipefilter %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
