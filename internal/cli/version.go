package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the vaultrisk CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vaultrisk version %s\n", version)
		fmt.Println("Risk simulator for leveraged staked-ETH lending positions")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
