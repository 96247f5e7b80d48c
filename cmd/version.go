package cmd

import (
	"fmt"
	"runtime"

	"github.com/haierkeys/jot-sync-service/internal/app"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info and exit // 打印版本信息并退出",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s v%s (git %s, built %s, %s)\n", app.Name, app.Version, app.GitTag, app.BuildTime, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
