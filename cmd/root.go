package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configDefault embedded config.yaml, written out when no config exists
// configDefault 内置的 config.yaml，找不到配置时写出
var configDefault string

var rootCmd = &cobra.Command{
	Use:           "jot",
	Short:         "Jot, a personal note store with multi-device sync",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command with the embedded default config
// Execute 使用内置默认配置执行根命令
func Execute(defaultConfig string) {
	configDefault = defaultConfig
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
