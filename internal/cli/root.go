// Package cli implements the libime-history-merge commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	formatFlag string
	logLevel   string
)

// RootCmd is the top-level command. It merges the histories named on the
// command line.
var RootCmd = &cobra.Command{
	Use:   "libime-history-merge PATH [PATH...]",
	Short: "Inspect and merge libime user.history files",
	Long: `Inspect or merge one or more libime user.history files, given in binary
or in plain text. Without --output the merged history is printed as text.`,
	Args:              cobra.MinimumNArgs(1),
	PersistentPreRunE: setupLogging,
	Run:               runMerge,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: json or text")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: trace, debug, info, warn, error")

	RootCmd.Flags().IntSliceP("weights", "w", nil, "Relative weight of each input history (e.g. -w3,5)")
	RootCmd.Flags().StringP("output", "o", "", "Write the merged history to this path instead of printing it")
	RootCmd.Flags().BoolP("edit", "e", false, "Edit the merged history in $EDITOR before writing it")
	RootCmd.Flags().BoolP("no-pager", "n", false, "Do not pipe printed output through $PAGER")
	RootCmd.Flags().Bool("compress", false, "Write the output in the zstd-compressed format")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logrus.SetLevel(level)
	return nil
}

func exitErr(msg string, err error) {
	logrus.Errorf("%s: %v", msg, err)
	os.Exit(1)
}

func printJSON(v interface{}) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func jsonOutput() bool {
	return formatFlag == "json"
}
