package cli

import (
	"github.com/mgpai22/yttd/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  = logging.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "yttd",
	Short: "Download YouTube captions as WebVTT, SRT, text or JSON",
	Long: `yttd fetches the caption tracks of a YouTube video and exports them
as WebVTT, SRT, plain text or JSON.

It can also convert existing SRT/VTT files between those formats and
optionally translate caption text with an LLM provider.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringP("output", "o", "", "Output file path (- for stdout)")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Language code (e.g., en, es, fr)")
}
