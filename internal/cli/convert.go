package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mgpai22/yttd/internal/subtitle"
	"github.com/mgpai22/yttd/internal/transcript"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert [subtitle_file]",
	Short: "Convert an SRT or VTT file to another export format",
	Long: `Convert an existing SRT or WebVTT file to vtt, srt, text or json.

Examples:
  yttd convert talk.vtt -f srt
  yttd convert talk.srt -f json -o talk.cues.json
  yttd convert talk.srt -f text -o -
  yttd convert talk.srt -f vtt --translate-to spanish`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().
		StringP("format", "f", "vtt", "Output format (vtt, srt, text, json)")
	addTranslateFlags(convertCmd)
	addReflowFlags(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	formatStr, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", inputPath)
	}

	format, err := transcript.ParseFormat(formatStr)
	if err != nil {
		return fmt.Errorf("%w: use vtt, srt, text or json", err)
	}

	if outputPath == "" {
		outputPath = deriveOutputPath(inputPath, format.Extension())
	}
	if outputPath != stdoutPath && sameFile(inputPath, outputPath) {
		return fmt.Errorf("output path %s would overwrite the input", outputPath)
	}

	content, err := convertFile(cmd.Context(), cmd, inputPath, format)
	if err != nil {
		return err
	}

	if err := writeOutput(cmd.OutOrStdout(), outputPath, content); err != nil {
		return err
	}

	if outputPath != stdoutPath {
		absOutput, _ := filepath.Abs(outputPath)
		fmt.Fprintf(cmd.OutOrStdout(), "Converted: %s\n", absOutput)
	}
	return nil
}

func convertFile(
	ctx context.Context,
	cmd *cobra.Command,
	inputPath string,
	format transcript.Format,
) (string, error) {
	cues, inputFormat, err := subtitle.Open(inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to parse subtitle file: %w", err)
	}

	logger.Infow("Parsed subtitle file",
		"input", inputPath,
		"format", inputFormat,
		"cues", len(cues),
	)

	cues, err = maybeTranslate(ctx, cmd, cues)
	if err != nil {
		return "", err
	}

	cues = maybeReflow(cmd, cues, format)

	content, err := transcript.Render(cues, format)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", format, err)
	}
	return content, nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
