package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/yttd/internal/subtitle"
	"github.com/mgpai22/yttd/internal/transcript"
	"github.com/mgpai22/yttd/internal/translate"
	"github.com/spf13/cobra"
)

const stdoutPath = "-"

// writes content to path, or to w when path is "-"
func writeOutput(w io.Writer, path, content string) error {
	if path == stdoutPath {
		_, err := io.WriteString(w, content)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// base path with its extension swapped for ext
func deriveOutputPath(base, ext string) string {
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}

func addTranslateFlags(cmd *cobra.Command) {
	cmd.Flags().
		String("translate-to", "", "Translate caption text to this language before export")
	cmd.Flags().
		String("provider", "gemini", "Translation provider (gemini, openai, anthropic)")
	cmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY)")
	cmd.Flags().
		String("model", "", "Model to use for translation (provider-specific default)")
	cmd.Flags().
		Int("concurrency", 3, "Number of parallel translation workers")
	cmd.Flags().
		Int("batch-size", translate.DefaultBatchSize, "Number of cues per API request")
}

// translates cues when --translate-to is set, otherwise returns them unchanged
func maybeTranslate(
	ctx context.Context,
	cmd *cobra.Command,
	cues []transcript.Cue,
) ([]transcript.Cue, error) {
	targetLang, _ := cmd.Flags().GetString("translate-to")
	if targetLang == "" {
		return cues, nil
	}

	providerStr, _ := cmd.Flags().GetString("provider")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	inputLang, _ := cmd.Flags().GetString("language")

	provider := translate.Provider(strings.ToLower(providerStr))
	if apiKey == "" {
		apiKey = os.Getenv(provider.APIKeyEnv())
	}
	if apiKey == "" {
		return nil, fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			provider.APIKeyEnv(),
		)
	}
	if concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	translator, err := translate.Factory(ctx, provider, apiKey, translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		BatchSize:      batchSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create translator: %w", err)
	}

	logger.Infow("Translating captions",
		"cues", len(cues),
		"target_language", targetLang,
		"provider", provider,
		"concurrency", concurrency,
	)

	translated, err := translate.Cues(ctx, translator, cues, concurrency)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	logger.Infow("Translation complete", "cues", len(translated))
	return translated, nil
}

func addReflowFlags(cmd *cobra.Command) {
	cmd.Flags().
		Int("max-line-chars", 0, "Reflow vtt/srt cues to lines of at most this many characters (0 keeps cues as-is)")
	cmd.Flags().
		Float64("max-cue-duration", 7, "Longest cue in seconds when reflowing")
}

// reflows cues for timed formats when --max-line-chars is set
func maybeReflow(
	cmd *cobra.Command,
	cues []transcript.Cue,
	format transcript.Format,
) []transcript.Cue {
	maxChars, _ := cmd.Flags().GetInt("max-line-chars")
	if maxChars <= 0 || (format != transcript.FormatVTT && format != transcript.FormatSRT) {
		return cues
	}
	maxDuration, _ := cmd.Flags().GetFloat64("max-cue-duration")

	reflow := subtitle.DefaultReflow()
	reflow.MaxCharsPerLine = maxChars
	reflow.MaxDuration = maxDuration

	reflowed := reflow.Apply(cues)
	logger.Debugw("Reflowed cues", "before", len(cues), "after", len(reflowed))
	return reflowed
}
