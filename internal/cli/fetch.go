package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/yttd/internal/transcript"
	"github.com/mgpai22/yttd/internal/youtube"
	"github.com/spf13/cobra"
)

// raw timed-text download, not a rendered format
const formatXML = "xml"

var fetchCmd = &cobra.Command{
	Use:   "fetch [video_id_or_url]",
	Short: "Download the captions of a YouTube video",
	Long: `Download a caption track of a YouTube video and export it.

The track matching --language is used when available (manual captions are
preferred over auto-generated ones), otherwise the first track.

Formats: vtt, srt, text, json, or xml for the untouched timed-text payload.

Examples:
  yttd fetch dQw4w9WgXcQ
  yttd fetch https://youtu.be/dQw4w9WgXcQ -f vtt -l en
  yttd fetch dQw4w9WgXcQ -f text -o -
  yttd fetch dQw4w9WgXcQ -f srt --translate-to japanese --provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().
		StringP("format", "f", "srt", "Output format (vtt, srt, text, json, xml)")
	fetchCmd.Flags().
		String("base-url", defaultBaseURL(), "YouTube base URL (or set YTTD_BASE_URL)")
	fetchCmd.Flags().
		Duration("timeout", 30*time.Second, "Timeout for the whole download")
	addTranslateFlags(fetchCmd)
	addReflowFlags(fetchCmd)
}

func defaultBaseURL() string {
	if v := os.Getenv("YTTD_BASE_URL"); v != "" {
		return v
	}
	return youtube.DefaultBaseURL
}

// the caption language doubles as the watch page interface language
func newYouTubeClient(baseURL, language string) (*youtube.Client, error) {
	var opts []youtube.Option
	if language != "" {
		opts = append(opts, youtube.WithInterfaceLanguage(language))
	}
	return youtube.NewClient(baseURL, opts...)
}

func runFetch(cmd *cobra.Command, args []string) error {
	formatStr, _ := cmd.Flags().GetString("format")
	baseURL, _ := cmd.Flags().GetString("base-url")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	outputPath, _ := cmd.Flags().GetString("output")
	language, _ := cmd.Flags().GetString("language")

	videoID, err := youtube.VideoID(args[0])
	if err != nil {
		return err
	}

	raw := strings.EqualFold(strings.TrimSpace(formatStr), formatXML)
	var format transcript.Format
	ext := ".xml"
	if !raw {
		format, err = transcript.ParseFormat(formatStr)
		if err != nil {
			return fmt.Errorf("%w: use vtt, srt, text, json or xml", err)
		}
		ext = format.Extension()
	}

	if outputPath == "" {
		outputPath = videoID + ext
	}

	client, err := newYouTubeClient(baseURL, language)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	logger.Infow("Fetching captions",
		"video", videoID,
		"language", language,
		"format", formatStr,
		"output", outputPath,
	)

	var content string
	if raw {
		content, err = fetchRaw(ctx, client, videoID, language)
	} else {
		content, err = fetchRendered(ctx, cmd, client, videoID, language, format)
	}
	if err != nil {
		return err
	}

	if err := writeOutput(cmd.OutOrStdout(), outputPath, content); err != nil {
		return err
	}

	if outputPath != stdoutPath {
		absOutput, _ := filepath.Abs(outputPath)
		fmt.Fprintf(cmd.OutOrStdout(), "Captions saved: %s\n", absOutput)
	}
	return nil
}

func fetchRendered(
	ctx context.Context,
	cmd *cobra.Command,
	client *youtube.Client,
	videoID, language string,
	format transcript.Format,
) (string, error) {
	handoff := transcript.NewHandoff()
	go acquire(ctx, client, videoID, language, handoff)

	cues, err := handoff.Await(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch captions: %w", err)
	}

	cues, err = maybeTranslate(ctx, cmd, cues)
	if err != nil {
		return "", err
	}

	cues = maybeReflow(cmd, cues, format)

	content, err := transcript.Render(cues, format)
	if err != nil {
		return "", fmt.Errorf("failed to render captions: %w", err)
	}
	return content, nil
}

// acquire downloads and parses one caption track and hands the cues over
func acquire(
	ctx context.Context,
	client *youtube.Client,
	videoID, language string,
	handoff *transcript.Handoff,
) {
	cues, track, err := client.Transcript(ctx, videoID, language)
	if err != nil {
		_ = handoff.Fail(err)
		return
	}

	logger.Infow("Caption track downloaded",
		"language", track.LanguageCode,
		"name", track.Name,
		"auto_generated", track.AutoGenerated(),
		"cues", len(cues),
	)
	_ = handoff.Deliver(cues)
}

func fetchRaw(
	ctx context.Context,
	client *youtube.Client,
	videoID, language string,
) (string, error) {
	tracks, err := client.Tracks(ctx, videoID)
	if err != nil {
		return "", fmt.Errorf("failed to list caption tracks: %w", err)
	}
	track, err := youtube.SelectTrack(tracks, language)
	if err != nil {
		return "", err
	}

	logger.Debugw("Downloading raw track", "language", track.LanguageCode)

	data, err := client.FetchTrack(ctx, track, youtube.TimedTextXML)
	if err != nil {
		return "", fmt.Errorf("failed to download caption track: %w", err)
	}
	return string(data), nil
}
