package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/mgpai22/yttd/internal/youtube"
	"github.com/spf13/cobra"
)

var tracksCmd = &cobra.Command{
	Use:   "tracks [video_id_or_url]",
	Short: "List the caption tracks of a YouTube video",
	Args:  cobra.ExactArgs(1),
	RunE:  runTracks,
}

func init() {
	rootCmd.AddCommand(tracksCmd)

	tracksCmd.Flags().
		String("base-url", defaultBaseURL(), "YouTube base URL (or set YTTD_BASE_URL)")
	tracksCmd.Flags().
		Duration("timeout", 30*time.Second, "Request timeout")
}

func runTracks(cmd *cobra.Command, args []string) error {
	baseURL, _ := cmd.Flags().GetString("base-url")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	language, _ := cmd.Flags().GetString("language")

	videoID, err := youtube.VideoID(args[0])
	if err != nil {
		return err
	}

	client, err := newYouTubeClient(baseURL, language)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	tracks, err := client.Tracks(ctx, videoID)
	if err != nil {
		return fmt.Errorf("failed to list caption tracks: %w", err)
	}

	logger.Debugw("Listed caption tracks", "video", videoID, "count", len(tracks))

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LANGUAGE\tNAME\tTYPE")
	for _, track := range tracks {
		kind := "manual"
		if track.AutoGenerated() {
			kind = "auto-generated"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", track.LanguageCode, track.Name, kind)
	}
	return tw.Flush()
}
