package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mgpai22/yttd/internal/transcript"
)

const (
	DefaultBaseURL   = "https://www.youtube.com"
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	maxResponseSize  = 16 << 20
)

// fetches watch pages and caption payloads
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	userAgent  string
	language   string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent overrides the browser user agent sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithInterfaceLanguage sets the hl parameter of the watch page request.
func WithInterfaceLanguage(lang string) Option {
	return func(c *Client) {
		c.language = lang
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}

	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    u,
		userAgent:  defaultUserAgent,
		language:   "en",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WatchPage downloads the HTML watch page for a video.
func (c *Client) WatchPage(ctx context.Context, videoID string) ([]byte, error) {
	ref := &url.URL{Path: "/watch"}
	q := url.Values{}
	q.Set("v", videoID)
	q.Set("hl", c.language)
	ref.RawQuery = q.Encode()

	return c.get(ctx, c.baseURL.ResolveReference(ref))
}

// Tracks lists the caption tracks of a video.
func (c *Client) Tracks(ctx context.Context, videoID string) ([]CaptionTrack, error) {
	page, err := c.WatchPage(ctx, videoID)
	if err != nil {
		return nil, err
	}
	playerResponse, err := ExtractPlayerResponse(page)
	if err != nil {
		return nil, err
	}
	return CaptionTracks(playerResponse)
}

// FetchTrack downloads the raw timed-text payload of a track. Relative base
// URLs are resolved against the client's base URL.
func (c *Client) FetchTrack(
	ctx context.Context,
	track CaptionTrack,
	format TimedTextFormat,
) ([]byte, error) {
	ref, err := url.Parse(track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid track URL %q: %w", track.BaseURL, err)
	}
	u := c.baseURL.ResolveReference(ref)

	q := u.Query()
	if format == TimedTextXML {
		q.Del("fmt")
	} else {
		q.Set("fmt", string(format))
	}
	u.RawQuery = q.Encode()

	return c.get(ctx, u)
}

// Transcript resolves the track for lang and returns its cues along with
// the track that was used.
func (c *Client) Transcript(
	ctx context.Context,
	videoID, lang string,
) ([]transcript.Cue, CaptionTrack, error) {
	tracks, err := c.Tracks(ctx, videoID)
	if err != nil {
		return nil, CaptionTrack{}, err
	}
	track, err := SelectTrack(tracks, lang)
	if err != nil {
		return nil, CaptionTrack{}, err
	}

	data, err := c.FetchTrack(ctx, track, TimedTextXML)
	if err != nil {
		return nil, track, err
	}
	cues, err := ParseTimedText(data)
	if err != nil {
		return nil, track, err
	}
	return cues, track, nil
}

func (c *Client) get(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", c.language)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", u.Path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("request to %s failed: %s", u.Path, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
