package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testPlayerResponse = `{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
	`{"baseUrl":"/api/timedtext?v=dQw4w9WgXcQ&lang=en","name":{"simpleText":"English"},"languageCode":"en"},` +
	`{"baseUrl":"/api/timedtext?v=dQw4w9WgXcQ&lang=de","name":{"simpleText":"Deutsch"},"languageCode":"de","kind":"asr"}` +
	`]}}}`

const testTrackXML = `<?xml version="1.0" encoding="utf-8" ?><transcript>` +
	`<text start="0" dur="1.5">Hello</text>` +
	`<text start="3661.234" dur="1">it&amp;#39;s 5 &amp;lt; 10</text></transcript>`

func newYouTubeStub(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<script>var ytInitialPlayerResponse = ` + testPlayerResponse + `;</script>`))
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testTrackXML))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestFetchToStdout(t *testing.T) {
	server := newYouTubeStub(t)

	out, err := execute(t, "fetch", "https://youtu.be/dQw4w9WgXcQ",
		"--base-url", server.URL, "-f", "srt", "-l", "en", "-o", "-")
	if err != nil {
		t.Fatalf("fetch failed: %v\n%s", err, out)
	}

	want := "1\n00:00:00,000 --> 00:00:01,500\nHello\n\n" +
		"2\n01:01:01,234 --> 01:01:02,234\nit's 5 < 10\n\n"
	if out != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", out, want)
	}
}

func TestFetchToFile(t *testing.T) {
	server := newYouTubeStub(t)
	outPath := filepath.Join(t.TempDir(), "nested", "captions.vtt")

	if out, err := execute(t, "fetch", "dQw4w9WgXcQ",
		"--base-url", server.URL, "-f", "vtt", "-l", "en", "-o", outPath); err != nil {
		t.Fatalf("fetch failed: %v\n%s", err, out)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if !strings.HasPrefix(string(data), "WEBVTT\n\n00:00:00.000 --> 00:00:01.500\nHello\n\n") {
		t.Errorf("unexpected VTT output: %q", data)
	}
}

func TestFetchRawXML(t *testing.T) {
	server := newYouTubeStub(t)

	out, err := execute(t, "fetch", "dQw4w9WgXcQ",
		"--base-url", server.URL, "-f", "xml", "-l", "en", "-o", "-")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if out != testTrackXML {
		t.Errorf("expected raw payload, got %q", out)
	}
}

func TestFetchRejectsUnknownFormat(t *testing.T) {
	server := newYouTubeStub(t)

	_, err := execute(t, "fetch", "dQw4w9WgXcQ",
		"--base-url", server.URL, "-f", "ass", "-l", "en", "-o", "-")
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("expected unsupported format error, got %v", err)
	}
}

func TestTracks(t *testing.T) {
	server := newYouTubeStub(t)

	out, err := execute(t, "tracks", "dQw4w9WgXcQ", "--base-url", server.URL)
	if err != nil {
		t.Fatalf("tracks failed: %v", err)
	}
	for _, want := range []string{"LANGUAGE", "English", "manual", "Deutsch", "auto-generated"} {
		if !strings.Contains(out, want) {
			t.Errorf("tracks output missing %q:\n%s", want, out)
		}
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	srtPath := filepath.Join(dir, "talk.srt")
	content := "1\n00:00:01,000 --> 00:00:02,500\nfirst\n\n2\n00:00:03,000 --> 00:00:04,000\nsecond\n"
	if err := os.WriteFile(srtPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	out, err := execute(t, "convert", srtPath, "-f", "text", "-o", "-")
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if out != "first second" {
		t.Errorf("expected joined text, got %q", out)
	}

	jsonPath := filepath.Join(dir, "talk.json")
	if _, err := execute(t, "convert", srtPath, "-f", "json", "-o", jsonPath); err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if !strings.Contains(string(data), `"end": 2.5`) {
		t.Errorf("unexpected JSON output: %s", data)
	}
}

func TestConvertEmptyFileFails(t *testing.T) {
	dir := t.TempDir()
	vttPath := filepath.Join(dir, "empty.vtt")
	if err := os.WriteFile(vttPath, []byte("WEBVTT\n\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	_, err := execute(t, "convert", vttPath, "-f", "srt", "-o", "-")
	if err == nil || !strings.Contains(err.Error(), "empty cue list") {
		t.Errorf("expected empty input error, got %v", err)
	}
}

func TestConvertRefusesToOverwriteInput(t *testing.T) {
	dir := t.TempDir()
	srtPath := filepath.Join(dir, "talk.srt")
	if err := os.WriteFile(srtPath, []byte("1\n00:00:01,000 --> 00:00:02,000\nx\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	_, err := execute(t, "convert", srtPath, "-f", "srt", "-o", srtPath)
	if err == nil {
		t.Error("expected error when output equals input")
	}
}

func TestDeriveOutputPath(t *testing.T) {
	tests := []struct {
		base string
		ext  string
		want string
	}{
		{"talk.srt", ".vtt", "talk.vtt"},
		{"dir/talk.en.vtt", ".json", "dir/talk.en.json"},
		{"noext", ".txt", "noext.txt"},
	}
	for _, tt := range tests {
		if got := deriveOutputPath(tt.base, tt.ext); got != tt.want {
			t.Errorf("deriveOutputPath(%q, %q) = %q, want %q", tt.base, tt.ext, got, tt.want)
		}
	}
}

func TestTranslateRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	dir := t.TempDir()
	srtPath := filepath.Join(dir, "talk.srt")
	if err := os.WriteFile(srtPath, []byte("1\n00:00:01,000 --> 00:00:02,000\nx\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	_, err := execute(t, "convert", srtPath, "-f", "vtt", "-o", "-",
		"--translate-to", "german", "--provider", "anthropic", "--api-key", "")
	if err == nil || !strings.Contains(err.Error(), "ANTHROPIC_API_KEY") {
		t.Errorf("expected missing API key error, got %v", err)
	}

	// reset for later tests sharing the command tree
	_ = convertCmd.Flags().Set("translate-to", "")
}

func TestConvertReflow(t *testing.T) {
	dir := t.TempDir()
	srtPath := filepath.Join(dir, "long.srt")
	content := "1\n00:00:00,000 --> 00:00:04,000\none two three four five six\n"
	if err := os.WriteFile(srtPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	t.Cleanup(func() {
		_ = convertCmd.Flags().Set("max-line-chars", "0")
	})

	out, err := execute(t, "convert", srtPath, "-f", "vtt", "-o", "-", "--max-line-chars", "10")
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if strings.Count(out, " --> ") < 2 {
		t.Errorf("expected the cue to be split, got:\n%s", out)
	}
}

func TestFetchDefaultsToEnglishTrack(t *testing.T) {
	const playerResponse = `{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
		`{"baseUrl":"/api/timedtext?lang=de","name":{"simpleText":"Deutsch"},"languageCode":"de"},` +
		`{"baseUrl":"/api/timedtext?lang=en","name":{"simpleText":"English"},"languageCode":"en"}` +
		`]}}}`

	var interfaceLang string
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		interfaceLang = r.URL.Query().Get("hl")
		_, _ = w.Write([]byte(`<script>var ytInitialPlayerResponse = ` + playerResponse + `;</script>`))
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		lang := r.URL.Query().Get("lang")
		_, _ = w.Write([]byte(`<transcript><text start="0" dur="1">` + lang + `</text></transcript>`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	// earlier tests leave -l set on the shared command tree
	if err := rootCmd.PersistentFlags().Set("language", ""); err != nil {
		t.Fatalf("failed to reset language: %v", err)
	}
	t.Cleanup(func() {
		_ = rootCmd.PersistentFlags().Set("language", "")
	})

	out, err := execute(t, "fetch", "dQw4w9WgXcQ",
		"--base-url", server.URL, "-f", "text", "-o", "-")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if out != "en" {
		t.Errorf("expected the English track without -l, got %q", out)
	}

	out, err = execute(t, "fetch", "dQw4w9WgXcQ",
		"--base-url", server.URL, "-f", "text", "-l", "de", "-o", "-")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if out != "de" {
		t.Errorf("expected the German track with -l de, got %q", out)
	}
	if interfaceLang != "de" {
		t.Errorf("expected -l to set the watch page hl parameter, got %q", interfaceLang)
	}
}
