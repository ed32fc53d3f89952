package subtitle

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgpai22/yttd/internal/transcript"
)

func TestReadSRT(t *testing.T) {
	content := "\ufeff1\r\n" +
		"00:00:01,000 --> 00:00:04,000\r\n" +
		"Hello, world!\r\n" +
		"\r\n" +
		"7\n" +
		"00:00:05,500 --> 00:00:08,200\n" +
		"This is a test.\n" +
		"With multiple lines.\n" +
		"\n" +
		"3\n" +
		"00:00:10,000 --> 00:00:12,500\n" +
		"Final subtitle.\n"

	cues, err := Read(strings.NewReader(content), transcript.FormatSRT)
	if err != nil {
		t.Fatalf("failed to read SRT: %v", err)
	}

	if len(cues) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(cues))
	}
	if cues[0].Start != 1 || cues[0].End != 4 {
		t.Errorf("cue 0: expected 1 --> 4, got %v --> %v", cues[0].Start, cues[0].End)
	}
	if cues[0].Text != "Hello, world!" {
		t.Errorf("cue 0: expected 'Hello, world!', got %q", cues[0].Text)
	}

	expectedText := "This is a test.\nWith multiple lines."
	if cues[1].Text != expectedText {
		t.Errorf("cue 1: expected %q, got %q", expectedText, cues[1].Text)
	}
	if cues[1].Start != 5.5 || cues[1].End != 8.2 {
		t.Errorf("cue 1: expected 5.5 --> 8.2, got %v --> %v", cues[1].Start, cues[1].End)
	}
}

func TestReadVTT(t *testing.T) {
	content := `WEBVTT - Example

NOTE this block
is ignored

STYLE
::cue { color: red }

intro
00:00:01.000 --> 00:00:04.000 align:start
Hello, world!

00:05.500 --> 00:08.200
Short timestamps.

101:00:10.000 --> 101:00:12.500
Long running stream.
`

	cues, err := Read(strings.NewReader(content), transcript.FormatVTT)
	if err != nil {
		t.Fatalf("failed to read VTT: %v", err)
	}

	if len(cues) != 3 {
		t.Fatalf("expected 3 cues, got %d: %+v", len(cues), cues)
	}
	if cues[0].Text != "Hello, world!" {
		t.Errorf("cue 0: expected 'Hello, world!', got %q", cues[0].Text)
	}
	if cues[1].Start != 5.5 || cues[1].End != 8.2 {
		t.Errorf("cue 1: expected 5.5 --> 8.2, got %v --> %v", cues[1].Start, cues[1].End)
	}
	if cues[2].Start != 101*3600+10 {
		t.Errorf("cue 2: expected start %v, got %v", 101*3600+10, cues[2].Start)
	}
}

func TestReadVTTRequiresHeader(t *testing.T) {
	_, err := Read(strings.NewReader("00:00:01.000 --> 00:00:02.000\nhi\n"), transcript.FormatVTT)
	if err == nil {
		t.Error("expected error for missing WEBVTT header")
	}
}

func TestReadRejectsBadTiming(t *testing.T) {
	content := "1\n00:00:75,000 --> 00:00:76,000\ntext\n"
	_, err := Read(strings.NewReader(content), transcript.FormatSRT)
	if err == nil {
		t.Fatal("expected error for seconds >= 60")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected line number in error, got: %v", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"00:00:00.000", 0, false},
		{"01:01:01.234", 3661.234, false},
		{"01:01:01,234", 3661.234, false},
		{"02:03.450", 123.45, false},
		{"100:00:00.001", 360000.001, false},
		{"1:2:3.000", 0, true},
		{"00:00:00", 0, true},
		{"garbage", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRenderRoundTrip(t *testing.T) {
	cues := []transcript.Cue{
		{Start: 0, End: 1.0004, Text: "first"},
		{Start: 1.2345, End: 2.71828, Text: "second\nline"},
		{Start: 59.9994, End: 3599.9996, Text: "third"},
		{Start: 3661.234, End: 370000.5, Text: "fourth"},
	}

	for _, format := range []transcript.Format{transcript.FormatSRT, transcript.FormatVTT} {
		t.Run(string(format), func(t *testing.T) {
			out, err := transcript.Render(cues, format)
			if err != nil {
				t.Fatalf("render failed: %v", err)
			}

			parsed, err := Read(strings.NewReader(out), format)
			if err != nil {
				t.Fatalf("read back failed: %v", err)
			}
			if len(parsed) != len(cues) {
				t.Fatalf("expected %d cues, got %d", len(cues), len(parsed))
			}

			for i := range cues {
				if d := math.Abs(parsed[i].Start - cues[i].Start); d > 0.001 {
					t.Errorf("cue %d start drift %v", i, d)
				}
				if d := math.Abs(parsed[i].End - cues[i].End); d > 0.001 {
					t.Errorf("cue %d end drift %v", i, d)
				}
				if parsed[i].Text != cues[i].Text {
					t.Errorf("cue %d text: expected %q, got %q", i, cues[i].Text, parsed[i].Text)
				}
			}
		})
	}
}

func TestOpen(t *testing.T) {
	tmpDir := t.TempDir()
	vttPath := filepath.Join(tmpDir, "test.VTT")
	content := "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nhi\n"
	if err := os.WriteFile(vttPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	cues, format, err := Open(vttPath)
	if err != nil {
		t.Fatalf("failed to open VTT file: %v", err)
	}
	if format != transcript.FormatVTT {
		t.Errorf("expected format vtt, got %s", format)
	}
	if len(cues) != 1 || cues[0].Text != "hi" {
		t.Errorf("unexpected cues: %+v", cues)
	}
}

func TestOpenUnsupportedFormat(t *testing.T) {
	tmpDir := t.TempDir()
	txtPath := filepath.Join(tmpDir, "test.ass")
	if err := os.WriteFile(txtPath, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	_, _, err := Open(txtPath)
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected 'unsupported' in error, got: %v", err)
	}
}
