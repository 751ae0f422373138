package cli

import (
	"bytes"
	"strings"
	"testing"
)

type textResult struct{ Name string }

func (r textResult) Text() string { return "name: " + r.Name + "\n" }

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"json", FormatJSON, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputFormat(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatters(t *testing.T) {
	t.Run("text uses Texter", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewFormatter(FormatText).FormatTo(&buf, textResult{Name: "edge"}); err != nil {
			t.Fatal(err)
		}
		if buf.String() != "name: edge\n" {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("text falls back to %v", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewFormatter(FormatText).FormatTo(&buf, 42); err != nil {
			t.Fatal(err)
		}
		if buf.String() != "42\n" {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewFormatter(FormatJSON).FormatTo(&buf, textResult{Name: "edge"}); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), `"Name": "edge"`) {
			t.Errorf("got %q", buf.String())
		}
	})
}
