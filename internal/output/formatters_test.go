package output

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jbweber/cephrbdx/internal/rbdx"
)

// createTestResult creates a QueryResult with a listed pool, an empty pool and
// a pool that could not be listed.
func createTestResult() rbdx.QueryResult {
	return rbdx.QueryResult{
		"1": {Images: map[string]rbdx.ImageUsage{
			"faa94050cdfd": {Size: 2147483648, Capacity: 456},
			"aceebe99a3d1": {Size: 1073741824, Capacity: 123},
		}},
		"2": {Images: map[string]rbdx.ImageUsage{}},
		"3": {Err: errors.New("list images in pool 3: ret=-5")},
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format  Format
		want    string
		wantErr bool
	}{
		{format: FormatTable, want: "*output.TableFormatter"},
		{format: FormatYAML, want: "*output.YAMLFormatter"},
		{format: FormatJSON, want: "*output.JSONFormatter"},
		{format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f, err := NewFormatter(Options{Format: tt.format})
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewFormatter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if ValidateFormat(string(tt.format)) == nil {
					t.Errorf("ValidateFormat(%q) should fail", tt.format)
				}
				return
			}
			if got := typeName(f); got != tt.want {
				t.Errorf("NewFormatter() = %s, want %s", got, tt.want)
			}
			if err := ValidateFormat(string(tt.format)); err != nil {
				t.Errorf("ValidateFormat(%q) error = %v", tt.format, err)
			}
		})
	}
}

func typeName(f Formatter) string {
	switch f.(type) {
	case *TableFormatter:
		return "*output.TableFormatter"
	case *YAMLFormatter:
		return "*output.YAMLFormatter"
	case *JSONFormatter:
		return "*output.JSONFormatter"
	default:
		return "unknown"
	}
}

func TestTableFormatter_FormatImages(t *testing.T) {
	tests := []struct {
		name      string
		result    rbdx.QueryResult
		noHeaders bool
		raw       bool
		wantLines []string
	}{
		{
			name:   "mixed pools",
			result: createTestResult(),
			wantLines: []string{
				"POOL  IMAGE          SIZE  USED",
				"1     aceebe99a3d1   1GiB  123B",
				"1     faa94050cdfd   2GiB  456B",
				"2     <no images>    -     -",
				"3     <unavailable>  -     -",
			},
		},
		{
			name:      "no headers raw",
			result:    createTestResult(),
			noHeaders: true,
			raw:       true,
			wantLines: []string{
				"1  aceebe99a3d1   1073741824  123",
				"1  faa94050cdfd   2147483648  456",
				"2  <no images>    -           -",
				"3  <unavailable>  -           -",
			},
		},
		{
			name:      "empty result",
			result:    rbdx.QueryResult{},
			wantLines: []string{"No pools queried"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &TableFormatter{NoHeaders: tt.noHeaders, Raw: tt.raw}
			output, err := formatter.FormatImages(tt.result)
			if err != nil {
				t.Fatalf("FormatImages() error = %v", err)
			}

			lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
			if len(lines) != len(tt.wantLines) {
				t.Fatalf("expected %d lines, got %d:\n%s", len(tt.wantLines), len(lines), output)
			}
			for i, want := range tt.wantLines {
				if strings.TrimRight(lines[i], " ") != want {
					t.Errorf("line %d = %q, want %q", i, lines[i], want)
				}
			}
		})
	}
}

func TestSize(t *testing.T) {
	tests := []struct {
		n    uint64
		raw  bool
		want string
	}{
		{n: 0, want: "0B"},
		{n: 456, want: "456B"},
		{n: 1073741824, want: "1GiB"},
		{n: 3221225472, want: "3GiB"},
		{n: 0, raw: true, want: "0"},
		{n: 3221225472, raw: true, want: "3221225472"},
	}

	for _, tt := range tests {
		if got := Size(tt.n, tt.raw); got != tt.want {
			t.Errorf("Size(%d, %v) = %q, want %q", tt.n, tt.raw, got, tt.want)
		}
	}
}

func TestJSONFormatter_FormatImages(t *testing.T) {
	formatter := &JSONFormatter{}
	output, err := formatter.FormatImages(createTestResult())
	if err != nil {
		t.Fatalf("FormatImages() error = %v", err)
	}

	var decoded map[string]map[string]rbdx.ImageUsage
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, output)
	}

	if got := decoded["1"]["aceebe99a3d1"]; got.Size != 1073741824 || got.Capacity != 123 {
		t.Errorf("pool 1 image = %+v", got)
	}
	if decoded["2"] == nil || len(decoded["2"]) != 0 {
		t.Errorf("pool 2 should be an empty object, got %v", decoded["2"])
	}
	if v, ok := decoded["3"]; !ok || v != nil {
		t.Errorf("pool 3 should be null, got %v (present=%v)", v, ok)
	}
}

func TestJSONFormatter_Empty(t *testing.T) {
	output, err := (&JSONFormatter{}).FormatImages(nil)
	if err != nil {
		t.Fatalf("FormatImages() error = %v", err)
	}
	if strings.TrimSpace(output) != "{}" {
		t.Errorf("expected {}, got %q", output)
	}
}

func TestYAMLFormatter_FormatImages(t *testing.T) {
	formatter := &YAMLFormatter{}
	output, err := formatter.FormatImages(createTestResult())
	if err != nil {
		t.Fatalf("FormatImages() error = %v", err)
	}

	requiredFields := []string{
		`"1":`,
		"aceebe99a3d1:",
		"Size: 1073741824",
		"Capacity: 123",
		`"2": {}`,
		`"3": null`,
	}
	for _, field := range requiredFields {
		if !strings.Contains(output, field) {
			t.Errorf("output missing required field %q: %s", field, output)
		}
	}

	empty, err := formatter.FormatImages(rbdx.QueryResult{})
	if err != nil {
		t.Fatalf("FormatImages() error = %v", err)
	}
	if empty != "{}\n" {
		t.Errorf("expected {} for empty result, got %q", empty)
	}
}
