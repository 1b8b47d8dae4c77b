package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/outfit-analyzer/internal/outfit"
)

// runCLI executes the root command with an isolated, empty env file
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	envFile := filepath.Join(t.TempDir(), "empty.env")
	if err := os.WriteFile(envFile, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--env-file", envFile))

	err := cmd.Execute()
	return out.String(), err
}

func writePNG(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "garment.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersionCmd(t *testing.T) {
	out, err := runCLI(t, "", "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "outfit-analyzer "+Version) {
		t.Errorf("unexpected version output: %q", out)
	}
}

func TestAnalyzeCmd(t *testing.T) {
	path := writePNG(t, 60, 150, color.RGBA{0, 0, 255, 255})

	out, err := runCLI(t, "", "analyze", path, "--gender", "men", "--provider", "fallback")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var result outfit.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not a result: %v\n%s", err, out)
	}
	if result.Gender != "men" {
		t.Errorf("gender: got %s", result.Gender)
	}
	if result.DetectedCategory != "dresses" {
		t.Errorf("category: got %s", result.DetectedCategory)
	}
	if len(result.DominantColors) != 1 || result.DominantColors[0] != "#0000ff" {
		t.Errorf("colors: got %v", result.DominantColors)
	}
	if len(result.OutfitRecommendations) != 1 || len(result.OutfitRecommendations[0].Pieces) != 4 {
		t.Errorf("recommendations: got %+v", result.OutfitRecommendations)
	}
}

func TestAnalyzeCmd_Errors(t *testing.T) {
	path := writePNG(t, 10, 10, color.White)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"bad gender", []string{"analyze", path, "--gender", "kids", "--provider", "fallback"}, "unsupported gender"},
		{"missing file", []string{"analyze", "/nonexistent.png", "--provider", "fallback"}, "failed to read image"},
		{"no args", []string{"analyze", "--provider", "fallback"}, "accepts 1 arg"},
		{"bad provider", []string{"analyze", path, "--provider", "amazon"}, "invalid configuration"},
		{"bad num colors", []string{"analyze", path, "--num-colors", "99", "--provider", "fallback"}, "num_colors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, "", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMCPCmd(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":7,"method":"ping"}` + "\n"

	out, err := runCLI(t, input, "mcp", "--provider", "fallback")
	if err != nil {
		t.Fatalf("mcp failed: %v", err)
	}

	var resp struct {
		JSONRPC string  `json:"jsonrpc"`
		ID      float64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &resp); err != nil {
		t.Fatalf("unexpected output %q: %v", out, err)
	}
	if resp.JSONRPC != "2.0" || resp.ID != 7 {
		t.Errorf("unexpected response: %+v", resp)
	}
}
