package config

import (
	"image/color"
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	input := `
theme = my_custom_theme

[chat]
provider = ollama
model = llava
ollama_url = http://gpu-box:11434
history_window = 20
retry_attempts = 5
retry_base_delay = 500ms

[capture]
save_dir = /tmp/screens
max_dim = 1280
jpeg_quality = 70
shadow_radius = 12
shadow_offset = 8
shadow_opacity = 0.4

[notify]
capture = true
response = false

[brush]
color = #FF0000
width = 6

[theme.my_custom_theme]
Toolbar = #111111
ButtonText = #FFFFFF
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Theme != "my_custom_theme" {
		t.Errorf("Expected theme 'my_custom_theme', got '%s'", cfg.Theme)
	}

	if cfg.Chat.Provider != "ollama" {
		t.Errorf("Expected provider 'ollama', got '%s'", cfg.Chat.Provider)
	}
	if cfg.Chat.Model != "llava" {
		t.Errorf("Expected model 'llava', got '%s'", cfg.Chat.Model)
	}
	if cfg.Chat.OllamaURL != "http://gpu-box:11434" {
		t.Errorf("Unexpected ollama_url: %s", cfg.Chat.OllamaURL)
	}
	if cfg.Chat.HistoryWindow != 20 {
		t.Errorf("Expected history_window 20, got %d", cfg.Chat.HistoryWindow)
	}
	if cfg.Chat.RetryAttempts != 5 {
		t.Errorf("Expected retry_attempts 5, got %d", cfg.Chat.RetryAttempts)
	}
	if cfg.Chat.RetryBaseDelay != 500*time.Millisecond {
		t.Errorf("Expected retry_base_delay 500ms, got %s", cfg.Chat.RetryBaseDelay)
	}

	if cfg.Capture.SaveDir != "/tmp/screens" {
		t.Errorf("Expected save_dir '/tmp/screens', got '%s'", cfg.Capture.SaveDir)
	}
	if cfg.Capture.MaxDim != 1280 {
		t.Errorf("Expected max_dim 1280, got %d", cfg.Capture.MaxDim)
	}
	if cfg.Capture.JPEGQuality != 70 {
		t.Errorf("Expected jpeg_quality 70, got %d", cfg.Capture.JPEGQuality)
	}
	if cfg.Capture.ShadowRadius != 12 {
		t.Errorf("Expected shadow_radius 12, got %d", cfg.Capture.ShadowRadius)
	}
	if cfg.Capture.ShadowOffset != 8 {
		t.Errorf("Expected shadow_offset 8, got %d", cfg.Capture.ShadowOffset)
	}
	if cfg.Capture.ShadowOpacity != 0.4 {
		t.Errorf("Expected shadow_opacity 0.4, got %g", cfg.Capture.ShadowOpacity)
	}

	if !cfg.Notify.Capture {
		t.Error("Expected notify.capture to be true")
	}
	if cfg.Notify.Response {
		t.Error("Expected notify.response to be false")
	}

	if cfg.Brush.Color != (color.RGBA{R: 0xFF, A: 255}) {
		t.Errorf("Unexpected brush color: %+v", cfg.Brush.Color)
	}
	if cfg.Brush.Width != 6 {
		t.Errorf("Expected brush width 6, got %d", cfg.Brush.Width)
	}

	th, ok := cfg.Themes["my_custom_theme"]
	if !ok {
		t.Fatal("Expected theme 'my_custom_theme' to be loaded")
	}
	if th.Toolbar.R != 0x11 || th.Toolbar.G != 0x11 || th.Toolbar.B != 0x11 {
		t.Errorf("Unexpected Toolbar color: %+v", th.Toolbar)
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Chat.Provider != "gemini" {
		t.Errorf("Expected default provider 'gemini', got '%s'", cfg.Chat.Provider)
	}
	if cfg.Chat.HistoryWindow != 10 {
		t.Errorf("Expected default history_window 10, got %d", cfg.Chat.HistoryWindow)
	}
	if cfg.Chat.RetryAttempts != 3 {
		t.Errorf("Expected default retry_attempts 3, got %d", cfg.Chat.RetryAttempts)
	}
	if cfg.Capture.MaxDim != 1600 {
		t.Errorf("Expected default max_dim 1600, got %d", cfg.Capture.MaxDim)
	}
	if cfg.Capture.JPEGQuality != 85 {
		t.Errorf("Expected default jpeg_quality 85, got %d", cfg.Capture.JPEGQuality)
	}
	if cfg.Capture.ShadowRadius != 24 || cfg.Capture.ShadowOffset != 16 || cfg.Capture.ShadowOpacity != 0.55 {
		t.Errorf("Unexpected shadow defaults: %d %d %g",
			cfg.Capture.ShadowRadius, cfg.Capture.ShadowOffset, cfg.Capture.ShadowOpacity)
	}
	if cfg.Brush.Width != 4 {
		t.Errorf("Expected default brush width 4, got %d", cfg.Brush.Width)
	}
}

func TestParseBadValue(t *testing.T) {
	cases := []string{
		"[chat]\nhistory_window = ten\n",
		"[chat]\nretry_base_delay = soon\n",
		"[capture]\nmax_dim = big\n",
		"[capture]\nshadow_opacity = thick\n",
		"[notify]\ncapture = maybe\n",
		"[brush]\ncolor = #GG0000\n",
		"[brush]\ncolor = notacolor\n",
	}
	for _, input := range cases {
		if _, err := Parse(strings.NewReader(input)); err == nil {
			t.Errorf("Expected error for input %q", input)
		}
	}
}

func TestParseNamedColor(t *testing.T) {
	cfg, err := Parse(strings.NewReader("[brush]\ncolor = red\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := color.RGBA{R: 255, A: 255}
	if cfg.Brush.Color != want {
		t.Errorf("Brush.Color = %v, want %v", cfg.Brush.Color, want)
	}
}

func TestCircular(t *testing.T) {
	input := `theme = dark

[chat]
provider = ollama
model = llama3
history_window = 15
retry_attempts = 4
retry_base_delay = 1s

[capture]
save_dir = /home/user/shots
max_dim = 1600
jpeg_quality = 85

[notify]
capture = true
response = true

[brush]
color = #00FF00
width = 2

[theme.custom]
Name = custom
Toolbar = #000000
ButtonText = #FFFFFF
`
	// 1. Parse initial input
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	// 2. Generate string representation
	generated := cfg.String()

	// 3. Parse generated string
	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("Circular parse failed: %v", err)
	}

	// 4. Compare relevant fields
	if cfg.Theme != cfg2.Theme {
		t.Errorf("Theme mismatch: %q vs %q", cfg.Theme, cfg2.Theme)
	}
	if cfg.Chat != cfg2.Chat {
		t.Errorf("Chat mismatch: %+v vs %+v", cfg.Chat, cfg2.Chat)
	}
	if cfg.Capture != cfg2.Capture {
		t.Errorf("Capture mismatch: %+v vs %+v", cfg.Capture, cfg2.Capture)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}
	if cfg.Brush != cfg2.Brush {
		t.Errorf("Brush mismatch: %+v vs %+v", cfg.Brush, cfg2.Brush)
	}

	// Check theme persistence
	t1 := cfg.Themes["custom"]
	t2 := cfg2.Themes["custom"]
	if t1 == nil || t2 == nil {
		t.Fatalf("Custom theme missing in one config")
	}
	if t1.Toolbar != t2.Toolbar {
		t.Errorf("Theme toolbar mismatch: %v vs %v", t1.Toolbar, t2.Toolbar)
	}
}
