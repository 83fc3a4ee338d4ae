package config

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
	"time"

	"github.com/example/ghostcanvas/internal/theme"
)

// Chat holds the conversation worker settings.
type Chat struct {
	Provider       string // "gemini" or "ollama"
	Model          string
	OllamaURL      string
	HistoryWindow  int
	RetryAttempts  int
	RetryBaseDelay time.Duration
}

// Capture holds export settings for composited screenshots.
type Capture struct {
	SaveDir     string
	MaxDim      int
	JPEGQuality int

	// Drop shadow defaults for annotate -shadow. The offset applies to
	// both axes.
	ShadowRadius  int
	ShadowOffset  int
	ShadowOpacity float64
}

// Notify holds notification settings.
type Notify struct {
	Capture  bool // after the frame is frozen
	Response bool // when a model response completes
}

// Brush holds the initial drawing tool settings.
type Brush struct {
	Color color.RGBA
	Width int
}

// Config holds the application configuration.
type Config struct {
	Theme   string
	Chat    Chat
	Capture Capture
	Notify  Notify
	Brush   Brush
	Themes  map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme: "", // empty allows fallback to Env/Default
		Chat: Chat{
			Provider:       "gemini",
			Model:          "",
			OllamaURL:      "http://localhost:11434",
			HistoryWindow:  10,
			RetryAttempts:  3,
			RetryBaseDelay: 5 * time.Second,
		},
		Capture: Capture{
			MaxDim:        1600,
			JPEGQuality:   85,
			ShadowRadius:  24,
			ShadowOffset:  16,
			ShadowOpacity: 0.55,
		},
		Brush: Brush{
			Color: color.RGBA{R: 255, G: 255, A: 255},
			Width: 4,
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	sb.WriteString("\n")

	sb.WriteString("[chat]\n")
	fmt.Fprintf(&sb, "provider = %s\n", c.Chat.Provider)
	if c.Chat.Model != "" {
		fmt.Fprintf(&sb, "model = %s\n", c.Chat.Model)
	}
	fmt.Fprintf(&sb, "ollama_url = %s\n", c.Chat.OllamaURL)
	fmt.Fprintf(&sb, "history_window = %d\n", c.Chat.HistoryWindow)
	fmt.Fprintf(&sb, "retry_attempts = %d\n", c.Chat.RetryAttempts)
	fmt.Fprintf(&sb, "retry_base_delay = %s\n", c.Chat.RetryBaseDelay)
	sb.WriteString("\n")

	sb.WriteString("[capture]\n")
	if c.Capture.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.Capture.SaveDir)
	}
	fmt.Fprintf(&sb, "max_dim = %d\n", c.Capture.MaxDim)
	fmt.Fprintf(&sb, "jpeg_quality = %d\n", c.Capture.JPEGQuality)
	fmt.Fprintf(&sb, "shadow_radius = %d\n", c.Capture.ShadowRadius)
	fmt.Fprintf(&sb, "shadow_offset = %d\n", c.Capture.ShadowOffset)
	fmt.Fprintf(&sb, "shadow_opacity = %g\n", c.Capture.ShadowOpacity)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "capture = %v\n", c.Notify.Capture)
	fmt.Fprintf(&sb, "response = %v\n", c.Notify.Response)
	sb.WriteString("\n")

	sb.WriteString("[brush]\n")
	fmt.Fprintf(&sb, "color = %s\n", toHex(c.Brush.Color))
	fmt.Fprintf(&sb, "width = %d\n", c.Brush.Width)
	sb.WriteString("\n")

	// Themes sections
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		fmt.Fprintf(&sb, "Scrim: %s\n", toHex(t.Scrim))
		fmt.Fprintf(&sb, "Toolbar: %s\n", toHex(t.Toolbar))
		fmt.Fprintf(&sb, "ToolbarEdge: %s\n", toHex(t.ToolbarEdge))
		fmt.Fprintf(&sb, "PromptText: %s\n", toHex(t.PromptText))
		fmt.Fprintf(&sb, "PromptCursor: %s\n", toHex(t.PromptCursor))
		fmt.Fprintf(&sb, "ButtonBackground: %s\n", toHex(t.ButtonBackground))
		fmt.Fprintf(&sb, "ButtonBackgroundHover: %s\n", toHex(t.ButtonBackgroundHover))
		fmt.Fprintf(&sb, "ButtonBackgroundPress: %s\n", toHex(t.ButtonBackgroundPress))
		fmt.Fprintf(&sb, "ButtonActive: %s\n", toHex(t.ButtonActive))
		fmt.Fprintf(&sb, "ButtonText: %s\n", toHex(t.ButtonText))
		fmt.Fprintf(&sb, "ButtonBorder: %s\n", toHex(t.ButtonBorder))
		sb.WriteString("\n")
	}

	return sb.String()
}

func toHex(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
