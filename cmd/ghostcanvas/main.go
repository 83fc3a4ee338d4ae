package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/ghostcanvas/internal/config"
	"github.com/example/ghostcanvas/internal/envfile"
	"github.com/example/ghostcanvas/internal/logging"
	"github.com/example/ghostcanvas/internal/notify"
	"github.com/example/ghostcanvas/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs             *flag.FlagSet
	program        string
	config         *config.Config
	notifier       *notify.Notifier
	log            *slog.Logger
	logClose       func() error
	captureAlerts  bool
	responseAlerts bool
	themeName      string
	activeTheme    *theme.Theme
	providerName   string
	modelName      string
	debug          bool
}

func (r *root) Program() string { return r.program }

func (r *root) FlagSet() *flag.FlagSet { return r.fs }

func (r *root) subcommand(name string) *root {
	program := strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	return &root{
		program:        program,
		config:         r.config,
		notifier:       r.notifier,
		log:            r.log,
		captureAlerts:  r.captureAlerts,
		responseAlerts: r.responseAlerts,
		themeName:      r.themeName,
		activeTheme:    r.activeTheme,
		providerName:   r.providerName,
		modelName:      r.modelName,
	}
}

func newRoot() *root {
	envfile.Load()
	prefs := notify.LoadPreferences()
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:       flag.NewFlagSet("ghostcanvas", flag.ExitOnError),
		program:  "ghostcanvas",
		notifier: notify.New(prefs),
		config:   cfg,
		log:      logging.Nop(),
	}
	r.fs.BoolVar(&r.captureAlerts, "notify-capture", cfg.Notify.Capture, "show a desktop notification after freezing the screen")
	r.fs.BoolVar(&r.responseAlerts, "notify-response", cfg.Notify.Response, "show a desktop notification when the model's answer completes")
	r.fs.BoolVar(&r.debug, "debug", false, "write a debug log under the data directory")

	// Precedence: CLI > Env > Config > Default. Flags default to "" and the
	// fallback chain runs in Run once parsing is done.
	r.fs.StringVar(&r.themeName, "theme", "", "overlay color theme")
	r.fs.StringVar(&r.providerName, "provider", "", "model provider (gemini or ollama)")
	r.fs.StringVar(&r.modelName, "model", "", "model to ask")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventCapture, r.captureAlerts)
		r.notifier.Enable(notify.EventResponse, r.responseAlerts)
	}
	if r.debug {
		fl, err := logging.NewFileLogger(dataDir(), true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: debug log unavailable: %v\n", err)
		} else {
			r.log = fl.Logger
			r.logClose = fl.Close
		}
	}
	defer func() {
		if r.logClose != nil {
			r.logClose()
		}
	}()

	themeName := r.themeName
	if themeName == "" {
		themeName = os.Getenv("GHOSTCANVAS_THEME")
	}
	if themeName == "" {
		themeName = r.config.Theme
	}
	if t, ok := r.config.Themes[themeName]; ok {
		r.activeTheme = t
	} else {
		t, err := theme.NewLoader().Load(themeName)
		if err != nil {
			if themeName != "" && themeName != "default" {
				fmt.Fprintf(os.Stderr, "warning: failed to load theme %q: %v. using default.\n", themeName, err)
			}
			t = theme.Default()
		}
		r.activeTheme = t
	}

	if r.providerName == "" {
		r.providerName = os.Getenv("GHOSTCANVAS_PROVIDER")
	}
	if r.providerName == "" {
		r.providerName = r.config.Chat.Provider
	}
	if r.modelName == "" {
		r.modelName = os.Getenv("GHOSTCANVAS_MODEL")
	}
	if r.modelName == "" {
		r.modelName = r.config.Chat.Model
	}

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "ask":
		cmd, err = parseAskCmd(subArgs, r.subcommand("ask"))
	case "annotate":
		cmd, err = parseAnnotateCmd(subArgs, r.subcommand("annotate"))
	case "chat":
		cmd, err = parseChatCmd(subArgs, r.subcommand("chat"))
	case "sessions":
		cmd, err = parseSessionsCmd(subArgs, r.subcommand("sessions"))
	case "models":
		cmd, err = parseModelsCmd(subArgs, r.subcommand("models"))
	case "config":
		cmd, err = parseConfigCmd(subArgs, r.subcommand("config"))
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

// dataDir is where the session database, debug logs, and exported captures
// live. GHOSTCANVAS_DATA_DIR overrides the default for tests and portable
// installs.
func dataDir() string {
	if dir := os.Getenv("GHOSTCANVAS_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "ghostcanvas")
}

func (r *root) notifyCapture(detail string, img image.Image) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Capture(detail, img)
}

func (r *root) notifyResponse(model string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Response(model)
}
