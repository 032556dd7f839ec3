package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/events"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/telemetry"
	"github.com/ayusman/mudra/internal/tray"
	"github.com/ayusman/mudra/internal/tui"
	"github.com/ayusman/mudra/internal/voice"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// activityRetention is how long activity rows are kept.
const activityRetention = 30 * 24 * time.Hour

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "mudra",
		Short: "Mudra - control the mouse with hand gestures and your voice",
		Long: `Mudra tracks one hand through the webcam and turns the number of raised
fingers into pointer modes: navigate, click, scroll, drag. Voice commands
handle clicks, scrolling, key presses and typing.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	flags := rootCmd.Flags()
	flags.IntVar(&cfg.CameraID, "camera", cfg.CameraID, "Camera device ID")
	flags.IntVar(&cfg.CameraWidth, "width", cfg.CameraWidth, "Capture width in pixels")
	flags.IntVar(&cfg.CameraHeight, "height", cfg.CameraHeight, "Capture height in pixels")
	flags.BoolVar(&cfg.Mirror, "mirror", cfg.Mirror, "Flip frames horizontally")
	flags.IntVar(&cfg.Smoothing, "smoothing", cfg.Smoothing, "Pointer smoothing window (1-10)")
	flags.BoolVar(&cfg.VoiceEnabled, "voice", cfg.VoiceEnabled, "Enable voice control")
	flags.StringVar(&cfg.SpeechScript, "speech-script", cfg.SpeechScript, "Speech recognition sidecar script")
	flags.StringVar(&cfg.TTSCommand, "tts", cfg.TTSCommand, "Text-to-speech command")
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address (empty disables the server)")
	flags.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory for the activity database")
	flags.StringVar(&cfg.InputBackend, "input", cfg.InputBackend, "Keyboard backend: robot or plugin")
	flags.StringVar(&cfg.PluginDir, "plugins", cfg.PluginDir, "Plugin directory for the plugin backend")
	flags.StringVar(&cfg.MQTTBroker, "mqtt-broker", cfg.MQTTBroker, "MQTT broker URL for event telemetry")
	flags.StringVar(&cfg.MQTTTopicPrefix, "mqtt-prefix", cfg.MQTTTopicPrefix, "MQTT topic prefix")
	flags.BoolVar(&cfg.Tray, "tray", cfg.Tray, "Show the system tray icon")
	flags.BoolVar(&cfg.TUI, "tui", cfg.TUI, "Show the terminal dashboard instead of the tray")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	fmt.Println("Mudra - Hand Gesture and Voice Control")

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	st, err := store.New(filepath.Join(cfg.DataDir, "mudra.db"))
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	if n, err := st.Activity().Prune(time.Now().Add(-activityRetention)); err != nil {
		log.Printf("Failed to prune activity: %v", err)
	} else if n > 0 {
		log.Printf("Pruned %d old activity entries", n)
	}

	tuning := config.NewTuning(cfg.Smoothing)

	robot := input.NewRobotInjector()
	injector, err := newInjector(cfg, robot)
	if err != nil {
		return err
	}
	screenW, screenH := robot.ScreenSize()

	bus := events.NewBus()
	preview := capture.NewPreview()
	defer preview.Close()

	appCfg := app.Config{
		Store: st,
		Bus:   bus,
		Camera: capture.NewCamera(capture.Options{
			DeviceID: cfg.CameraID,
			Width:    cfg.CameraWidth,
			Height:   cfg.CameraHeight,
			Mirror:   cfg.Mirror,
		}),
		Injector:     injector,
		Preview:      preview,
		Tuning:       tuning,
		ScreenWidth:  screenW,
		ScreenHeight: screenH,
		Speaker:      newSpeaker(cfg.TTSCommand),
		Voice: voice.WorkerConfig{
			ListenTimeout:     cfg.ListenTimeout,
			PhraseLimit:       cfg.PhraseLimit,
			ErrorPause:        cfg.VoiceErrorPause,
			CalibrateDuration: voice.DefaultWorkerConfig().CalibrateDuration,
			Greeting:          cfg.GreetingResponse,
		},
	}

	if cfg.VoiceEnabled {
		speech, err := voice.NewSpeechService(cfg.SpeechScript)
		if err != nil {
			log.Printf("Speech recognition not available: %v", err)
		} else {
			defer speech.Close()
			appCfg.Listener = speech
			appCfg.Recognizer = speech
		}
	}

	a := app.New(appCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var srv *server.Server
	if cfg.Addr != "" {
		webDir := findWebDir()
		if webDir != "" {
			fmt.Printf("Serving static files from: %s\n", webDir)
		}

		srv = server.New(server.Config{
			StaticDir:  webDir,
			Store:      st,
			Controller: a,
			Bus:        bus,
			Preview:    preview,
		})
		go func() {
			fmt.Printf("Starting server on %s\n", cfg.Addr)
			if err := srv.ListenAndServe(cfg.Addr); err != nil {
				log.Printf("Server failed: %v", err)
			}
		}()
	}

	if cfg.MQTTBroker != "" {
		client, err := telemetry.Connect(telemetry.ClientConfig{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
		})
		if err != nil {
			log.Printf("MQTT telemetry disabled: %v", err)
		} else {
			defer client.Close()
			pub := telemetry.NewMQTTPublisher(client, bus.Subscribe(64), cfg.MQTTTopicPrefix)
			go pub.Run(ctx)
		}
	}

	if err := a.Start(); err != nil {
		log.Printf("Hand tracking not started: %v", err)
	}

	switch {
	case cfg.TUI:
		runTUI(ctx, a, bus)
	case cfg.Tray:
		runTray(ctx, a, bus, cfg.Addr)
	default:
		<-ctx.Done()
	}

	log.Println("Shutting down...")
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
	}
	return a.Close()
}

func newInjector(cfg *config.Config, robot *input.RobotInjector) (input.Injector, error) {
	if cfg.InputBackend != config.InputPlugin {
		return robot, nil
	}

	mgr := plugin.NewManager(cfg.PluginDir)
	if err := mgr.Discover(); err != nil {
		return nil, fmt.Errorf("failed to discover plugins: %w", err)
	}
	inj, err := input.NewPluginInjector(robot, mgr, plugin.NewExecutor(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("plugin input backend: %w", err)
	}
	return inj, nil
}

func newSpeaker(command string) voice.Speaker {
	switch command {
	case "":
		return nil
	case "say":
		return voice.NewSaySpeaker()
	default:
		return &voice.CommandSpeaker{Command: command}
	}
}

func runTUI(ctx context.Context, a *app.App, bus *events.Bus) {
	p := tea.NewProgram(tui.New(a), tea.WithAltScreen(), tea.WithContext(ctx))

	sub := bus.Subscribe(64)
	go tui.Forward(p, sub)
	defer bus.Unsubscribe(sub)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		log.Printf("Dashboard error: %v", err)
	}
}

func runTray(ctx context.Context, a *app.App, bus *events.Bus, addr string) {
	t := tray.New()
	t.SetEnabled(tray.ToggleTracking, a.Tracking())
	t.SetEnabled(tray.ToggleVoice, a.Voice())

	t.OnToggle(func(which tray.Toggle, enabled bool) error {
		if which == tray.ToggleVoice {
			return a.SetVoice(enabled)
		}
		return a.SetTracking(enabled)
	})
	t.OnSettings(func() {
		if addr == "" {
			log.Println("Settings are served over HTTP; start with --addr to enable them")
			return
		}
		log.Printf("Settings: http://localhost%s/", addr)
	})
	t.OnQuit(func() {
		log.Println("Quit requested")
	})

	sub := bus.Subscribe(64)
	go t.Follow(sub)
	defer bus.Unsubscribe(sub)

	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	t.Run()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
