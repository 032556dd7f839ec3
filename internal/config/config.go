// Package config holds runtime configuration for mudra.
package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
)

// Smoothing window bounds for the pointer moving average.
const (
	MinSmoothing     = 1
	MaxSmoothing     = 10
	DefaultSmoothing = 5
)

// Input backends.
const (
	InputRobot  = "robot"
	InputPlugin = "plugin"
)

// Config is the full application configuration.
type Config struct {
	// Camera
	CameraID     int
	CameraWidth  int
	CameraHeight int
	Mirror       bool

	// Gesture tuning
	Smoothing int

	// Voice
	VoiceEnabled     bool
	ListenTimeout    time.Duration
	PhraseLimit      time.Duration
	VoiceErrorPause  time.Duration
	SpeechScript     string
	TTSCommand       string
	GreetingResponse string

	// HTTP
	Addr string

	// Storage
	DataDir string

	// Input injection
	InputBackend string
	PluginDir    string

	// MQTT telemetry, disabled when the broker is empty
	MQTTBroker      string
	MQTTClientID    string
	MQTTTopicPrefix string
	MQTTUsername    string
	MQTTPassword    string

	// Front ends
	Tray bool
	TUI  bool
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	dataDir := ".mudra"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".mudra")
	}

	return &Config{
		CameraID:         0,
		CameraWidth:      640,
		CameraHeight:     480,
		Mirror:           true,
		Smoothing:        DefaultSmoothing,
		VoiceEnabled:     true,
		ListenTimeout:    5 * time.Second,
		PhraseLimit:      5 * time.Second,
		VoiceErrorPause:  2 * time.Second,
		SpeechScript:     "speech_service.py",
		TTSCommand:       "say",
		GreetingResponse: "Hello, I'm listening to your commands",
		Addr:             ":8080",
		DataDir:          dataDir,
		InputBackend:     InputRobot,
		PluginDir:        "plugins",
		MQTTClientID:     "mudra",
		MQTTTopicPrefix:  "mudra/events",
		Tray:             true,
	}
}

// Validate clamps values to safe ranges.
func (c *Config) Validate() error {
	c.Smoothing = ClampSmoothing(c.Smoothing)

	if c.CameraWidth <= 0 {
		c.CameraWidth = 640
	}
	if c.CameraHeight <= 0 {
		c.CameraHeight = 480
	}
	if c.ListenTimeout <= 0 {
		c.ListenTimeout = 5 * time.Second
	}
	if c.PhraseLimit <= 0 {
		c.PhraseLimit = 5 * time.Second
	}
	if c.VoiceErrorPause <= 0 {
		c.VoiceErrorPause = 2 * time.Second
	}
	if c.InputBackend != InputRobot && c.InputBackend != InputPlugin {
		c.InputBackend = InputRobot
	}
	if c.MQTTTopicPrefix == "" {
		c.MQTTTopicPrefix = "mudra/events"
	}
	return nil
}

// Load builds a Config from defaults, an optional .env file and MUDRA_*
// environment variables.
func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	def := DefaultConfig()
	cfg := &Config{
		CameraID:     getEnvInt("MUDRA_CAMERA", def.CameraID),
		CameraWidth:  getEnvInt("MUDRA_CAMERA_WIDTH", def.CameraWidth),
		CameraHeight: getEnvInt("MUDRA_CAMERA_HEIGHT", def.CameraHeight),
		Mirror:       getEnvBool("MUDRA_MIRROR", def.Mirror),

		Smoothing: getEnvInt("MUDRA_SMOOTHING", def.Smoothing),

		VoiceEnabled:     getEnvBool("MUDRA_VOICE", def.VoiceEnabled),
		ListenTimeout:    getEnvDuration("MUDRA_LISTEN_TIMEOUT", def.ListenTimeout),
		PhraseLimit:      getEnvDuration("MUDRA_PHRASE_LIMIT", def.PhraseLimit),
		VoiceErrorPause:  getEnvDuration("MUDRA_VOICE_ERROR_PAUSE", def.VoiceErrorPause),
		SpeechScript:     getEnv("MUDRA_SPEECH_SCRIPT", def.SpeechScript),
		TTSCommand:       getEnv("MUDRA_TTS_COMMAND", def.TTSCommand),
		GreetingResponse: def.GreetingResponse,

		Addr:    getEnv("MUDRA_ADDR", def.Addr),
		DataDir: getEnv("MUDRA_DATA_DIR", def.DataDir),

		InputBackend: getEnv("MUDRA_INPUT", def.InputBackend),
		PluginDir:    getEnv("MUDRA_PLUGIN_DIR", def.PluginDir),

		MQTTBroker:      getEnv("MUDRA_MQTT_BROKER", ""),
		MQTTClientID:    getEnv("MUDRA_MQTT_CLIENT_ID", def.MQTTClientID),
		MQTTTopicPrefix: getEnv("MUDRA_MQTT_TOPIC_PREFIX", def.MQTTTopicPrefix),
		MQTTUsername:    getEnv("MUDRA_MQTT_USERNAME", ""),
		MQTTPassword:    getEnv("MUDRA_MQTT_PASSWORD", ""),

		Tray: getEnvBool("MUDRA_TRAY", def.Tray),
		TUI:  getEnvBool("MUDRA_TUI", def.TUI),
	}

	_ = cfg.Validate()
	return cfg
}

// ClampSmoothing bounds n to [MinSmoothing, MaxSmoothing].
func ClampSmoothing(n int) int {
	if n < MinSmoothing {
		return MinSmoothing
	}
	if n > MaxSmoothing {
		return MaxSmoothing
	}
	return n
}

// Tuning holds the settings that may change while tracking is running.
// It is safe for concurrent use; the gesture task reads it once per frame.
type Tuning struct {
	smoothing atomic.Int32
}

// NewTuning returns a Tuning with the given smoothing window.
func NewTuning(smoothing int) *Tuning {
	t := &Tuning{}
	t.SetSmoothing(smoothing)
	return t
}

// Smoothing returns the current smoothing window size.
func (t *Tuning) Smoothing() int {
	return int(t.smoothing.Load())
}

// SetSmoothing stores n clamped to the valid range and returns the stored value.
func (t *Tuning) SetSmoothing(n int) int {
	n = ClampSmoothing(n)
	t.smoothing.Store(int32(n))
	return n
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: failed to parse %s as int, using default: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: failed to parse %s as bool, using default: %v", key, err)
		return defaultValue
	}
	return boolValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: failed to parse %s as duration, using default: %v", key, err)
		return defaultValue
	}
	return d
}
