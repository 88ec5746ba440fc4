package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yaml"

type Config struct {
	Log         Log         `yaml:"log"`
	Generator   Generator   `yaml:"generator"`
	Translation Translation `yaml:"translation"`
	Voice       Voice       `yaml:"voice"`
	Player      Player      `yaml:"player"`
	Face        Face        `yaml:"face"`
	Chat        Chat        `yaml:"chat"`
	HTTP        HTTP        `yaml:"http"`
	MCP         MCP         `yaml:"mcp"`
	Console     Console     `yaml:"console"`
}

type Generator struct {
	// Backend kind
	Backend string `yaml:"backend" example:"ollama" validate:"oneof=openai ollama"`
	// Base url of the backend
	BaseURL string `yaml:"base_url" example:"http://localhost:11434"`
	// API token, openai backend only
	Token string `yaml:"token" example:"sk-proj-abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX"`
	// Model name
	Model string `yaml:"model" example:"qwen:0.5b" validate:"required"`
	// System prompt placed before the examples and the history
	SystemPrompt string `yaml:"system_prompt"`
	// Few-shot examples placed between the system prompt and the history
	Examples []Example `yaml:"examples" validate:"dive"`
	// Sampling temperature
	Temperature float32 `yaml:"temperature" example:"0.8" validate:"gte=0,lte=2"`
}

type Example struct {
	Question string `yaml:"question" validate:"required"`
	Answer   string `yaml:"answer" validate:"required"`
}

type Translation struct {
	// Translate questions to the model language and answers back
	Enabled bool `yaml:"enabled" example:"false"`
	// OpenAI compatible endpoint used for translation
	BaseURL string `yaml:"base_url" example:"https://openrouter.ai/api/v1"`
	// Translation API token
	Token string `yaml:"token"`
	// Translation model
	Model string `yaml:"model" example:"deepseek/deepseek-chat-v3-0324:free" validate:"required_if=Enabled true"`
	// Language the user writes in
	UserLanguage string `yaml:"user_language" example:"Spanish"`
	// Language the generator answers in
	ModelLanguage string `yaml:"model_language" example:"English"`
	// Pause between two re-emitted words of a translated answer
	WordDelay time.Duration `yaml:"word_delay" example:"100ms"`
}

type Voice struct {
	// Directory with one sample per letter (a.wav, b.wav, ...). Empty disables the voice.
	SamplesDir string `yaml:"samples_dir" example:"audios"`
	// Random pitch range around the sample pitch
	PitchRangeSemitones float64 `yaml:"pitch_range_semitones" example:"4" validate:"gte=0"`
	// Silence between two letters
	Gap time.Duration `yaml:"gap" example:"10ms"`
	// Output sample rate
	SampleRate int `yaml:"sample_rate" example:"22050" validate:"gte=0"`
}

type Player struct {
	// Playback command reading a WAV file on stdin. Empty plays silently.
	Command string `yaml:"command" example:"aplay"`
	// Playback command arguments
	Args []string `yaml:"args" example:"[\"-q\", \"-\"]"`
}

type Face struct {
	// Animation tick interval
	Tick time.Duration `yaml:"tick" example:"500ms" validate:"gt=0"`
	// Inactivity before falling asleep
	SleepTimeout time.Duration `yaml:"sleep_timeout" example:"10s" validate:"gt=0"`
	// Bounds of the delay between idle animations
	IdleDelayMin time.Duration `yaml:"idle_delay_min" example:"1500ms" validate:"gte=0"`
	IdleDelayMax time.Duration `yaml:"idle_delay_max" example:"5s" validate:"gtefield=IdleDelayMin"`
	// Chance per sleeping tick to spawn a Z
	ParticleProbability float64 `yaml:"particle_probability" example:"0.1" validate:"gte=0,lte=1"`
	// Random seed, zero picks a random one
	Seed uint64 `yaml:"seed"`
	// Idle animations, defaults are used when empty
	Overlays []Overlay `yaml:"overlays" validate:"dive"`
}

type Overlay struct {
	Kind      string        `yaml:"kind" example:"blinking" validate:"oneof=blinking looking_around long_blink sticking_tongue concentrating"`
	Weight    float64       `yaml:"weight" example:"0.55" validate:"gte=0"`
	RevertMin time.Duration `yaml:"revert_min" example:"50ms"`
	RevertMax time.Duration `yaml:"revert_max" example:"50ms" validate:"gtefield=RevertMin"`
}

type Chat struct {
	// Number of history messages kept between turns
	HistorySize int `yaml:"history_size" example:"6" validate:"gte=0"`
}

type HTTP struct {
	// Listen address of the HTTP dispatcher, empty disables it
	Listen string `yaml:"listen" example:"127.0.0.1:8080"`
}

type MCP struct {
	// Serve MCP tools on /mcp of the HTTP dispatcher
	Enabled bool `yaml:"enabled" example:"false"`
}

type Console struct {
	// Do not read questions from stdin
	Disabled bool `yaml:"disabled" example:"false"`
}

type Log struct {
	// Minimum level: debug, info, warn, error
	Level string `yaml:"level" example:"info" validate:"omitempty,oneof=debug info warn error"`
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var result Config

	if err := yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	result.applyDefaults()

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	if result.MCP.Enabled && result.HTTP.Listen == "" {
		return nil, oops.Errorf("mcp requires http.listen to be set")
	}

	return &result, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Generator.Backend == "" {
		c.Generator.Backend = "ollama"
	}
	if c.Generator.BaseURL == "" && c.Generator.Backend == "ollama" {
		c.Generator.BaseURL = "http://localhost:11434"
	}
	if c.Generator.Temperature == 0 {
		c.Generator.Temperature = 0.8
	}

	if c.Translation.UserLanguage == "" {
		c.Translation.UserLanguage = "Spanish"
	}
	if c.Translation.ModelLanguage == "" {
		c.Translation.ModelLanguage = "English"
	}
	if c.Translation.WordDelay == 0 {
		c.Translation.WordDelay = 100 * time.Millisecond
	}

	if c.Voice.PitchRangeSemitones == 0 {
		c.Voice.PitchRangeSemitones = 4
	}
	if c.Voice.Gap == 0 {
		c.Voice.Gap = 10 * time.Millisecond
	}
	if c.Voice.SampleRate == 0 {
		c.Voice.SampleRate = 22050
	}

	if c.Player.Command != "" && len(c.Player.Args) == 0 && c.Player.Command == "aplay" {
		c.Player.Args = []string{"-q", "-"}
	}

	if c.Face.Tick == 0 {
		c.Face.Tick = 500 * time.Millisecond
	}
	if c.Face.SleepTimeout == 0 {
		c.Face.SleepTimeout = 10 * time.Second
	}
	if c.Face.IdleDelayMin == 0 {
		c.Face.IdleDelayMin = 1500 * time.Millisecond
	}
	if c.Face.IdleDelayMax == 0 {
		c.Face.IdleDelayMax = 5 * time.Second
	}
	if c.Face.ParticleProbability == 0 {
		c.Face.ParticleProbability = 0.1
	}

	if c.Chat.HistorySize == 0 {
		c.Chat.HistorySize = 6
	}
}
