package common

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	OCR       OCRConfig       `mapstructure:"ocr"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr       string        `mapstructure:"grpc_addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxImageBytes  int           `mapstructure:"max_image_bytes"`
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract        string   `mapstructure:"tesseract"`
	Languages        []string `mapstructure:"languages"`
	TessdataDir      string   `mapstructure:"tessdata_dir"`
	PSM              int      `mapstructure:"psm"`
	OEM              int      `mapstructure:"oem"`
	HeicConverter    string   `mapstructure:"heic_converter"`
	ArtifactCacheDir string   `mapstructure:"artifact_cache_dir"`

	// MultiScript enables the in-process eng+hin engine used for the
	// higher-accuracy passes.
	MultiScript          bool     `mapstructure:"multiscript"`
	MultiScriptLanguages []string `mapstructure:"multiscript_languages"`
	MinLineConfidence    float64  `mapstructure:"min_line_confidence"`

	// PersonNER enables the entity recognizer used by the Aadhaar name fallback.
	PersonNER bool `mapstructure:"person_ner"`
}

// TemplatesConfig holds template-mapper configuration
type TemplatesConfig struct {
	Dir         string  `mapstructure:"dir"`
	FuzzyCutoff float64 `mapstructure:"fuzzy_cutoff"`
	Watch       bool    `mapstructure:"watch"`
}

// WorkerConfig holds batch/watch worker-pool configuration
type WorkerConfig struct {
	Workers        int           `mapstructure:"workers"`
	QueueSize      int           `mapstructure:"queue_size"`
	ProcessTimeout time.Duration `mapstructure:"process_timeout"`
	Debounce       time.Duration `mapstructure:"debounce"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// legacyEnv maps unprefixed environment variables onto config keys.
var legacyEnv = map[string]string{
	"server.grpc_addr":       "GRPC_ADDR",
	"ocr.tessdata_dir":       "TESSDATA_PREFIX",
	"ocr.heic_converter":     "HEIC_CONVERTER",
	"ocr.artifact_cache_dir": "ARTIFACT_CACHE_DIR",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.grpc_addr", ":8080")
	v.SetDefault("server.request_timeout", 2*time.Minute)
	v.SetDefault("server.max_image_bytes", 16<<20)

	v.SetDefault("ocr.tesseract", "tesseract")
	v.SetDefault("ocr.languages", []string{"eng"})
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("ocr.psm", 0)
	v.SetDefault("ocr.oem", 0)
	v.SetDefault("ocr.heic_converter", "magick")
	v.SetDefault("ocr.artifact_cache_dir", "./tmp")
	v.SetDefault("ocr.multiscript", true)
	v.SetDefault("ocr.multiscript_languages", []string{"eng", "hin"})
	v.SetDefault("ocr.min_line_confidence", 30.0)
	v.SetDefault("ocr.person_ner", true)

	v.SetDefault("templates.dir", "")
	v.SetDefault("templates.fuzzy_cutoff", 0.65)
	v.SetDefault("templates.watch", false)

	v.SetDefault("worker.workers", 4)
	v.SetDefault("worker.queue_size", 256)
	v.SetDefault("worker.process_timeout", 3*time.Minute)
	v.SetDefault("worker.debounce", 500*time.Millisecond)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// LoadConfig loads configuration from defaults, an optional YAML file and
// environment variables (FORMFILL_SERVER_GRPC_ADDR, FORMFILL_OCR_PSM, ...).
// The unprefixed variables GRPC_ADDR, TESSDATA_PREFIX, HEIC_CONVERTER and
// ARTIFACT_CACHE_DIR are honoured as well.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FORMFILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "FORMFILL_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("formfill")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.formfill")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, NewAppError("CONFIG_ERROR", "read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, NewAppError("CONFIG_ERROR", "decode config", err)
	}
	return &cfg, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "server.grpc_addr is required", ErrInvalidInput)
	}
	if c.OCR.Tesseract == "" {
		return NewAppError("CONFIG_ERROR", "ocr.tesseract is required", ErrInvalidInput)
	}
	if c.Templates.FuzzyCutoff <= 0 || c.Templates.FuzzyCutoff > 1 {
		return NewAppError("CONFIG_ERROR", "templates.fuzzy_cutoff must be in (0, 1]", ErrInvalidInput)
	}
	if c.Worker.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "worker.workers must be positive", ErrInvalidInput)
	}
	switch c.OCR.HeicConverter {
	case "", "heif-convert", "magick", "sips":
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown heic converter %q", c.OCR.HeicConverter), ErrInvalidInput)
	}
	return nil
}
