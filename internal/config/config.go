// Package config loads wortbox settings from flags, environment and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is stripped from environment variables. A double underscore
// separates a section from its key, e.g. WORTBOX_SERVER__ADDR.
const EnvPrefix = "WORTBOX_"

// MemoryDatabase selects the in-process store instead of SQLite.
const MemoryDatabase = "memory"

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Audio    AudioConfig    `koanf:"audio"`
	Log      LogConfig      `koanf:"log"`
	CORS     CORSConfig     `koanf:"cors"`
	Quiz     QuizConfig     `koanf:"quiz"`
	Import   ImportConfig   `koanf:"import"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

type AudioConfig struct {
	Dir string `koanf:"dir" validate:"required"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json tint"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

type QuizConfig struct {
	MaxQuestions int `koanf:"max_questions" validate:"min=1,max=50"`
}

type ImportConfig struct {
	File     string `koanf:"file"`
	Repo     string `koanf:"repo"`
	ReposDir string `koanf:"repos_dir" validate:"required"`
	Force    bool   `koanf:"force"`
}

// Importing reports whether the process was asked to import a wordlist
// instead of serving.
func (c Config) Importing() bool {
	return c.Import.File != "" || c.Import.Repo != ""
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"addr":             "server.addr",
	"shutdown-timeout": "server.shutdown_timeout",
	"db":               "database.path",
	"audio-dir":        "audio.dir",
	"log-level":        "log.level",
	"log-format":       "log.format",
	"cors-origins":     "cors.allowed_origins",
	"quiz-size":        "quiz.max_questions",
	"import":           "import.file",
	"import-repo":      "import.repo",
	"repos-dir":        "import.repos_dir",
	"force":            "import.force",
}

// NewFlagSet defines every flag together with its default value.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "Path to a YAML config file")
	fs.String("addr", ":8000", "HTTP listen address")
	fs.Duration("shutdown-timeout", 5*time.Second, "Grace period for in-flight requests on shutdown")
	fs.String("db", "data/flashcards.db", `Path to the SQLite database file, or "memory"`)
	fs.String("audio-dir", "audio", "Directory served under /static/audio/")
	fs.String("log-level", "info", "Log level: debug, info, warn, error")
	fs.String("log-format", "text", "Log format: text, json, tint")
	fs.StringSlice("cors-origins", []string{"*"}, "Allowed CORS origins")
	fs.Int("quiz-size", 10, "Default number of quiz questions")
	fs.String("import", "", "Import this wordlist file and exit (relative to the repo with --import-repo)")
	fs.String("import-repo", "", "Git repository holding the wordlist")
	fs.String("repos-dir", "repos", "Where wordlist repositories are cloned")
	fs.Bool("force", false, "Import even if the deck already has cards")
	return fs
}

// Load parses args and merges, from lowest to highest precedence, flag
// defaults, the YAML file, WORTBOX_* environment variables and explicitly
// set flags.
func Load(args []string) (Config, error) {
	fs := NewFlagSet("wortbox")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	k := koanf.New(".")

	if path, _ := fs.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envToKey := func(name, value string) (string, interface{}) {
		key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		if key == "cors.allowed_origins" {
			return key, strings.Split(value, ",")
		}
		return key, value
	}
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envToKey), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	// Unchanged flags only fill keys that no other source set.
	flagToKey := func(f *pflag.Flag) (string, interface{}) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	}
	if err := k.Load(posflag.ProviderWithFlag(fs, ".", k, flagToKey), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks the field constraints declared in struct tags.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (%v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
