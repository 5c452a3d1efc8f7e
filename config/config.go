// Package config loads settings of the grace tool from a YAML or JSON file and the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/bdsul/grace/generator"
	"github.com/bdsul/grace/mapper"
)

// Environment variables overriding file settings.
const (
	EnvMaxWrapEvents   = "GRACE_MAX_WRAP_EVENTS"
	EnvMaxDepth        = "GRACE_MAX_DEPTH"
	EnvGeneratorMethod = "GRACE_GENERATOR_METHOD"
	EnvSeed            = "GRACE_SEED"
	EnvWorkers         = "GRACE_WORKERS"
	EnvLogLevel        = "GRACE_LOG_LEVEL"
)

type Config struct {
	Mapper    MapperConfig    `json:"mapper" yaml:"mapper"`
	Generator GeneratorConfig `json:"generator" yaml:"generator"`
	Decode    DecodeConfig    `json:"decode" yaml:"decode"`
	Log       LogConfig       `json:"log" yaml:"log"`
}

type MapperConfig struct {
	MaxWrapEvents int `json:"max_wrap_events" yaml:"max_wrap_events" validate:"gte=0"`
	// MaxDepth limits derivation tree depth, 0 means no limit.
	MaxDepth int `json:"max_depth" yaml:"max_depth" validate:"gte=0"`
}

type GeneratorConfig struct {
	Method    string `json:"method" yaml:"method" validate:"oneof=grow full random"`
	MaxDepth  int    `json:"max_depth" yaml:"max_depth" validate:"gte=1"`
	MinLength int    `json:"min_length" yaml:"min_length" validate:"gte=1"`
	MaxLength int    `json:"max_length" yaml:"max_length" validate:"gtefield=MinLength"`
	CodonMax  uint   `json:"codon_max" yaml:"codon_max" validate:"gte=1"`
	Seed      uint64 `json:"seed" yaml:"seed"`
}

type DecodeConfig struct {
	// Workers is the number of concurrent decodes, 0 means one per CPU.
	Workers int `json:"workers" yaml:"workers" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `json:"format" yaml:"format" validate:"oneof=text json"`
}

func Default() Config {
	return Config{
		Mapper: MapperConfig{
			MaxWrapEvents: mapper.DefaultMaxWrapEvents,
		},
		Generator: GeneratorConfig{
			Method:    generator.Grow.String(),
			MaxDepth:  10,
			MinLength: 20,
			MaxLength: 100,
			CodonMax:  generator.DefaultCodonMax,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load returns default settings overridden by file at path (if path is not empty and the file exists)
// and then by environment variables. The result is validated.
func Load(path string) (Config, error) {
	c := Default()

	if path != "" {
		if e := loadFile(path, &c); e != nil {
			return c, fmt.Errorf("load config file: %w", e)
		}
	}

	if e := loadEnv(&c); e != nil {
		return c, e
	}

	if e := c.Validate(); e != nil {
		return c, e
	}
	return c, nil
}

func loadFile(path string, c *Config) error {
	data, e := os.ReadFile(path)
	if e != nil {
		if errors.Is(e, os.ErrNotExist) {
			return nil
		}
		return MakeConfigReadError(path, e)
	}

	if e := yaml.Unmarshal(data, c); e != nil {
		if je := json.Unmarshal(data, c); je != nil {
			return MakeConfigReadError(path, fmt.Errorf("tried YAML and JSON: %v; %v", e, je))
		}
	}
	return nil
}

func loadEnv(c *Config) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{EnvMaxWrapEvents, &c.Mapper.MaxWrapEvents},
		{EnvMaxDepth, &c.Generator.MaxDepth},
		{EnvWorkers, &c.Decode.Workers},
	}
	for _, v := range ints {
		if s := os.Getenv(v.name); s != "" {
			i, e := strconv.Atoi(s)
			if e != nil {
				return MakeInvalidConfigError("%s=%q is not an integer", v.name, s)
			}
			*v.dst = i
		}
	}

	if s := os.Getenv(EnvSeed); s != "" {
		seed, e := strconv.ParseUint(s, 10, 64)
		if e != nil {
			return MakeInvalidConfigError("%s=%q is not an unsigned integer", EnvSeed, s)
		}
		c.Generator.Seed = seed
	}
	if s := os.Getenv(EnvGeneratorMethod); s != "" {
		c.Generator.Method = strings.ToLower(s)
	}
	if s := os.Getenv(EnvLogLevel); s != "" {
		c.Log.Level = strings.ToLower(s)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks all settings and reports every violation in one error.
func (c Config) Validate() error {
	e := validate.Struct(c)
	if e == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(e, &fieldErrors) {
		return MakeInvalidConfigError("%s", e)
	}

	msgs := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		msgs = append(msgs, describe(fe))
	}
	return MakeInvalidConfigError("%s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	name := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s, got %v", name, fe.Param(), fe.Value())
	case "gtefield":
		return fmt.Sprintf("%s must not be less than %s", name, fe.Param())
	default:
		return fmt.Sprintf("%s must be %s %s, got %v", name, fe.Tag(), fe.Param(), fe.Value())
	}
}

// MapperOptions returns mapper settings as options.
func (c Config) MapperOptions(log *slog.Logger) []mapper.Option {
	return []mapper.Option{
		mapper.WithMaxWrapEvents(c.Mapper.MaxWrapEvents),
		mapper.WithMaxDepth(c.Mapper.MaxDepth),
		mapper.WithLogger(log),
	}
}

// NewGenerator creates generator seeded with Generator.Seed and returns it along with configured mode.
func (c Config) NewGenerator(log *slog.Logger) (*generator.Generator, generator.Mode, error) {
	mode, e := generator.ParseMode(c.Generator.Method)
	if e != nil {
		return nil, mode, MakeInvalidConfigError("%s", e)
	}

	g := generator.NewSeeded(c.Generator.Seed, generator.WithCodonMax(c.Generator.CodonMax), generator.WithLogger(log))
	return g, mode, nil
}

// Logger creates logger writing to w using Log settings.
func (c LogConfig) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(c.Level)}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel converts level name to slog.Level, unknown names give slog.LevelInfo.
func ParseLevel(name string) slog.Level {
	var l slog.Level
	if e := l.UnmarshalText([]byte(name)); e != nil {
		return slog.LevelInfo
	}
	return l
}
