package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"

	bberrors "github.com/sofmeright/bandbox/src/errors"
	"github.com/sofmeright/bandbox/src/logging"
)

const (
	// EnvPrefix prefixes every configuration environment variable. Nested
	// keys are separated by a double underscore: BANDBOX_RULES__MAX_FILES.
	EnvPrefix = "BANDBOX_"
	// EnvConfigFile names the config file when no --config flag is given.
	EnvConfigFile = EnvPrefix + "CONFIG"

	flagKeyAnnotation    = "bandbox/config-key"
	flagInvertAnnotation = "bandbox/config-invert"
)

// Candidate file names, searched in the working directory and then in the
// user config directory.
var (
	localNames = []string{".bandbox.yml", ".bandbox.yaml", ".bandbox.toml"}
	userNames  = []string{"bandbox/config.yml", "bandbox/config.yaml", "bandbox/config.toml"}
)

// LoadOptions select the inputs layered over the embedded defaults.
type LoadOptions struct {
	// File is an explicit config file path. It must exist.
	File string
	// Dir is searched for .bandbox.* files. Defaults to the working
	// directory.
	Dir string
	// Flags contributes every changed flag bound with BindFlag.
	Flags *pflag.FlagSet
	// SkipUserConfig disables the XDG config directory lookup.
	SkipUserConfig bool
}

// BindFlag maps a command-line flag onto a config key.
func BindFlag(flags *pflag.FlagSet, name, key string) {
	_ = flags.SetAnnotation(name, flagKeyAnnotation, []string{key})
}

// BindInverseFlag maps a boolean flag onto the negation of a config key.
func BindInverseFlag(flags *pflag.FlagSet, name, key string) {
	BindFlag(flags, name, key)
	_ = flags.SetAnnotation(name, flagInvertAnnotation, []string{"true"})
}

// Default returns the embedded defaults with nothing layered over them.
func Default() (*Config, error) {
	k, err := defaultsKoanf()
	if err != nil {
		return nil, err
	}
	return unmarshal(k)
}

// Load builds the configuration from, lowest to highest precedence: the
// embedded defaults, the config file, BANDBOX_* environment variables and
// changed flags.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")

	k, err := defaultsKoanf()
	if err != nil {
		return nil, err
	}

	path, err := findFile(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		logger.Debug().Str("path", path).Msg("loading config file")
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, bberrors.Wrapf(err, bberrors.ErrConfigLoad, "reading config file %s", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, bberrors.Wrap(err, bberrors.ErrConfigLoad, "loading environment")
	}

	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, flagKey(opts.Flags)), nil); err != nil {
			return nil, bberrors.Wrap(err, bberrors.ErrConfigLoad, "loading flags")
		}
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	cfg.File = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultsKoanf() (*koanf.Koanf, error) {
	var defaults map[string]any
	if err := gotoml.Unmarshal(defaultConfig, &defaults); err != nil {
		return nil, bberrors.Wrap(err, bberrors.ErrInternal, "parsing embedded defaults")
	}
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, bberrors.Wrap(err, bberrors.ErrInternal, "loading embedded defaults")
	}
	return k, nil
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	conf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
				trimSliceHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, conf); err != nil {
		return nil, bberrors.Wrap(err, bberrors.ErrConfigInvalid, "decoding configuration")
	}
	return &cfg, nil
}

// trimSliceHookFunc trims the elements of comma-split string lists, so
// "a, b" from the environment decodes like ["a", "b"].
func trimSliceHookFunc() mapstructure.DecodeHookFuncKind {
	return func(from, to reflect.Kind, data any) (any, error) {
		if from != reflect.Slice || to != reflect.Slice {
			return data, nil
		}
		items, ok := data.([]string)
		if !ok {
			return data, nil
		}
		out := make([]string, 0, len(items))
		for _, s := range items {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	}
}

func envKey(s string) string {
	if s == EnvConfigFile {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

func flagKey(flags *pflag.FlagSet) func(f *pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		keys := f.Annotations[flagKeyAnnotation]
		if !f.Changed || len(keys) == 0 {
			return "", nil
		}
		val := posflag.FlagVal(flags, f)
		if len(f.Annotations[flagInvertAnnotation]) > 0 {
			if b, ok := val.(bool); ok {
				val = !b
			}
		}
		return keys[0], val
	}
}

func parserFor(path string) koanf.Parser {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Parser()
	}
	return yaml.Parser()
}

// findFile resolves the config file: explicit option, then BANDBOX_CONFIG,
// then the working directory, then the user config directory.
func findFile(opts LoadOptions) (string, error) {
	for _, explicit := range []string{opts.File, os.Getenv(EnvConfigFile)} {
		if explicit == "" {
			continue
		}
		if _, err := os.Stat(explicit); err != nil {
			return "", bberrors.Wrapf(err, bberrors.ErrConfigLoad, "config file %s", explicit)
		}
		return explicit, nil
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	for _, name := range localNames {
		candidate := filepath.Join(dir, name)
		_, err := os.Stat(candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", bberrors.Wrapf(err, bberrors.ErrConfigLoad, "config file %s", candidate)
		}
	}

	if opts.SkipUserConfig {
		return "", nil
	}
	for _, name := range userNames {
		if p, err := xdg.SearchConfigFile(name); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// Validate checks the report settings. Rule settings are checked by Compile.
func (c *Config) Validate() error {
	switch c.Report.Format {
	case FormatText, FormatJSON:
	default:
		return bberrors.Newf(bberrors.ErrConfigInvalid,
			"report.format must be %q or %q, got %q", FormatText, FormatJSON, c.Report.Format)
	}
	if c.Report.SummariseSize < 1 {
		return bberrors.Newf(bberrors.ErrConfigInvalid,
			"report.summarise_size must be at least 1, got %d", c.Report.SummariseSize)
	}
	if c.Requires != "" {
		if err := validConstraint(c.Requires); err != nil {
			return err
		}
	}
	return nil
}

// String describes where the configuration came from.
func (c *Config) String() string {
	if c.File == "" {
		return "defaults"
	}
	return fmt.Sprintf("defaults + %s", c.File)
}
