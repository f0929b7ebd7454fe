// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config

import (
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Flag names understood by Load.
const (
	FlagConfig      = "config"
	FlagLogFormat   = "log-format"
	FlagLogLevel    = "log-level"
	FlagLogFile     = "log-file"
	FlagMetricsAddr = "metrics-addr"
	FlagSeed        = "seed"
)

// flagKeys maps flag names to koanf keys.
var flagKeys = map[string]string{
	FlagLogFormat:   "log.format",
	FlagLogLevel:    "log.level",
	FlagLogFile:     "log.file.path",
	FlagMetricsAddr: "metrics_addr",
	FlagSeed:        "seed",
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(FlagConfig, "", "config file path (YAML)")
	fs.String(FlagLogFormat, d.Log.Format, "log format (json or text)")
	fs.String(FlagLogLevel, d.Log.Level, "log level (debug, info, warn, error)")
	fs.String(FlagLogFile, "", "also write logs to this rotating file")
	fs.String(FlagMetricsAddr, d.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.Uint64(FlagSeed, 0, "random seed (0 = nondeterministic)")
}

// Load reads the YAML file at path, checks it against the schema, and
// applies explicitly set flags on top. Either argument may be empty/nil.
// The result is not semantically validated; call Validate.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // operator-supplied config path
		if err != nil {
			return nil, oops.In("config").Code(CodeInvalidConfig).With("path", path).Wrap(err)
		}
		if err := ValidateSchema(data); err != nil {
			return nil, oops.In("config").Code(CodeInvalidConfig).With("path", path).
				Errorf("%s", FormatSchemaError(err))
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.In("config").Code(CodeInvalidConfig).With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, f.Value.String()
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.In("config").Code(CodeInvalidConfig).Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.In("config").Code(CodeInvalidConfig).With("path", path).Wrap(err)
	}
	return &cfg, nil
}
