package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/thediveo/enumflag/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "LOCKC"

type logFormat enumflag.Flag

const (
	formatJSON logFormat = iota
	formatConsole
)

var logFormatIds = map[logFormat][]string{
	formatJSON:    {"json"},
	formatConsole: {"console"},
}

var logLevelIds = map[zapcore.Level][]string{
	zapcore.DebugLevel: {"debug"},
	zapcore.InfoLevel:  {"info"},
	zapcore.WarnLevel:  {"warn", "warning"},
	zapcore.ErrorLevel: {"error"},
}

// globalOptions holds the flags shared by every subcommand.
type globalOptions struct {
	configFile string
	level      zapcore.Level
	format     logFormat

	logger *zap.Logger
}

func (g *globalOptions) define(fs *pflag.FlagSet) {
	fs.StringVar(&g.configFile, "config", "", "Config file (YAML, TOML or JSON) with flag values")
	fs.Var(enumflag.New(&g.level, "level", logLevelIds, enumflag.EnumCaseInsensitive),
		"log-level", "Log level: debug, info, warn, error")
	fs.Var(enumflag.New(&g.format, "format", logFormatIds, enumflag.EnumCaseInsensitive),
		"log-format", "Log encoding: json, console")
}

func (g *globalOptions) newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if g.format == formatConsole {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(g.level)
	return cfg.Build()
}

// applyConfig fills every flag not given on the command line from the
// environment or, when configFile is set, from that file. Explicit flags
// always win.
func applyConfig(fs *pflag.FlagSet, configFile string) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	if err := v.BindPFlags(fs); err != nil {
		return err
	}

	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed || f.Name == "config" || !v.IsSet(f.Name) {
			return
		}
		if serr := fs.Set(f.Name, v.GetString(f.Name)); serr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", f.Name, serr))
		}
	})
	return err
}
