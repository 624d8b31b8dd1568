package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds all trainlog configuration.
type Config struct {
	LogFolder         string
	OutputFolder      string
	OutputPrefix      string
	CombineDay        bool // one report per day instead of one per run
	ResetBetweenFiles bool // drop an open sequence when a new file starts
	Include           string
	Format            Format
	Serve             ServeConfig
	Watch             WatchConfig
}

// Format describes the training-log line grammar and the keywords that
// close an action sequence. It must match the client-side logger.
type Format struct {
	Marker      string
	Separator   string
	TimePrefix  string
	EndKeywords []string
}

// ServeConfig holds HTTP server settings.
type ServeConfig struct {
	Port string
}

// WatchConfig holds folder-watching settings.
type WatchConfig struct {
	Debounce time.Duration
}

// Viper keys.
const (
	KeyLogFolder         = "logs"
	KeyOutputFolder      = "out"
	KeyOutputPrefix      = "prefix"
	KeyCombineDay        = "combine-day"
	KeyResetBetweenFiles = "reset-between-files"
	KeyInclude           = "include"
	KeyMarker            = "format.marker"
	KeySeparator         = "format.separator"
	KeyTimePrefix        = "format.time-prefix"
	KeyEndKeywords       = "format.end-keywords"
	KeyServePort         = "serve.port"
	KeyWatchDebounce     = "watch.debounce"
)

// DefaultEndKeywords are the details values that finish a user flow in the
// ODK cold-chain forms.
var DefaultEndKeywords = []string{
	"Edit", "Delete",
	"Edit Log", "Delete Log",
	"Add Refrigerator", "Edit Refrigerator", "Delete Refrigerator", "Move Refrigerator", "Delete Move",
	"Edit Temperature Data", "Delete Temperature Data",
	"Edit Refrigerator Status",
	"Edit Cold Room Status",
	"Add Maintenance Record",
	"Add Cold Room", "Edit Cold Room", "Delete Cold Room",
	"Edit Facility", "Delete Facility",
}

// DefaultFormat returns the grammar written by trainingLogger.js.
func DefaultFormat() Format {
	return Format{
		Marker:      "TRAINING_LOG",
		Separator:   "--",
		TimePrefix:  "Time=",
		EndKeywords: append([]string(nil), DefaultEndKeywords...),
	}
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		LogFolder:    "logFolder",
		OutputFolder: "parsedLogs",
		OutputPrefix: "PARSED_",
		Include:      "**",
		Format:       DefaultFormat(),
		Serve:        ServeConfig{Port: "8080"},
		Watch:        WatchConfig{Debounce: 500 * time.Millisecond},
	}
}

// SetDefaults registers Default() on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyLogFolder, d.LogFolder)
	v.SetDefault(KeyOutputFolder, d.OutputFolder)
	v.SetDefault(KeyOutputPrefix, d.OutputPrefix)
	v.SetDefault(KeyCombineDay, d.CombineDay)
	v.SetDefault(KeyResetBetweenFiles, d.ResetBetweenFiles)
	v.SetDefault(KeyInclude, d.Include)
	v.SetDefault(KeyMarker, d.Format.Marker)
	v.SetDefault(KeySeparator, d.Format.Separator)
	v.SetDefault(KeyTimePrefix, d.Format.TimePrefix)
	v.SetDefault(KeyEndKeywords, d.Format.EndKeywords)
	v.SetDefault(KeyServePort, d.Serve.Port)
	v.SetDefault(KeyWatchDebounce, d.Watch.Debounce)
}

// Load reads a Config out of v. Defaults must already be registered.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		LogFolder:         v.GetString(KeyLogFolder),
		OutputFolder:      v.GetString(KeyOutputFolder),
		OutputPrefix:      v.GetString(KeyOutputPrefix),
		CombineDay:        v.GetBool(KeyCombineDay),
		ResetBetweenFiles: v.GetBool(KeyResetBetweenFiles),
		Include:           v.GetString(KeyInclude),
		Format: Format{
			Marker:      v.GetString(KeyMarker),
			Separator:   v.GetString(KeySeparator),
			TimePrefix:  v.GetString(KeyTimePrefix),
			EndKeywords: v.GetStringSlice(KeyEndKeywords),
		},
		Serve: ServeConfig{Port: v.GetString(KeyServePort)},
		Watch: WatchConfig{Debounce: v.GetDuration(KeyWatchDebounce)},
	}
	return cfg, cfg.Validate()
}

// Validate reports configuration that would make every line unparseable.
func (c Config) Validate() error {
	var errs []error
	if c.LogFolder == "" {
		errs = append(errs, errors.New("log folder must not be empty"))
	}
	if c.OutputFolder == "" {
		errs = append(errs, errors.New("output folder must not be empty"))
	}
	if c.Format.Marker == "" {
		errs = append(errs, errors.New("format marker must not be empty"))
	}
	if c.Format.Separator == "" {
		errs = append(errs, errors.New("format separator must not be empty"))
	}
	return errors.Join(errs...)
}
