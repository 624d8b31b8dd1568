package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "logFolder", cfg.LogFolder)
	assert.Equal(t, "parsedLogs", cfg.OutputFolder)
	assert.Equal(t, "PARSED_", cfg.OutputPrefix)
	assert.False(t, cfg.CombineDay)
	assert.False(t, cfg.ResetBetweenFiles)
	assert.Equal(t, "TRAINING_LOG", cfg.Format.Marker)
	assert.Equal(t, "--", cfg.Format.Separator)
	assert.Equal(t, "Time=", cfg.Format.TimePrefix)
	assert.Equal(t, DefaultEndKeywords, cfg.Format.EndKeywords)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".trainlog.yaml")
	yaml := `logs: /data/logs
combine-day: true
format:
  marker: AUDIT
  separator: "|"
  end-keywords: [Submit, Cancel]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/data/logs", cfg.LogFolder)
	assert.True(t, cfg.CombineDay)
	assert.Equal(t, "AUDIT", cfg.Format.Marker)
	assert.Equal(t, "|", cfg.Format.Separator)
	assert.Equal(t, []string{"Submit", "Cancel"}, cfg.Format.EndKeywords)
	// Untouched keys keep their defaults.
	assert.Equal(t, "parsedLogs", cfg.OutputFolder)
}

func TestValidateRejectsEmptyGrammar(t *testing.T) {
	cfg := Default()
	cfg.Format.Marker = ""
	cfg.Format.Separator = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marker")
	assert.Contains(t, err.Error(), "separator")
}

func TestDefaultFormatCopiesKeywords(t *testing.T) {
	f := DefaultFormat()
	f.EndKeywords[0] = "changed"
	assert.Equal(t, "Edit", DefaultEndKeywords[0])
}
