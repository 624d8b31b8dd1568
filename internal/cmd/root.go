package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atikulmunna/trainlog/internal/config"
	"github.com/atikulmunna/trainlog/internal/logging"
	"github.com/atikulmunna/trainlog/internal/output"
	"github.com/atikulmunna/trainlog/internal/report"
)

var (
	cfgFile   string
	outputFmt string
	logLevel  string
	quiet     bool
)

// rootCmd runs one report when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "trainlog",
	Short: "trainlog — training log action-sequence reports",
	Long: `trainlog parses the training logs written by the ODK trainingLogger.js
client and writes a report grouping logged actions into action sequences,
with the time taken by each action and by each sequence.

Log files are read from the log folder (recursively, in name order) and the
report is written to the output folder, one file per run or per day.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(os.Stderr, logging.ParseLevel(logLevel))
	},
	RunE: runReport,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults(viper.GetViper())

	d := config.Default()
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.trainlog.yaml)")
	pf.StringVarP(&outputFmt, "output", "o", report.FormatText, "report format: text, json")
	pf.StringVar(&logLevel, "log-level", "info", "diagnostic log level: debug, info, warn, error")
	pf.BoolVarP(&quiet, "quiet", "q", false, "do not echo log lines to the console")

	pf.String(config.KeyLogFolder, d.LogFolder, "folder containing the training log files")
	pf.String(config.KeyOutputFolder, d.OutputFolder, "folder the report is written to")
	pf.Bool(config.KeyCombineDay, d.CombineDay, "append to one report per day instead of one per run")
	pf.Bool(config.KeyResetBetweenFiles, d.ResetBetweenFiles, "drop an unfinished action sequence when a new file starts")
	pf.String(config.KeyInclude, d.Include, "only parse files matching this glob (relative to the log folder)")

	for _, key := range []string{
		config.KeyLogFolder,
		config.KeyOutputFolder,
		config.KeyCombineDay,
		config.KeyResetBetweenFiles,
		config.KeyInclude,
	} {
		cobra.CheckErr(viper.BindPFlag(key, pf.Lookup(key)))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".trainlog")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("TRAINLOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func reportOptions() report.Options {
	opts := report.Options{Format: outputFmt}
	if !quiet {
		opts.Echo = output.NewEcho(os.Stdout)
	}
	return opts
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	summary, err := report.Run(cfg, reportOptions())
	if err != nil {
		return fmt.Errorf("error parsing log files: %w", err)
	}
	if !quiet {
		printSummary(os.Stderr, summary)
	}
	return nil
}
