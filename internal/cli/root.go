package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/wdgraph/internal/model"
)

// version is set at build time
var version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wdgraph",
	Short: "wdgraph - Wikidata entity dumps to property-graph nodes",
	Long: `wdgraph transforms Wikidata JSON entity dumps into flat, typed node records
and loads them into a property-graph store.

Items and properties share one numeric key space without colliding.
Claims become arrays of text or numbers keyed by the property's name,
taken from a property-name lookup file. Entity references, external ids
and media are left out.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of wdgraph.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "wdgraph %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.wdgraph/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(model.DefaultConfig())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".wdgraph"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match WDGRAPH_*, e.g. WDGRAPH_STORE_PATH
	viper.SetEnvPrefix("WDGRAPH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so that environment variables reach Unmarshal
func setDefaults(cfg *model.Config) {
	viper.SetDefault("language", cfg.Language)
	viper.SetDefault("store.driver", cfg.Store.Driver)
	viper.SetDefault("store.path", cfg.Store.Path)
	viper.SetDefault("store.batch_size", cfg.Store.BatchSize)
	viper.SetDefault("input.items", cfg.Input.Items)
	viper.SetDefault("input.properties", cfg.Input.Properties)
	viper.SetDefault("input.property_names", cfg.Input.PropertyNames)
	viper.SetDefault("export.property_dump", cfg.Export.PropertyDump)
	viper.SetDefault("concurrency.parse_workers", cfg.Concurrency.ParseWorkers)
	viper.SetDefault("concurrency.queue_size", cfg.Concurrency.QueueSize)
	viper.SetDefault("log.level", cfg.Log.Level)
	viper.SetDefault("log.format", cfg.Log.Format)
	viper.SetDefault("log.diagnostics_per_second", cfg.Log.DiagnosticsPerSecond)
	viper.SetDefault("log.diagnostics_burst", cfg.Log.DiagnosticsBurst)
	viper.SetDefault("progress.interval", cfg.Progress.Interval)
	viper.SetDefault("metrics.textfile", cfg.Metrics.Textfile)
}

// loadConfig builds the effective configuration from defaults, config file, env and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return cfg, nil
}
