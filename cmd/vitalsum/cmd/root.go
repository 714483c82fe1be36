// Package cmd implements the vitalsum CLI commands.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vitalsum/vitalsum/internal/cmd/globals"
	"github.com/vitalsum/vitalsum/pkg/logging"
)

var (
	configFile  string
	globalFlags *globals.Flags

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "vitalsum",
	Short: "Monthly summaries from health export data",
	Long: `Vitalsum reconciles the noisy, redundant files of a personal health
export (step counts, heart-rate-variability histograms) into a single
monthly summary.

The sources routinely disagree, hide their header rows, and encode
timestamps inconsistently; vitalsum picks the most trustworthy figure
per metric and month, and degrades gracefully when a source is missing
or unreadable.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is $HOME/.vitalsum.yaml)")
	globalFlags = globals.AddFlags(rootCmd)

	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		panic(fmt.Sprintf("Failed to bind verbose flag: %v", err))
	}
	if err := viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet")); err != nil {
		panic(fmt.Sprintf("Failed to bind quiet flag: %v", err))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".vitalsum")
	}

	// .env files load before Viper env binding.
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err == nil && globalFlags != nil && globalFlags.Verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	configureLogging()
}

// loadEnvFiles loads .env files from the current directory.
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
}

// configureLogging sets up the logging system based on configuration.
func configureLogging() {
	level := "info"
	if globalFlags != nil && globalFlags.Verbose || viper.GetBool("verbose") {
		level = "debug"
	}
	if globalFlags != nil && globalFlags.Quiet || viper.GetBool("quiet") {
		level = "warn"
	}

	cfg := logging.DefaultConfig()
	cfg.Level = level
	if globalFlags != nil && globalFlags.NoColor {
		cfg.NoColor = true
	}
	logging.Configure(cfg)
}
