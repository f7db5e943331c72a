package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/Noofbiz/openego/corpus"
	"github.com/Noofbiz/openego/datasets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"
)

// cfg will hold the validated, final configuration.
var cfg = &Config{}

// input holds the raw configuration from all sources (file, env, flags).
var input = &ConfigRawInput{}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:           "openego",
	Short:         "Inspect egocentric hand-object demonstration corpora.",
	Long:          `openego indexes a corpus of benchmark demonstrations and loads joints, annotations, metadata and frames on demand.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(actionsCmd)
	rootCmd.AddCommand(plotCmd)
	rootCmd.AddCommand(exportCmd)

	rootCmd.PersistentFlags().String("root", "", "Corpus root directory")
	rootCmd.PersistentFlags().StringSlice("modalities", nil, "Modalities to load: joint, annotation, metadata, rgb (default all)")
	rootCmd.PersistentFlags().String("store-format", DefaultStoreFormat, "Keyed-array store format: npz or hdf5")
	rootCmd.PersistentFlags().String("video-pattern", corpus.DefaultPattern, "Base-name glob selecting demonstration videos")
	rootCmd.PersistentFlags().Float64("confidence-threshold", datasets.DefaultConfidenceThreshold, "Confidence above which an EgoDex joint is visible")
	rootCmd.PersistentFlags().StringSlice("generic-benchmarks", nil, "Extra benchmark ids using the per-demo directory layout")
	rootCmd.PersistentFlags().String("ffmpeg", DefaultFFmpeg, "ffmpeg executable")
	rootCmd.PersistentFlags().String("ffprobe", DefaultFFprobe, "ffprobe executable")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		LogFatal("Error binding root flags", err)
	}

	// klog flags (-v, -logtostderr, ...) stay out of viper.
	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)

	plotCmd.Flags().String("out", ".", "Output directory for the trajectory PNG")
	exportCmd.Flags().String("out", "actions.parquet", "Parquet output file")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".openego")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("OPENEGO")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("store-format", DefaultStoreFormat)
	viper.SetDefault("video-pattern", corpus.DefaultPattern)
	viper.SetDefault("ffmpeg", DefaultFFmpeg)
	viper.SetDefault("ffprobe", DefaultFFprobe)
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ *cobra.Command, _ []string) error {
	// 1. Read config file. Missing files fall back to defaults, env and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// 2. Unmarshal all resolved values into the raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Validate and populate cfg.
	return ProcessAndValidate(cfg, input)
}

// Execute runs the root command.
func Execute() error {
	defer klog.Flush()
	return rootCmd.Execute()
}
