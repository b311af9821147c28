package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	context2 "github.com/metaforge/modelvc/pkg/context"
	"github.com/metaforge/modelvc/pkg/mlogger"
	"github.com/metaforge/modelvc/pkg/storage"
	"github.com/metaforge/modelvc/pkg/storage/localvcs"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "modelvc",
	Short: "modelvc versions named model artifacts",
	Long: `modelvc manages versioned collections of named model artifacts.

Projects hold entities on a main development line. Changes are staged in
isolated workspaces, rebased onto the moving stream head with three-way
merging, sealed as immutable revisions and released as write-once
versions. Patch lines branch off released versions for targeted fixes.
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)
	// accept underscored spellings of dashed flag names
	rootCmd.PersistentFlags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	addStorePathFlag(rootCmd)
	addLogLevelFlag(rootCmd)
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	viper.SetDefault("store", defaultStorePath())
	viper.SetDefault("loglevel", "info")
	if os.Getenv("MODELVC_CONFIG") != "" {
		viper.SetConfigFile(os.Getenv("MODELVC_CONFIG"))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.modelvc")
		viper.AddConfigPath("/etc/modelvc")
		viper.SetConfigName("modelvc")
	}

	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		infoLogger.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".modelvc-store"
	}
	return filepath.Join(home, ".modelvc", "store")
}

// paramsToStores assembles the store handle shared by all commands:
// a file-backed provider rooted at the configured path, traced through
// the configured logger.
func paramsToStores(flags flagsT) (context2.Stores, error) {
	logLevel := flags.root.logLevel
	if logLevel == "" {
		logLevel = viper.GetString("loglevel")
	}
	l, err := mlogger.GetLogger(logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to set log level: %w", err)
	}
	storePath := flags.root.storePath
	if storePath == "" {
		storePath = viper.GetString("store")
	}
	provider := localvcs.New(afero.NewOsFs(), storePath)
	return context2.New(storage.Logged(provider, l), context2.Logger(l)), nil
}

func printYAML(v interface{}) {
	buf, err := yaml.Marshal(v)
	if err != nil {
		wrapFatalln("marshal output", err)
		return
	}
	fmt.Print(string(buf))
}
