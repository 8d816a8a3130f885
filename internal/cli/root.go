// Package cli implements the ctydat command line tool.
package cli

import (
	"errors"
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/user00265/ctydatapi/internal/config"
	"github.com/user00265/ctydatapi/internal/ctyfile"
	"github.com/user00265/ctydatapi/internal/dxcc"
	"github.com/user00265/ctydatapi/internal/logging"
	"github.com/user00265/ctydatapi/version"
)

// NewRootCmd builds the ctydat command tree. Each call returns an
// independent tree with its own configuration.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "ctydat",
		Short: "Resolve amateur radio callsigns to DXCC entities.",
		Long: `ctydat reads a CTY.DAT country file and resolves callsigns to their country
entity, with CQ and ITU zones, continent, coordinates and time offset.

Country files are published at https://www.country-files.com/`,
		Version:       version.ProjectVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(v, cfgFile); err != nil {
				return err
			}
			lvl, err := logging.ParseLevel(v.GetString("loglevel"))
			if err != nil {
				return err
			}
			logging.SetOutput(cmd.ErrOrStderr())
			logging.SetLevel(lvl)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ctydat.yaml)")
	flags.StringP("loglevel", "l", "warn", "Set log level. Available: crit, error, warn, notice, info, debug")
	flags.StringP("file", "f", "cty.dat", "Country file to read")
	flags.String("charset", config.DefaultCtyCharset, "Character set of the country file, e.g. utf-8 or iso-8859-1")
	for _, name := range []string{"loglevel", "file", "charset"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(newLookupCmd(v), newCheckCmd(v), newCountriesCmd(v))
	return rootCmd
}

// Execute runs the command line tool and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set. A missing
// $HOME/.ctydat.yaml is not an error; a missing --config file is.
func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return err
		}
		v.AddConfigPath(home)
		v.SetConfigName(".ctydat")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("CTYDAT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	logging.Debug("Using config file %s", v.ConfigFileUsed())
	return nil
}

func loadIndex(v *viper.Viper) (*dxcc.Index, error) {
	path := v.GetString("file")
	text, err := ctyfile.ReadFile(path, v.GetString("charset"))
	if err != nil {
		return nil, err
	}
	idx, err := dxcc.Build(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return idx, nil
}
