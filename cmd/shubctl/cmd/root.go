package cmd

import (
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/davidxi/scrapinghub-go/internal/shubctl"
	"github.com/davidxi/scrapinghub-go/scrapinghub"
)

const envPrefix = "SH"

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:           "shubctl",
		Short:         "shubctl manages Scrapinghub projects, jobs and items.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addConnectionFlags(cmd.PersistentFlags(), v)

	cmd.AddCommand(
		projectsCmd(v),
		spidersCmd(v),
		scheduleCmd(v),
		jobsCmd(v),
		countCmd(v),
		tagCmd(v),
		stopCmd(v),
		deleteCmd(v),
		itemsCmd(v),
		logCmd(v),
		versionCmd(),
	)

	return cmd
}

func addConnectionFlags(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("config", "", "config file (default is $HOME/.shubctl.yaml)")
	flags.String("apikey", "", "Scrapinghub API key (env SH_APIKEY)")
	flags.String("url", scrapinghub.DefaultBaseURL, "dash API endpoint")
	flags.String("storage-url", scrapinghub.DefaultStorageURL, "items storage endpoint")
	flags.Duration("timeout", scrapinghub.DefaultTimeout, "per-request timeout")
	flags.Int("retries", scrapinghub.MaxRetries, "read attempts for items")
	flags.Duration("retry-interval", scrapinghub.RetryInterval, "pause between item read attempts")
	flags.Bool("debug", false, "log requests to stderr")

	for _, name := range []string{"apikey", "url", "storage-url", "timeout", "retries", "retry-interval", "debug"} {
		v.BindPFlag(name, flags.Lookup(name))
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// initParams resolves the connection settings from flags, environment and
// the config file.
func initParams(cmd *cobra.Command, v *viper.Viper, params *shubctl.Params) error {
	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if err := loadConfigFile(v, cfgFile); err != nil {
		return err
	}

	params.APIKey = v.GetString("apikey")
	params.BaseURL = v.GetString("url")
	params.StorageURL = v.GetString("storage-url")
	params.Timeout = v.GetDuration("timeout")
	params.ItemsRetries = v.GetInt("retries")
	params.RetryInterval = v.GetDuration("retry-interval")
	params.Debug = v.GetBool("debug")
	return nil
}

func loadConfigFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return errors.Wrap(err, "error getting user home directory")
		}
		v.AddConfigPath(home)
		v.SetConfigName(".shubctl")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return nil
		}
		return errors.Wrapf(err, "error reading config file %s", v.ConfigFileUsed())
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return RootCmd().Execute()
}
