package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/davidxi/scrapinghub-go/internal/shubctl"
	"github.com/davidxi/scrapinghub-go/scrapinghub"
)

func projectsCmd(v *viper.Viper) *cobra.Command {
	return projectsCmdWithApp(v, shubctl.New())
}

func projectsCmdWithApp(v *viper.Viper, a *shubctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List the projects the API key can access.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, v, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Projects()
		},
	}
	return cmd
}

func spidersCmd(v *viper.Viper) *cobra.Command {
	return spidersCmdWithApp(v, shubctl.New())
}

func spidersCmdWithApp(v *viper.Viper, a *shubctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spiders <project>",
		Short: "List the spiders of a project.",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, v, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Spiders(args[0])
		},
	}
	return cmd
}

func scheduleCmd(v *viper.Viper) *cobra.Command {
	return scheduleCmdWithApp(v, shubctl.New())
}

func scheduleCmdWithApp(v *viper.Viper, a *shubctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule <project> <spider>",
		Short: "Run a spider.",
		Long:  `Run a spider. Spider arguments and job settings are passed with -a key=value.`,
		Args:  cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, v, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			spiderArgs, err := cmd.Flags().GetStringToString("arg")
			if err != nil {
				return err
			}
			return a.Schedule(args[0], args[1], spiderArgs)
		},
	}
	cmd.Flags().StringToStringP("arg", "a", nil, "spider argument or job setting, key=value")
	return cmd
}

func jobsCmd(v *viper.Viper) *cobra.Command {
	return jobsCmdWithApp(v, shubctl.New())
}

func jobsCmdWithApp(v *viper.Viper, a *shubctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs <project>",
		Short: "List the jobs of a project.",
		Long:  `List the jobs of a project, optionally filtered, e.g. --filter state=finished --filter spider=quotes.`,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, v, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := cmd.Flags().GetStringToString("filter")
			if err != nil {
				return err
			}
			return a.Jobs(args[0], filter)
		},
	}
	addFilterFlag(cmd)
	return cmd
}

func countCmd(v *viper.Viper) *cobra.Command {
	return countCmdWithApp(v, shubctl.New())
}

func countCmdWithApp(v *viper.Viper, a *shubctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count <project>",
		Short: "Count the jobs of a project.",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, v, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := cmd.Flags().GetStringToString("filter")
			if err != nil {
				return err
			}
			return a.Count(args[0], filter)
		},
	}
	addFilterFlag(cmd)
	return cmd
}

func tagCmd(v *viper.Viper) *cobra.Command {
	return tagCmdWithApp(v, shubctl.New())
}

func tagCmdWithApp(v *viper.Viper, a *shubctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag <project>",
		Short: "Add or remove tags on the jobs of a project.",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, v, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := cmd.Flags().GetStringToString("filter")
			if err != nil {
				return err
			}
			add, err := cmd.Flags().GetStringSlice("add")
			if err != nil {
				return err
			}
			remove, err := cmd.Flags().GetStringSlice("remove")
			if err != nil {
				return err
			}
			return a.Tag(args[0], filter, add, remove)
		},
	}
	addFilterFlag(cmd)
	cmd.Flags().StringSlice("add", nil, "tags to add")
	cmd.Flags().StringSlice("remove", nil, "tags to remove")
	return cmd
}

func stopCmd(v *viper.Viper) *cobra.Command {
	return stopCmdWithApp(v, shubctl.New())
}

func stopCmdWithApp(v *viper.Viper, a *shubctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop <job>",
		Short: "Stop a running job.",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, v, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Stop(args[0])
		},
	}
	return cmd
}

func deleteCmd(v *viper.Viper) *cobra.Command {
	return deleteCmdWithApp(v, shubctl.New())
}

func deleteCmdWithApp(v *viper.Viper, a *shubctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <job>",
		Short: "Delete a job.",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, v, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Delete(args[0])
		},
	}
	return cmd
}

func itemsCmd(v *viper.Viper) *cobra.Command {
	return itemsCmdWithApp(v, shubctl.New())
}

func itemsCmdWithApp(v *viper.Viper, a *shubctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items <job>",
		Short: "Print the items of a job as JSON lines.",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, v, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := itemsOptions(cmd)
			if err != nil {
				return err
			}
			return a.Items(args[0], opts)
		},
	}
	cmd.Flags().Int("offset", 0, "index of the first item")
	cmd.Flags().Int("count", -1, "maximum number of items, -1 for all")
	cmd.Flags().StringSlice("meta", nil, "metadata fields to include, e.g. _key,_ts")
	return cmd
}

func itemsOptions(cmd *cobra.Command) (scrapinghub.ItemsOptions, error) {
	var opts scrapinghub.ItemsOptions
	offset, err := cmd.Flags().GetInt("offset")
	if err != nil {
		return opts, err
	}
	count, err := cmd.Flags().GetInt("count")
	if err != nil {
		return opts, err
	}
	meta, err := cmd.Flags().GetStringSlice("meta")
	if err != nil {
		return opts, err
	}

	opts.Offset = offset
	opts.Meta = meta
	if count >= 0 {
		opts.Count = scrapinghub.Int(count)
	}
	return opts, nil
}

func logCmd(v *viper.Viper) *cobra.Command {
	return logCmdWithApp(v, shubctl.New())
}

func logCmdWithApp(v *viper.Viper, a *shubctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log <job>",
		Short: "Print the log of a job as JSON lines.",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, v, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Log(args[0])
		},
	}
	return cmd
}

func versionCmd() *cobra.Command {
	a := shubctl.New()
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print client version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.Out = cmd.OutOrStdout()
			return a.Version()
		},
	}
	return cmd
}

func addFilterFlag(cmd *cobra.Command) {
	cmd.Flags().StringToString("filter", nil, "job filter, key=value (repeatable)")
}
