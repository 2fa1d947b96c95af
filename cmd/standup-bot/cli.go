package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ykvlv/standup-bot/internal/app"
	"github.com/ykvlv/standup-bot/internal/config"
	"github.com/ykvlv/standup-bot/internal/domain"
	"github.com/ykvlv/standup-bot/internal/format"
	"github.com/ykvlv/standup-bot/internal/report"
)

func newRootCmd(cfg config.Config, log *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:          "standup-bot",
		Short:        "Telegram standup reminders, follow-ups and recaps",
		SilenceUsage: true,
	}
	f := root.PersistentFlags()
	f.StringVarP(&cfg.DataDir, "data-dir", "d", cfg.DataDir, "Directory holding the standup store")
	f.StringVar(&cfg.StoreDriver, "store", cfg.StoreDriver, "Store driver: json, bolt or sqlite")

	// Flags write into cfg, so subcommands read it through a pointer.
	root.AddCommand(
		newRunCmd(&cfg, log),
		newRecapCmd(&cfg, log),
		newConfigCmd(&cfg, log),
		newUsersCmd(&cfg, log),
	)
	return root
}

func newRunCmd(cfg *config.Config, log *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Telegram and run the scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := app.New(*cfg, log)
			if err != nil {
				log.Error("app init failed", zap.Error(err))
				return err
			}
			return application.Run(cmd.Context())
		},
	}
}

// withCore opens the store for an offline command and closes it afterwards.
func withCore(ctx context.Context, cfg *config.Config, log *zap.Logger, fn func(*app.Core) error) error {
	core, err := app.OpenCore(ctx, *cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := core.Close(); err != nil {
			log.Warn("store close error", zap.Error(err))
		}
	}()
	return fn(core)
}

func newRecapCmd(cfg *config.Config, log *zap.Logger) *cobra.Command {
	var date string
	recap := &cobra.Command{
		Use:   "recap",
		Short: "Print a standup recap from the local store",
	}
	recap.PersistentFlags().StringVar(&date, "date", "", "Day (daily) or last day (weekly) as YYYY-MM-DD; default today")

	day := func(core *app.Core) (time.Time, *time.Location, error) {
		loc := core.Settings.Location()
		if date == "" {
			return time.Now().In(loc), loc, nil
		}
		d, err := domain.ParseDate(date, loc)
		return d, loc, err
	}

	recap.AddCommand(
		&cobra.Command{
			Use:   "daily",
			Short: "Recap of one day",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withCore(cmd.Context(), cfg, log, func(core *app.Core) error {
					d, loc, err := day(core)
					if err != nil {
						return err
					}
					rep, err := core.Reports.Daily(cmd.Context(), d, loc)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(cmd.OutOrStdout(), report.RenderDaily(rep, format.Plain{}))
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "weekly",
			Short: "Recap of the seven days ending on --date",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withCore(cmd.Context(), cfg, log, func(core *app.Core) error {
					d, loc, err := day(core)
					if err != nil {
						return err
					}
					rep, err := core.Reports.Weekly(cmd.Context(), d, loc)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(cmd.OutOrStdout(), report.RenderWeekly(rep, format.Plain{}))
					return err
				})
			},
		},
	)
	return recap
}

func newConfigCmd(cfg *config.Config, log *zap.Logger) *cobra.Command {
	var output string
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the persisted standup settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCore(cmd.Context(), cfg, log, func(core *app.Core) error {
				var (
					b   []byte
					err error
				)
				switch output {
				case "yaml":
					b, err = yaml.Marshal(core.Settings.Current())
				case "json":
					b, err = json.MarshalIndent(core.Settings.Current(), "", "    ")
					b = append(b, '\n')
				default:
					return fmt.Errorf("unknown output format %q (want yaml or json)", output)
				}
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(b)
				return err
			})
		},
	}
	show.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: yaml or json")

	root := &cobra.Command{Use: "config", Short: "Inspect standup settings"}
	root.AddCommand(show)
	return root
}

func newUsersCmd(cfg *config.Config, log *zap.Logger) *cobra.Command {
	list := &cobra.Command{
		Use:   "list",
		Short: "List tracked users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCore(cmd.Context(), cfg, log, func(core *app.Core) error {
				users := core.Registry.Users()
				if len(users) == 0 {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "No users are currently on the standup notification list.")
					return err
				}
				for _, u := range users {
					if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", u.ID, u.Name()); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	root := &cobra.Command{Use: "users", Short: "Inspect tracked users"}
	root.AddCommand(list)
	return root
}
