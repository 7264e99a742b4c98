package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/angelcm/cowork-dashboard/internal/app"
	"github.com/angelcm/cowork-dashboard/internal/config"
)

type cli struct {
	cfg     config.Config
	flags   overrides
	verbose bool
	now     func() time.Time
	log     *slog.Logger
	app     *app.App
}

// overrides holds flag values. Only flags set on the command line replace
// what config.Load produced.
type overrides struct {
	store, dataDir, redisAddr, tz string
	slotHour, maxPerDay           int
}

func (o overrides) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("store") {
		cfg.StoreBackend = o.store
	}
	if fs.Changed("data-dir") {
		cfg.DataDir = o.dataDir
	}
	if fs.Changed("redis-addr") {
		cfg.Redis.Addr = o.redisAddr
	}
	if fs.Changed("tz") {
		cfg.Schedule.Timezone = o.tz
	}
	if fs.Changed("slot-hour") {
		cfg.Schedule.SlotHour = o.slotHour
	}
	if fs.Changed("max-per-day") {
		cfg.Schedule.MaxPerDay = o.maxPerDay
	}
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithClock(time.Now)
}

func newRootCmdWithClock(now func() time.Time) *cobra.Command {
	c := &cli{now: now}

	root := &cobra.Command{
		Use:           "contentctl",
		Short:         "Operate the content calendar from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl := slog.LevelWarn
			if c.verbose {
				lvl = slog.LevelDebug
			}
			c.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.flags.apply(cmd.Flags(), &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			c.cfg = cfg

			a, err := app.New(cmd.Context(), c.cfg, c.log, nil, c.now)
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.app != nil {
				return c.app.Close()
			}
			return nil
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&c.flags.store, "store", "file", "store backend: file, memory or redis; overrides STORE_BACKEND")
	f.StringVar(&c.flags.dataDir, "data-dir", "./data", "directory of the JSON file store; overrides DATA_DIR")
	f.StringVar(&c.flags.redisAddr, "redis-addr", "", "redis address; overrides REDIS_ADDR")
	f.StringVar(&c.flags.tz, "tz", "UTC", "time zone for calendar days; overrides SCHEDULE_TZ")
	f.IntVar(&c.flags.slotHour, "slot-hour", 10, "hour of day for assigned slots; overrides SLOT_HOUR")
	f.BoolVarP(&c.verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(
		c.distributeCmd(),
		c.calendarCmd(),
		c.dropCmd(),
		c.funnelsCmd(),
		c.exportCmd(),
	)
	return root
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
