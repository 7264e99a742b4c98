package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/angelcm/cowork-dashboard/internal/apperr"
	"github.com/angelcm/cowork-dashboard/internal/scheduler"
)

func (c *cli) location() *time.Location { return c.app.Calendar.Location() }

func (c *cli) parseDay(s string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", s, c.location())
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: use YYYY-MM-DD", s)
	}
	return d, nil
}

func (c *cli) distributeCmd() *cobra.Command {
	var req scheduler.Request
	cmd := &cobra.Command{
		Use:   "distribute",
		Short: "Assign calendar slots to approved, unscheduled content",
		RunE: func(cmd *cobra.Command, args []string) error {
			got, err := c.app.Scheduler.AutoDistribute(cmd.Context(), req)
			var warn *apperr.UnapprovedWarning
			if errors.As(err, &warn) {
				return fmt.Errorf("%w (rerun with --confirm)", err)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"assignments": got})
		},
	}
	cmd.Flags().StringVar(&req.ProjectID, "project", "", "project id")
	cmd.Flags().IntVar(&req.CadenceDays, "cadence", 1, "days between posts")
	cmd.Flags().BoolVar(&req.ConfirmUnapproved, "confirm", false, "schedule approved items even if others are not approved")
	cmd.Flags().IntVar(&c.flags.maxPerDay, "max-per-day", 0, "skip days already holding this many items (0 = no limit)")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func (c *cli) calendarCmd() *cobra.Command {
	var start, end, projects string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "List events between two dates (inclusive) and the unscheduled backlog",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := c.parseDay(start)
			if err != nil {
				return err
			}
			to, err := c.parseDay(end)
			if err != nil {
				return err
			}
			var ids []string
			for _, p := range strings.Split(projects, ",") {
				if p = strings.TrimSpace(p); p != "" {
					ids = append(ids, p)
				}
			}
			res, err := c.app.Calendar.GetEvents(cmd.Context(), ids, from, to.AddDate(0, 0, 1).Add(-time.Nanosecond))
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&projects, "projects", "", "comma separated project ids")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func (c *cli) dropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop <content-id> <YYYY-MM-DD>",
		Short: "Move one item to a day, as a calendar drag-and-drop does",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := c.parseDay(args[1])
			if err != nil {
				return err
			}
			item, err := c.app.Calendar.RescheduleViaDrop(cmd.Context(), args[0], day)
			if err != nil {
				return err
			}
			return printJSON(cmd, item)
		},
	}
}

func (c *cli) funnelsCmd() *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "funnels",
		Short: "Show detected TOFU -> MOFU -> BOFU chains for a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.app.Funnels.ForProject(cmd.Context(), project)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "project id")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Send one day of scheduled content to the configured sink",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := c.parseDay(date)
			if err != nil {
				return err
			}
			n, err := c.app.Exporter.ExportDay(cmd.Context(), day)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]int{"exported": n})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to export (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}
