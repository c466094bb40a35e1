package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/username/remote-work-bot/internal/calendar"
	"github.com/username/remote-work-bot/internal/config"
	"github.com/username/remote-work-bot/pkg/dateutil"
)

func daysCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "days",
		Short: "Show the remote weekdays of a month without contacting absence.io",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			weekdays, err := cfg.Weekdays()
			if err != nil {
				return err
			}
			local, err := cfg.LocalLocation()
			if err != nil {
				return err
			}

			anchor, err := anchorFor(month, time.Now().In(local))
			if err != nil {
				return err
			}

			printRemoteDays(cmd.OutOrStdout(), anchor, weekdays)
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month to show (YYYY-MM), default current month")

	return cmd
}

func printRemoteDays(w io.Writer, anchor time.Time, weekdays calendar.Weekdays) {
	days := calendar.RemoteDaysForMonth(anchor, weekdays)
	window := calendar.MonthWindowFor(anchor)

	fmt.Fprintf(w, "📅 %s, remote weekdays: %s\n", dateutil.FormatMonth(anchor), weekdays)
	fmt.Fprintf(w, "   Absence query window: %s\n", window)
	for _, d := range days {
		fmt.Fprintf(w, "   %s  %s\n", dateutil.FormatDay(d), d.Weekday())
	}
	fmt.Fprintf(w, "   %d day(s)\n", len(days))
}
