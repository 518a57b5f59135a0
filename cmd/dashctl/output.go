package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sentineleye/dashboard/pkg/daterange"
)

// printJSON writes v to the command's stdout as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

// resolveWeek returns the week containing date (YYYY-MM-DD), or the current
// week when date is empty.
func resolveWeek(date string) (daterange.DateRange, error) {
	if date == "" {
		return daterange.CurrentWeekRange(time.Now()), nil
	}
	return daterange.WeekOf(date, daterange.DayLayout, time.Local)
}
