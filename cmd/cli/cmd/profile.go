package cmd

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"powersimdata/internal/app"
	"powersimdata/internal/data"
	"powersimdata/internal/model"
)

func profileCmd() *cobra.Command {
	var start, end, columns string
	command := &cobra.Command{
		Use:   "profile <scenario> <field>",
		Short: "Print an input profile (demand, hydro, solar, wind) or a result (PG, PF, LMP, ...) as CSV.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseWindow(start, end)
			if err != nil {
				return err
			}
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := loadProfile(cmd.Context(), a, args[0], args[1])
			if err != nil {
				return err
			}
			ids := p.Columns()
			if columns != "" {
				if ids, err = parseIDs(columns); err != nil {
					return err
				}
			}
			return model.WriteProfileCSV(cmd.OutOrStdout(), p.Select(ids, from, to))
		},
	}
	command.Flags().StringVar(&start, "start", "", "First timestamp (inclusive)")
	command.Flags().StringVar(&end, "end", "", "Last timestamp (inclusive)")
	command.Flags().StringVar(&columns, "columns", "", "Comma separated plant or zone ids")
	return command
}

func loadProfile(ctx context.Context, a *app.App, key, field string) (*model.Profile, error) {
	list, err := a.Scenarios.List(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := list.Find(key)
	if err != nil {
		return nil, err
	}
	for _, f := range data.OutputFields {
		if f == field {
			return a.Output.GetProfile(ctx, rec.ID, field)
		}
	}
	return a.Input.GetProfile(ctx, rec.ID, field)
}

func parseWindow(start, end string) (from, to time.Time, err error) {
	if start != "" {
		if from, err = model.ParseTime(start); err != nil {
			return from, to, err
		}
	}
	if end != "" {
		if to, err = model.ParseTime(end); err != nil {
			return from, to, err
		}
	}
	return from, to, nil
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, errors.Errorf("invalid column id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
