package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/attendance-dashboard/internal/models"
	"github.com/noah-isme/attendance-dashboard/internal/session"
	"github.com/noah-isme/attendance-dashboard/internal/table"
	"github.com/noah-isme/attendance-dashboard/pkg/export"
)

// tableFlags mirror the dashboard's table query parameters. The table state
// is remembered in the session file between invocations.
type tableFlags struct {
	filters []string
	sort    string
	order   string
	page    int
	perPage int
	reset   bool
}

func (f *tableFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringArrayVar(&f.filters, "filter", nil, "column=value, repeatable; replaces the filter set")
	flags.StringVar(&f.sort, "sort", "", "column to sort by, empty to clear")
	flags.StringVar(&f.order, "order", string(table.Ascending), "asc or desc")
	flags.IntVar(&f.page, "page", 0, "page number")
	flags.IntVar(&f.perPage, "per-page", 0, "rows per page")
	flags.BoolVar(&f.reset, "reset", false, "clear filters and sort")
}

func (f *tableFlags) change(cmd *cobra.Command) (table.Change, error) {
	var change table.Change
	if f.reset {
		change.Filters = &table.Filters{}
		change.Sort = &table.Sort{}
	}
	if cmd.Flags().Changed("filter") {
		filters := table.Filters{}
		for _, raw := range f.filters {
			name, value, ok := strings.Cut(raw, "=")
			if !ok || strings.TrimSpace(name) == "" {
				return table.Change{}, fmt.Errorf("--filter %q must be column=value", raw)
			}
			filters[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
		change.Filters = &filters
	}
	if cmd.Flags().Changed("sort") {
		sort := table.Sort{}
		if key := strings.TrimSpace(f.sort); key != "" {
			sort = table.Sort{Key: key, Direction: table.ParseDirection(f.order)}
		}
		change.Sort = &sort
	}
	if f.page < 0 || f.perPage < 0 {
		return table.Change{}, errors.New("--page and --per-page must be positive")
	}
	if f.page > table.MaxPage || f.perPage > table.MaxPage {
		return table.Change{}, errors.New("--page and --per-page are too large")
	}
	change.Page = f.page
	change.PerPage = f.perPage
	return change, nil
}

func newUsersCmd(a *app) *cobra.Command {
	var tf tableFlags
	cmd := &cobra.Command{
		Use:   "users",
		Short: "User access table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.enter(session.RouteUserAccess); err != nil {
				return err
			}
			change, err := tf.change(cmd)
			if err != nil {
				return err
			}
			page, err := a.ws.Users.Page(cmd.Context(), change)
			if err != nil {
				return err
			}
			return a.printer(cmd.OutOrStdout()).value(page, func(w io.Writer) error {
				return writeTable(w, page.Columns, page.Rows, page.Pagination)
			})
		},
	}
	tf.bind(cmd)
	return cmd
}

func newSetRoleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <user-id> <USER|ADMIN>",
		Short: "Grant a role to a user who has none",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.enter(session.RouteUserAccess); err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			role := models.Role(strings.ToUpper(strings.TrimSpace(args[1])))
			user, _, err := a.ws.Users.SetRole(cmd.Context(), id, role)
			if err != nil {
				return err
			}
			return a.printer(cmd.OutOrStdout()).value(user, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s is now %s\n", user.Username, user.RoleName())
				return err
			})
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var (
		tf    tableFlags
		month string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Your attendance for one month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.enter(session.RouteHistory); err != nil {
				return err
			}
			change, err := tf.change(cmd)
			if err != nil {
				return err
			}
			page, err := a.ws.History.Page(cmd.Context(), month, change)
			if err != nil {
				return err
			}
			return a.printer(cmd.OutOrStdout()).value(page, func(w io.Writer) error {
				if _, err := fmt.Fprintf(w, "Month %s\n", page.Month); err != nil {
					return err
				}
				return writeTable(w, page.Columns, page.Rows, page.Pagination)
			})
		},
	}
	tf.bind(cmd)
	cmd.Flags().StringVar(&month, "month", "", "YYYY-MM, defaults to the last month shown or the current one")
	return cmd
}

func newRekapCmd(a *app) *cobra.Command {
	var (
		tf      tableFlags
		format  string
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "rekap",
		Short: "Aggregate attendance report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.enter(session.RouteRekap); err != nil {
				return err
			}
			change, err := tf.change(cmd)
			if err != nil {
				return err
			}
			if format == "" {
				page, err := a.ws.Rekap.Page(cmd.Context(), change)
				if err != nil {
					return err
				}
				return a.printer(cmd.OutOrStdout()).value(page, func(w io.Writer) error {
					return writeTable(w, page.Columns, page.Rows, page.Pagination)
				})
			}

			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			result, err := a.ws.Rekap.Export(cmd.Context(), f, change)
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = result.Filename
			}
			if outPath == "-" {
				_, err := cmd.OutOrStdout().Write(result.Body)
				return err
			}
			if err := os.WriteFile(outPath, result.Body, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", result.Rows, outPath)
			return err
		},
	}
	tf.bind(cmd)
	cmd.Flags().StringVar(&format, "export", "", "write every matching row as csv or pdf instead of printing a page")
	cmd.Flags().StringVar(&outPath, "out", "", "export file, - for stdout (default rekap-YYYYMMDD.<ext>)")
	return cmd
}
