package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/attendance-dashboard/internal/capture"
	"github.com/noah-isme/attendance-dashboard/internal/models"
	"github.com/noah-isme/attendance-dashboard/internal/service"
	"github.com/noah-isme/attendance-dashboard/internal/session"
)

func newTodayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Today's check-in and check-out",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.enter(session.RouteAttendance); err != nil {
				return err
			}
			view := a.ws.Attendance.Today(cmd.Context())
			if view.Error != "" {
				return errors.New(view.Error)
			}
			return a.printer(cmd.OutOrStdout()).value(view, func(w io.Writer) error {
				return writeToday(w, view)
			})
		},
	}
}

func writeToday(w io.Writer, view service.TodayView) error {
	pairs := []string{"check-in", view.CheckIn, "check-out", view.CheckOut}
	if view.Status != "" {
		pairs = append(pairs, "status", view.Status)
	}
	return writeFields(w, pairs...)
}

func newSubmitCmd(a *app, action models.AttendanceAction) *cobra.Command {
	var (
		photo    string
		lat, lon float64
	)
	cmd := &cobra.Command{
		Use:   string(action) + " --photo <file> --lat <deg> --lon <deg>",
		Short: action.Label() + " with a photo and your position",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.enter(session.RouteAttendance); err != nil {
				return err
			}
			var camera capture.Camera = capture.ImageCamera(nil)
			if photo != "" {
				camera = capture.FileCamera(photo)
			}
			locator := capture.NoLocator
			if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon") {
				if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
					return errors.New("--lat must be within ±90 and --lon within ±180")
				}
				locator = capture.FixedLocator(models.Location{Latitude: lat, Longitude: lon})
			}

			flow := a.ws.Attendance.NewFlow(camera, locator)
			if err := flow.CaptureAndLocate(cmd.Context()); err != nil {
				return err
			}
			res, err := a.ws.Attendance.Submit(cmd.Context(), flow, action)
			if err != nil {
				return err
			}
			view := a.ws.Attendance.Today(cmd.Context())
			return a.printer(cmd.OutOrStdout()).value(res, func(w io.Writer) error {
				if _, err := fmt.Fprintln(w, res.Message); err != nil {
					return err
				}
				return writeToday(w, view)
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&photo, "photo", "", "JPEG or PNG still to submit")
	flags.Float64Var(&lat, "lat", 0, "latitude")
	flags.Float64Var(&lon, "lon", 0, "longitude")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live clock with today's attendance, refreshed when the session changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.enter(session.RouteAttendance); err != nil {
				return err
			}
			ctx := cmd.Context()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			changes, unsubscribe := a.manager.Subscribe()
			defer unsubscribe()

			clock := service.NewLiveClock(a.cfg.Clock.Interval, time.Local)
			out := cmd.OutOrStdout()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				a.manager.Watch(ctx, a.cfg.Session.PollEvery)
				return nil
			})
			g.Go(func() error {
				return a.ws.Attendance.Resource().Run(ctx, changes)
			})
			g.Go(func() error {
				return clock.Run(ctx, func(now string) {
					view := a.ws.Attendance.Current()
					fmt.Fprintf(out, "%s  in: %s  out: %s\n", now, view.CheckIn, view.CheckOut)
				})
			})
			err := g.Wait()
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&duration, "for", 0, "stop after this long (default until interrupted)")
	return cmd
}
