package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-dashboard/internal/capture"
	"github.com/noah-isme/attendance-dashboard/internal/client"
	"github.com/noah-isme/attendance-dashboard/internal/models"
	"github.com/noah-isme/attendance-dashboard/internal/service"
	"github.com/noah-isme/attendance-dashboard/internal/session"
	"github.com/noah-isme/attendance-dashboard/pkg/config"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
	"github.com/noah-isme/attendance-dashboard/pkg/logger"
)

type globalOptions struct {
	backend     string
	sessionPath string
	logLevel    string
	output      string
}

// app is the state shared by every command of one invocation.
type app struct {
	opts    globalOptions
	cfg     *config.Config
	logger  *zap.Logger
	storage *session.FileStorage
	manager *session.Manager
	ws      *service.Workspace
	policy  session.Policy
}

func newRootCmd() *cobra.Command {
	a := &app{policy: session.DefaultPolicy()}

	cmd := &cobra.Command{
		Use:           "attendctl",
		Short:         "Attendance dashboard from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.opts.backend, "backend", "", "attendance backend base URL (default from BACKEND_BASE_URL)")
	flags.StringVar(&a.opts.sessionPath, "session", "", "session file (default from SESSION_FILE_PATH)")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "log level written to stderr")
	flags.StringVarP(&a.opts.output, "output", "o", outputTable, "output format: table or json")

	cmd.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newRegisterCmd(a),
		newUsersCmd(a),
		newSetRoleCmd(a),
		newHistoryCmd(a),
		newRekapCmd(a),
		newTodayCmd(a),
		newSubmitCmd(a, models.ActionCheckIn),
		newSubmitCmd(a, models.ActionCheckOut),
		newWatchCmd(a),
	)
	return cmd
}

func execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

func (a *app) init(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.opts.backend != "" {
		cfg.Backend.BaseURL = strings.TrimRight(a.opts.backend, "/")
	}
	if a.opts.sessionPath != "" {
		cfg.Session.FilePath = a.opts.sessionPath
	}
	if a.opts.output != outputTable && a.opts.output != outputJSON {
		return fmt.Errorf("--output must be %s or %s", outputTable, outputJSON)
	}
	a.cfg = cfg
	a.logger = logger.CLI(a.opts.logLevel)

	a.storage = session.NewFileStorage(cfg.Session.FilePath)
	a.manager = session.NewManager(a.storage, cfg.Session.TokenKey, a.logger)
	if _, err := a.manager.Evaluate(ctx); err != nil {
		return err
	}

	backend := client.New(cfg.Backend.BaseURL, &http.Client{Timeout: cfg.Backend.Timeout}, nil, client.WithLogger(a.logger))
	a.ws = service.NewWorkspace(service.Dependencies{
		Client:    backend,
		Validator: service.NewValidator(),
		Table:     service.TableOptions{PageSizes: cfg.Table.PageSizes, DefaultPageSize: cfg.Table.DefaultPageSize},
		Capture: capture.Options{
			JPEGQuality:     cfg.Capture.JPEGQuality,
			LocationTimeout: cfg.Capture.LocationTimeout,
			MaxDimension:    capture.DefaultMaxDimension,
		},
		Location: time.Local,
		Logger:   a.logger,
	}, a.manager, a.storage)
	return nil
}

// enter applies the route policy the dashboard uses for the same page.
func (a *app) enter(route string) error {
	decision := a.policy.Decide(a.manager.Current(), route)
	switch decision.Outcome {
	case session.OutcomeAllow:
		return nil
	case session.OutcomeWait:
		return errors.New("session is still loading, try again")
	}
	if decision.Redirect == session.RouteSignIn {
		return appErrors.Clone(appErrors.ErrUnauthorized, "Please sign in first: attendctl login --token <token>")
	}
	return appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("Your role cannot open %s.", route))
}

func (a *app) printer(w io.Writer) printer {
	return printer{w: w, json: a.opts.output == outputJSON}
}

// describe renders err the way the dashboard's alerts do.
func describe(err error) string {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return "Error: " + appErr.Message
	}
	return "Error: " + err.Error()
}
