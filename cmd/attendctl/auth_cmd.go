package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/attendance-dashboard/internal/models"
	"github.com/noah-isme/attendance-dashboard/internal/session"
)

func newLoginCmd(a *app) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login --token <token|->",
		Short: "Keep a token issued by the backend as this session's credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "-" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read token: %w", err)
				}
				token = line
			}
			identity, err := a.ws.Auth.SignIn(cmd.Context(), token)
			if err != nil {
				return err
			}
			return a.printer(cmd.OutOrStdout()).value(identity, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Signed in as %s (%s)\n", identity.Username, identity.Role)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "bearer token, or - to read it from stdin")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ws.Auth.SignOut(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return err
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the session state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			state := a.manager.Current()
			return a.printer(cmd.OutOrStdout()).value(state, func(w io.Writer) error {
				if state.Status != session.StatusAuthenticated {
					_, err := fmt.Fprintln(w, "Not signed in")
					return err
				}
				return writeFields(w,
					"id", state.Identity.ID,
					"username", state.Identity.Username,
					"email", state.Identity.Email,
					"role", string(state.Identity.Role),
				)
			})
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var (
		req         models.RegisterRequest
		acceptTerms bool
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !acceptTerms {
				return errors.New("You must agree to the Terms and Conditions (--accept-terms).")
			}
			if err := a.ws.Auth.Register(cmd.Context(), req); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Registered %s. Ask an administrator for a role, then log in.\n", strings.TrimSpace(req.Username))
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&req.Username, "username", "", "username")
	flags.StringVar(&req.Name, "name", "", "full name")
	flags.StringVar(&req.Email, "email", "", "email address")
	flags.StringVar(&req.Password, "password", "", "password, at least 6 characters")
	flags.StringVar(&req.RetypePassword, "retype-password", "", "password again")
	flags.BoolVar(&acceptTerms, "accept-terms", false, "agree to the Terms and Conditions")
	return cmd
}
