package cli

import (
	"errors"
	"fmt"

	"taskify/backend/internal/client"
	"taskify/backend/internal/dashboard"
	"taskify/backend/internal/tui"

	"github.com/spf13/cobra"
)

func newRegisterCmd(g *globals) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := g.newClient("").Register(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Registered %s\n", user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (min 8 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCmd(g *globals) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := g.credentialsFile()
			if err != nil {
				return err
			}

			session, err := g.newClient("").Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := persist(path, session); err != nil {
				return fmt.Errorf("failed to store credentials: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Signed in as %s\n", session.User().Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke and forget stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := g.credentialsFile()
			if err != nil {
				return err
			}

			creds, err := client.LoadCredentials(path)
			if errors.Is(err, client.ErrNoCredentials) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			if err != nil {
				return err
			}

			if err := g.newClient(creds.APIURL).Logout(cmd.Context(), creds); err != nil {
				return err
			}
			if err := client.DeleteCredentials(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "👋 You've been signed out successfully")
			return nil
		},
	}
}

func newTUICmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, path, err := g.resume(cmd.Context())
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd)
			defer stop()

			queue := dashboard.NewNotificationQueue(0)
			signedOut, err := tui.Run(ctx, dashboard.New(session, session, queue), queue)
			if signedOut {
				return client.DeleteCredentials(path)
			}
			if saveErr := persist(path, session); saveErr != nil && err == nil {
				err = saveErr
			}
			return err
		},
	}
}
