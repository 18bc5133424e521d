// Package cli is the taskify command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"taskify/backend/internal/client"
	"taskify/backend/internal/config"

	"github.com/spf13/cobra"
)

type globals struct {
	configPath      string
	apiURL          string
	credentialsPath string

	cfg *config.Config
}

func (g *globals) load() error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	g.cfg = cfg
	return nil
}

// baseURL picks the API root: --api-url, then the stored credentials, then config.
func (g *globals) baseURL(stored string) string {
	switch {
	case g.apiURL != "":
		return g.apiURL
	case stored != "":
		return stored
	default:
		return g.cfg.Client.APIURL
	}
}

func (g *globals) newClient(stored string) *client.Client {
	return client.New(g.baseURL(stored), g.cfg.Client.Timeout)
}

func (g *globals) credentialsFile() (string, error) {
	if g.credentialsPath != "" {
		return g.credentialsPath, nil
	}
	if g.cfg.Client.CredentialsFile != "" {
		return g.cfg.Client.CredentialsFile, nil
	}
	return client.DefaultCredentialsPath()
}

// resume loads the stored credentials and reconnects.
func (g *globals) resume(ctx context.Context) (*client.Session, string, error) {
	path, err := g.credentialsFile()
	if err != nil {
		return nil, "", err
	}

	creds, err := client.LoadCredentials(path)
	if errors.Is(err, client.ErrNoCredentials) {
		return nil, "", errors.New("not logged in, run `taskify login` first")
	}
	if err != nil {
		return nil, "", err
	}

	session, err := g.newClient(creds.APIURL).Resume(ctx, creds)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resume session: %w", err)
	}
	return session, path, nil
}

// persist stores the session's current tokens, which rotate on refresh.
func persist(path string, session *client.Session) error {
	return client.SaveCredentials(path, session.Credentials())
}

func NewRootCommand(version string) *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "taskify",
		Short: "taskify - personal task tracker",
		Long: `taskify tracks personal tasks.

It runs the REST API (serve), the browser dashboard (web), the terminal
dashboard (tui) and a command-line client for scripting.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load()
		},
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&g.apiURL, "api-url", "", "API base URL (default from config)")
	root.PersistentFlags().StringVar(&g.credentialsPath, "credentials", "", "credentials file (default in the user config dir)")

	root.AddCommand(newServeCmd(g))
	root.AddCommand(newMigrateCmd(g))
	root.AddCommand(newEventsCmd(g))
	root.AddCommand(newWebCmd(g))
	root.AddCommand(newTUICmd(g))
	root.AddCommand(newRegisterCmd(g))
	root.AddCommand(newLoginCmd(g))
	root.AddCommand(newLogoutCmd(g))
	root.AddCommand(newTasksCmd(g))

	return root
}

// Execute runs the root command
func Execute(version string) error {
	if err := NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
