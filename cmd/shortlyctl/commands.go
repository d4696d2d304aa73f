package main

import (
	"Shortly-Backend/internal/app"
	"Shortly-Backend/internal/auth"
	"Shortly-Backend/internal/config"
	"Shortly-Backend/pkg/logger"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// env общее состояние команд: конфигурация и логгер
type env struct {
	configPath string
	cfg        *config.Config
	log        *zap.Logger
}

// newRootCmd собирает дерево команд. cfg != nil подставляет готовую конфигурацию.
func newRootCmd(cfg *config.Config) *cobra.Command {
	e := &env{cfg: cfg}

	root := &cobra.Command{
		Use:          "shortlyctl",
		Short:        "Administer the Shortly link registry",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load()
		},
	}
	root.PersistentFlags().StringVar(&e.configPath, "config", "", "path to YAML config (defaults to $CONFIG_PATH or config/local.yml)")

	root.AddCommand(
		newMigrateCmd(e),
		newCreateCmd(e),
		newListCmd(e),
		newTokenCmd(e),
	)
	return root
}

func (e *env) load() error {
	if e.cfg == nil {
		_ = godotenv.Load()

		path := e.configPath
		if path == "" {
			path = os.Getenv("CONFIG_PATH")
		}
		if path == "" {
			path = "config/local.yml"
		}

		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		e.cfg = cfg
	}
	if e.log == nil {
		e.log = logger.New(e.cfg.Env)
	}
	return nil
}

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the links and clicks tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, err := app.OpenStorage(&e.cfg.Database, true, e.log)
			if err != nil {
				return err
			}
			defer storage.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newCreateCmd(e *env) *cobra.Command {
	var rawURL string

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Shorten a URL",
		Example: `  shortlyctl create --url="https://go.dev/doc/"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, err := app.OpenStorage(&e.cfg.Database, e.cfg.Database.AutoMigrate, e.log)
			if err != nil {
				return err
			}
			defer storage.Close()

			registry, err := app.NewRegistry(e.cfg, storage, e.log)
			if err != nil {
				return err
			}

			link, created, err := registry.CreateLink(cmd.Context(), strings.TrimSpace(rawURL), e.cfg.URLShortener.BaseURL)
			if err != nil {
				return err
			}

			state := "existing"
			if created {
				state = "created"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", state, link.Code)
			fmt.Fprintf(out, "short url: %s/%s\n", strings.TrimRight(e.cfg.URLShortener.BaseURL, "/"), link.Code)
			fmt.Fprintf(out, "title: %s\n", link.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&rawURL, "url", "", "long URL to shorten")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List links, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, err := app.OpenStorage(&e.cfg.Database, e.cfg.Database.AutoMigrate, e.log)
			if err != nil {
				return err
			}
			defer storage.Close()

			links, err := storage.ListLinks(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tVISITS\tURL\tTITLE")
			for _, l := range links {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", l.Code, l.Visits, l.URL, l.Title)
			}
			return w.Flush()
		},
	}
}

func newTokenCmd(e *env) *cobra.Command {
	var (
		userID int64
		email  string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := auth.NewJWTService(&e.cfg.Auth).GenerateAccessToken(userID, email)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user-id", 1, "user id to embed in the token")
	cmd.Flags().StringVar(&email, "email", "", "user email to embed in the token")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
