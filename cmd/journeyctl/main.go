package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/probuddy/api/internal/config"
	"github.com/probuddy/api/internal/db"
	"github.com/probuddy/api/internal/journey"
	"github.com/probuddy/api/internal/model"
	"github.com/probuddy/api/internal/repository"
	"github.com/probuddy/api/internal/service"
	"github.com/probuddy/api/internal/storage"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "journeyctl",
		Short:        "Journey database and ETA tools",
		SilenceUsage: true,
	}

	// migrate command
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(cmd.OutOrStdout(), config.Load(), db.RunMigrations)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(cmd.OutOrStdout(), config.Load(), db.MigrateDown)
			},
		},
	)
	rootCmd.AddCommand(migrateCmd)

	// eta
	var userID, file string
	etaCmd := &cobra.Command{
		Use:   "eta [journey-id]",
		Short: "Print the ETA of a stored journey or a journey snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				j, err := readSnapshot(file)
				if err != nil {
					return err
				}
				return printETA(cmd.OutOrStdout(), j, time.Now())
			}
			if len(args) != 1 {
				return fmt.Errorf("journey id or --file is required")
			}
			return storedETA(cmd.OutOrStdout(), config.Load(), userID, args[0])
		},
	}
	etaCmd.Flags().StringVar(&userID, "user", os.Getenv("DEV_USER_ID"), "Owner of the journey")
	etaCmd.Flags().StringVar(&file, "file", "", "Journey snapshot JSON (use - for stdin)")
	rootCmd.AddCommand(etaCmd)

	// archive show
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect archived journeys",
	}
	archiveCmd.AddCommand(&cobra.Command{
		Use:   "show <user-id> <journey-id>",
		Short: "Print an archived journey snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showArchive(cmd.Context(), cmd.OutOrStdout(), config.Load(), args[0], args[1])
		},
	})
	rootCmd.AddCommand(archiveCmd)

	// token
	var email, name string
	var expiry time.Duration
	tokenCmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a bearer token for local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}
			auth := service.NewAuthService(cfg.JWTSecret, expiry)
			token, err := auth.GenerateJWT(&model.User{ID: args[0], Email: email, Name: name})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&email, "email", "", "Email claim")
	tokenCmd.Flags().StringVar(&name, "name", "", "Name claim")
	tokenCmd.Flags().DurationVar(&expiry, "expiry", 24*time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)

	return rootCmd
}

func migrate(out io.Writer, cfg *config.Config, run func(*sql.DB, string) error) error {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return err
	}
	defer db.Close(database)

	err = run(database.DB, cfg.DBDriver)
	if err != nil {
		return err
	}

	version, err := db.Version(database.DB, cfg.DBDriver)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "database at version %d\n", version)
	return nil
}

func storedETA(out io.Writer, cfg *config.Config, userID, journeyID string) error {
	if userID == "" {
		return fmt.Errorf("--user is required or set DEV_USER_ID env")
	}

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return err
	}
	defer db.Close(database)

	j, err := repository.NewJourneyRepository(database).ByID(userID, journeyID)
	if err != nil {
		return err
	}
	return printETA(out, j, time.Now())
}

func readSnapshot(path string) (*model.GoalJourney, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	j := &model.GoalJourney{}
	err := json.NewDecoder(r).Decode(j)
	if err != nil {
		return nil, fmt.Errorf("failed to decode journey snapshot: %w", err)
	}
	err = j.Validate()
	if err != nil {
		return nil, err
	}
	return j, nil
}

func printETA(out io.Writer, j *model.GoalJourney, now time.Time) error {
	journey.New(j).Recalculate()
	eta := journey.Calculate(j, now)

	fmt.Fprintf(out, "Goal:       %s\n", j.GoalContent)
	fmt.Fprintf(out, "Progress:   %.0f%% (%d of %d steps)\n", j.OverallProgress*100, eta.StepsCompleted, len(j.MainPath()))
	if step, err := journey.CurrentStep(j); err == nil {
		fmt.Fprintf(out, "Current:    %s\n", step.DisplayTitle())
	}
	fmt.Fprintf(out, "ETA:        %s\n", eta.DisplayText)
	fmt.Fprintf(out, "Completion: %s\n", eta.EstimatedCompletionDate.Format("2006-01-02"))
	fmt.Fprintf(out, "Velocity:   %.2f\n", eta.VelocityScore)
	fmt.Fprintln(out, journey.MotivationalMessage(j, eta.VelocityScore))
	return nil
}

func showArchive(ctx context.Context, out io.Writer, cfg *config.Config, userID, journeyID string) error {
	archive, err := storage.New(ctx, cfg)
	if err != nil {
		return err
	}
	if archive == nil {
		return fmt.Errorf("S3_BUCKET is not set")
	}

	body, err := archive.Load(ctx, storage.JourneyKey(userID, journeyID))
	if err != nil {
		return err
	}

	j := &model.GoalJourney{}
	err = json.Unmarshal(body, j)
	if err != nil {
		return fmt.Errorf("failed to decode archived journey: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(j)
}
