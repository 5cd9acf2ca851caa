package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sirdesai22/crosswire-replica/internal/backend"
	"github.com/sirdesai22/crosswire-replica/internal/config"
	"github.com/sirdesai22/crosswire-replica/internal/db"
	"github.com/sirdesai22/crosswire-replica/internal/services"
)

var (
	rootCmd = &cobra.Command{
		Use:           "replica",
		Short:         "Client-side state replica for a CTF collaboration session",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Follow the event feed and serve the admin API",
		RunE:  runReplica,
	}
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create the feed_events table",
		RunE:  runMigrate,
	}
	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Insert a sample session into an empty event feed",
		RunE:  runSeed,
	}
	publishCmd = &cobra.Command{
		Use:   "publish [type] [json]",
		Short: "Append one event to the feed",
		Args:  cobra.ExactArgs(2),
		RunE:  runPublish,
	}
	submitCmd = &cobra.Command{
		Use:   "submit [challenge-id] [flag]",
		Short: "Submit a flag to the backend and print the verdict",
		Args:  cobra.ExactArgs(2),
		RunE:  runSubmit,
	}
	publishChannel string
)

func init() {
	publishCmd.Flags().StringVar(&publishChannel, "channel", "", "channel id the event belongs to")
	rootCmd.AddCommand(runCmd, migrateCmd, seedCmd, publishCmd, submitCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return err
	}
	return db.Migrate(pg)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return err
	}
	if err := db.Migrate(pg); err != nil {
		return err
	}
	return db.Seed(pg)
}

func runPublish(cmd *cobra.Command, args []string) error {
	if !json.Valid([]byte(args[1])) {
		return fmt.Errorf("payload is not valid JSON")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return err
	}
	ev, err := services.AddFeedEvent(pg, services.Draft{
		Type:      args[0],
		ChannelID: publishChannel,
		Payload:   json.RawMessage(args[1]),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "📤 published seq=%d type=%s\n", ev.ID, ev.Type)
	return nil
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL is not set")
	}
	client := backend.New(cfg.BackendURL, cfg.BackendTimeout)
	s, err := client.SubmitFlag(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	verdict := "❌ incorrect"
	if s.Correct {
		verdict = "✅ correct"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (submission %s)\n", verdict, s.ID)
	return nil
}
