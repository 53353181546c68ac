package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/switchyard-ai/switchyard/internal/cli"
	"github.com/switchyard-ai/switchyard/pkg/ports"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persistent sessions",
	Long:  `List, inspect, refresh, and remove conversation sessions from the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List live sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer()

		limit, _ := cmd.Flags().GetInt("limit")
		summaries, err := store.List(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		if len(summaries) == 0 {
			fmt.Println("No live sessions found.")
			return nil
		}

		w := tabWriter()
		fmt.Fprintln(w, "ID\tMESSAGES\tITERATIONS\tESCALATED\tCOMPLETED\tUPDATED\tEXPIRES")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%d\t%d\t%t\t%t\t%s\t%s\n",
				s.ID, s.MessageCount, s.TotalIterations, s.Escalated, s.Completed,
				s.UpdatedAt.Format("2006-01-02 15:04:05"),
				s.ExpiresAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the full state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer()

		sess, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load session %q: %w", args[0], err)
		}

		data, err := json.MarshalIndent(sess, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}
		fmt.Println(string(data))
		return nil
	},
}

var sessionRefreshCmd = &cobra.Command{
	Use:   "refresh <session-id>",
	Short: "Renew a session's TTL without touching its state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer()

		if err := store.Refresh(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to refresh session %q: %w", args[0], err)
		}
		fmt.Printf("Refreshed session %q\n", args[0])
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer()

		var failed bool
		for _, id := range args {
			if err := store.Delete(cmd.Context(), id); err != nil {
				fmt.Fprintf(os.Stderr, "Error removing %q: %v\n", id, err)
				failed = true
				continue
			}
			fmt.Printf("Removed session %q\n", id)
		}
		if failed {
			return fmt.Errorf("some sessions could not be removed")
		}
		return nil
	},
}

// openStore builds the persistence stack alone; session commands never need
// a reasoner or the full engine.
func openStore(cmd *cobra.Command) (ports.SessionStore, func() error, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	return cli.BuildStore(cfg, newLogger(cfg))
}

func tabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRefreshCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionLsCmd.Flags().Int("limit", 50, "Maximum number of sessions to list")
}
