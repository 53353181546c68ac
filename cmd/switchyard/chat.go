package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/switchyard-ai/switchyard"
	"github.com/switchyard-ai/switchyard/internal/cli"
	"github.com/switchyard-ai/switchyard/internal/presentation/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive support conversation",
	Long: `Runs a terminal conversation against the engine. Each line is one turn;
the session persists, so a clarification question can be answered on the
next line. On a TTY, replies render as markdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		headless, _ := cmd.Flags().GetBool("headless")
		sessionID, _ := cmd.Flags().GetString("session")
		seedPairs, _ := cmd.Flags().GetStringSlice("context")

		seed, err := parseContext(seedPairs)
		if err != nil {
			return err
		}

		rt, err := cli.Build(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to build engine: %w", err)
		}
		defer rt.Close()

		runner := switchyard.NewRunner()
		runner.Input = os.Stdin
		runner.Output = os.Stdout
		runner.Headless = headless
		runner.SessionID = sessionID
		runner.Context = seed

		if !headless && term.IsTerminal(int(os.Stdout.Fd())) {
			tui.PrintBanner()
			runner.Renderer = tui.NewRenderer()
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		return runner.Run(ctx, rt.Engine)
	},
}

// parseContext turns --context key=value pairs into a seed map.
func parseContext(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	seed := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --context entry %q (want key=value)", pair)
		}
		seed[key] = value
	}
	return seed, nil
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().Bool("headless", false, "No prompts or banner, plain line IO")
	chatCmd.Flags().String("session", "", "Resume an existing session by ID")
	chatCmd.Flags().StringSlice("context", nil, "Seed facts as key=value (e.g. policy_number=POL-000001)")
}
