package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/gg"
	"github.com/spf13/cobra"

	"localboard/internal/net"
)

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid --log-level %q (want debug, info, warn or error)", s)
	}
	return level, nil
}

func setupLogging(levelFlag string) error {
	level, err := parseLogLevel(levelFlag)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	gg.SetLogger(logger)
	return nil
}

// rewriteLinkArgs lets the OS URL handler launch `localboard <link>`, which
// runs as `localboard join <link>`.
func rewriteLinkArgs(argv []string) []string {
	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if strings.HasPrefix(a, "-") {
			continue
		}
		if !strings.HasPrefix(a, net.URLScheme) {
			return argv
		}
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "join")
		return append(out, argv[i:]...)
	}
	return argv
}

func newRootCmd() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:           "localboard",
		Short:         "Shared whiteboard for the local network",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// no subcommand: host a board, as a double-clicked app would
			return runHost(cmd.Context(), net.DefaultConfig())
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(newHostCmd(), newJoinCmd(), newRenderCmd())
	return root
}

func main() {
	root := newRootCmd()
	root.SetArgs(rewriteLinkArgs(os.Args)[1:])
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
