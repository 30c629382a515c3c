// Package cli is the programmatic front door: a cobra command that drives
// one pipeline run from a file path and flags. There is no file picker,
// progress widget, or download dispatch here — only flag parsing, slog
// logging, and an exit code.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/takecut/silencecutter/internal/errs"
)

var (
	verbose bool
	quiet   bool
)

// Main builds and executes the root command: exit 0 on success, 2 on
// NoSpeechDetected, 3 on an engine failure (including SourceUnreadable),
// 4 on an oracle failure (MissingCredential/OracleProtocol/OracleParse/
// OracleShape), 1 otherwise.
func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "takecut <input>",
		Short:        "Detect silence, transcribe takes, and cut a spoken-word recording",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	registerFlags(root)

	err := root.Execute()
	if err == nil {
		os.Exit(0)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(exitCodeFor(err))
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func exitCodeFor(err error) int {
	var noSpeech *errs.NoSpeechDetectedError
	if errors.As(err, &noSpeech) {
		return 2
	}
	var sourceUnreadable *errs.SourceUnreadableError
	var engineErr *errs.EngineError
	if errors.As(err, &sourceUnreadable) || errors.As(err, &engineErr) {
		return 3
	}
	var missingCred *errs.MissingCredentialError
	var protoErr *errs.OracleProtocolError
	var parseErr *errs.OracleParseError
	var shapeErr *errs.OracleShapeError
	if errors.As(err, &missingCred) || errors.As(err, &protoErr) || errors.As(err, &parseErr) || errors.As(err, &shapeErr) {
		return 4
	}
	return 1
}
