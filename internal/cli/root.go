package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const logo = `     _                 _
 ___(_)_ __ ___  _ __ | | ___ _ __   __ _
/ __| | '_ ` + "`" + ` _ \| '_ \| |/ _ \ '_ \ / _` + "`" + ` |
\__ \ | | | | | | |_) | |  __/ |_) | (_| |
|___/_|_| |_| |_| .__/|_|\___| .__/ \__, |
                |_|          |_|    |___/`

var rootCmd = &cobra.Command{
	Use:   "simplepg",
	Short: "Resilient PostgreSQL statements from the command line",
	Long: logo + `

simplepg runs statements against the "data" or "auth" database configured in
simplepg.yaml. Every statement runs in its own transaction. When the session
drops mid-statement, simplepg waits reconnect_delay, opens a new session and
runs the statement once more; errors reported by the server are never retried.

Configuration:
  simplepg.yaml in the working directory (or --config), then .env (or --env-file),
  then SIMPLEPG_<ROLE>_URL|HOST|PORT|DATABASE|USER|PASSWORD|SSLMODE|DRIVER|AUTH_METHOD.
  Passwords are never accepted as flags.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or parameters
  11 - Connection failed, or the session broke twice in one statement
  13 - Statement rejected by the server`,
	SilenceUsage: true,
}

// rootFlags holds the persistent flags shared by every command.
var rootFlags struct {
	configPath string
	envFile    string
	verbose    bool
	logFormat  string
}

// Execute runs the root command. Canceling ctx aborts the running statement.
func Execute(ctx context.Context) error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout, os.Stderr)
		return nil
	}
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootFlags.configPath, "config", "",
		"Path to simplepg.yaml or the directory containing it (default: ./simplepg.yaml if present)")
	flags.StringVar(&rootFlags.envFile, "env-file", "",
		"Load environment variables from this file (default: ./.env if present)")
	flags.BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Enable verbose output for all commands")
	flags.StringVar(&rootFlags.logFormat, "log-format", logFormatText, "Log output format: text|json")

	_ = rootCmd.RegisterFlagCompletionFunc("log-format", completeLogFormats)
}

// resetRootFlags restores defaults; tests share the package-level command tree.
func resetRootFlags() {
	rootFlags.configPath = ""
	rootFlags.envFile = ""
	rootFlags.verbose = false
	rootFlags.logFormat = logFormatText
}

func validateLogFormat(format string) error {
	switch format {
	case logFormatText, logFormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid argument %q for --log-format: expected %s or %s", format, logFormatText, logFormatJSON)
	}
}

// commandContext returns the context cobra was executed with.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
