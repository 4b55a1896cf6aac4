package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/simplepg/internal/tui"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

var queryCmd = &cobra.Command{
	Use:   "query <statement> [arg...]",
	Short: "Execute a statement and print the rows it returns",
	Long: `Query runs one statement in its own transaction, reads every row and prints
them. NUMERIC values are returned as floating point numbers.

Output formats:
  table   aligned table with a row count (default)
  json    array of objects keyed by column name

With --interactive and a terminal attached, rows are shown in a scrollable
browser instead; press enter to view a single record.

Examples:
  simplepg query "SELECT id, email FROM users ORDER BY id LIMIT 20"
  simplepg query --format json "SELECT * FROM orders WHERE customer_id = @id" --param id=7
  simplepg query --role auth --interactive "SELECT * FROM grants"`,
	Args: RequireStatement,
	RunE: runQuery,
}

var (
	queryFlags       statementFlags
	queryFormat      string
	queryInteractive bool
)

// runBrowser is replaced in tests.
var runBrowser = tui.RunResultBrowser

func init() {
	rootCmd.AddCommand(queryCmd)
	queryFlags.register(queryCmd)

	queryCmd.Flags().StringVarP(&queryFormat, "format", "o", formatTable, "Output format: table|json")
	queryCmd.Flags().BoolVarP(&queryInteractive, "interactive", "i", false,
		"Browse rows interactively (falls back to --format when no terminal is attached)")

	_ = queryCmd.RegisterFlagCompletionFunc("format", completeFormats)
}

func resetQueryFlags() {
	queryFlags.reset()
	queryFormat = formatTable
	queryInteractive = false
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryFormat != formatTable && queryFormat != formatJSON {
		return fmt.Errorf("invalid argument %q for --format: expected %s or %s", queryFormat, formatTable, formatJSON)
	}

	statement, bound, err := queryFlags.statement(args)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	return withApp(ctx, func(a *app) error {
		conn, err := a.connection(ctx, queryFlags.role)
		if err != nil {
			return err
		}

		result, err := conn.ExecuteAndFetch(ctx, statement, bound...)
		if err != nil {
			return err
		}

		if queryInteractive {
			if tui.IsInteractive() {
				return runBrowser(queryFlags.role, result)
			}
			a.logger.Verbose("no terminal attached, printing %s output", queryFormat)
		}

		out := cmd.OutOrStdout()
		if queryFormat == formatJSON {
			return writeJSON(out, result)
		}
		_, err = fmt.Fprintln(out, renderTable(result))
		return err
	})
}
