package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var execCmd = &cobra.Command{
	Use:   "exec <statement> [arg...]",
	Short: "Execute a statement and print the number of affected rows",
	Long: `Exec runs one statement in its own transaction and prints the number of
rows it affected.

Arguments after the statement bind $1, $2, ... Named parameters given with
--param or --params-file bind @name placeholders instead; the two styles
cannot be combined.

Examples:
  # Positional parameters
  simplepg exec "DELETE FROM sessions WHERE expires_at < now() - $1::interval" "7 days"

  # Named parameters against the auth database
  simplepg exec --role auth "UPDATE users SET locked = true WHERE id = @id" --param id=42`,
	Args: RequireStatement,
	RunE: runExec,
}

var execFlags statementFlags

func init() {
	rootCmd.AddCommand(execCmd)
	execFlags.register(execCmd)
}

func resetExecFlags() {
	execFlags.reset()
}

func runExec(cmd *cobra.Command, args []string) error {
	statement, bound, err := execFlags.statement(args)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	return withApp(ctx, func(a *app) error {
		conn, err := a.connection(ctx, execFlags.role)
		if err != nil {
			return err
		}

		affected, err := conn.Execute(ctx, statement, bound...)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), affected)
		return nil
	})
}
