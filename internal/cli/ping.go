package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/simplepg/internal/tui"
	"github.com/vvka-141/simplepg/pkg/simplepg"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the configured databases are reachable",
	Long: `Ping opens a connection for each role and performs a round trip.
Without --role both the data and auth databases are checked.

Examples:
  simplepg ping
  simplepg ping --role auth`,
	Args: cobra.NoArgs,
	RunE: runPing,
}

var pingRole string

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().StringVarP(&pingRole, "role", "r", "", "Only check this role: data|auth")
	_ = pingCmd.RegisterFlagCompletionFunc("role", completeRoles)
}

func resetPingFlags() {
	pingRole = ""
}

func runPing(cmd *cobra.Command, args []string) error {
	roles := simplepg.Roles
	if pingRole != "" {
		role, err := simplepg.ParseRole(pingRole)
		if err != nil {
			return err
		}
		roles = []simplepg.Role{role}
	}

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()
	return withApp(ctx, func(a *app) error {
		var errs []error
		for _, role := range roles {
			start := time.Now()
			err := pingOne(ctx, a, role)
			if err != nil {
				fmt.Fprintln(out, tui.ErrorStyle.Render(fmt.Sprintf("%s %s: %v", tui.SymbolCross, role, err)))
				errs = append(errs, fmt.Errorf("%s: %w", role, err))
				continue
			}
			elapsed := time.Since(start).Round(time.Millisecond)
			fmt.Fprintln(out, tui.SuccessStyle.Render(fmt.Sprintf("%s %s ok (%v)", tui.SymbolCheck, role, elapsed)))
		}
		return errors.Join(errs...)
	})
}

func pingOne(ctx context.Context, a *app, role simplepg.Role) error {
	conn, err := a.registry.Get(ctx, role)
	if err != nil {
		return err
	}
	return conn.Ping(ctx)
}
