package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/simplepg/internal/params"
)

// RequireStatement validates that a statement argument is provided.
// Further arguments are positional parameters.
func RequireStatement(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`requires at least 1 arg(s), only received 0: missing <statement>

Usage: %s

Example:
  %s "SELECT * FROM users WHERE id = $1" 7`, cmd.UseLine(), cmd.CommandPath())
	}
	return nil
}

// statementFlags are shared by exec and query.
type statementFlags struct {
	role       string
	params     []string
	paramsFile string
}

func (f *statementFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.role, "role", "r", "data", "Connection role: data|auth")
	cmd.Flags().StringArrayVar(&f.params, "param", nil,
		"Named parameter as key=value, bound to @key (repeatable; \\N binds NULL)")
	cmd.Flags().StringVar(&f.paramsFile, "params-file", "", "Load named parameters from a .env-style file")

	_ = cmd.RegisterFlagCompletionFunc("role", completeRoles)
}

func (f *statementFlags) reset() {
	f.role = "data"
	f.params = nil
	f.paramsFile = ""
}

// statement splits args into the statement text and its bound arguments.
func (f *statementFlags) statement(args []string) (string, []any, error) {
	named, err := params.Collect(f.paramsFile, f.params)
	if err != nil {
		return "", nil, err
	}
	bound, err := params.StatementArgs(args[1:], named)
	if err != nil {
		return "", nil, err
	}
	return args[0], bound, nil
}
