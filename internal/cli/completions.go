package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/simplepg/pkg/simplepg"
)

var (
	outputFormats = []string{formatTable, formatJSON}
	logFormats    = []string{logFormatText, logFormatJSON}
)

func roleNames() []string {
	names := make([]string, len(simplepg.Roles))
	for i, r := range simplepg.Roles {
		names[i] = string(r)
	}
	return names
}

func matchPrefix(candidates []string, toComplete string) []string {
	var matches []string
	for _, c := range candidates {
		if strings.HasPrefix(c, toComplete) {
			matches = append(matches, c)
		}
	}
	return matches
}

// completeRoles provides shell completion for --role.
func completeRoles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return matchPrefix(roleNames(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeFormats provides shell completion for query --format.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return matchPrefix(outputFormats, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeLogFormats provides shell completion for --log-format.
func completeLogFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return matchPrefix(logFormats, toComplete), cobra.ShellCompDirectiveNoFileComp
}
