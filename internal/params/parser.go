package params

import (
	"fmt"
	"strings"

	"github.com/vvka-141/simplepg/pkg/simplepg"
)

// NullValue is the argument text that binds SQL NULL, as in COPY text format.
const NullValue = `\N`

// ParseKeyValuePairs converts a slice of "key=value" strings into a map.
//
// Example:
//
//	params, err := ParseKeyValuePairs([]string{"id=7", "name=alice"})
//	// Returns: map[string]string{"id": "7", "name": "alice"}
func ParseKeyValuePairs(pairs []string) (map[string]string, error) {
	result := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("parameter %q is not in key=value format (example: --param id=7): %w", pair, simplepg.ErrInvalidConfig)
		}

		if key == "" {
			return nil, fmt.Errorf("parameter has empty key: %q: %w", pair, simplepg.ErrInvalidConfig)
		}

		result[key] = value
	}

	return result, nil
}

// StatementArgs builds the argument list for a statement from command-line
// input. Named values become a single simplepg.NamedArgs bound to @name
// placeholders; positional values bind $1, $2, ... Using both at once is an
// error. Values equal to NullValue bind NULL; everything else is sent as
// text and cast by the server.
func StatementArgs(positional []string, named map[string]string) ([]any, error) {
	if len(positional) > 0 && len(named) > 0 {
		return nil, fmt.Errorf("positional arguments and --param cannot be combined: %w", simplepg.ErrInvalidConfig)
	}

	if len(named) > 0 {
		args := make(simplepg.NamedArgs, len(named))
		for k, v := range named {
			args[k] = textOrNull(v)
		}
		return []any{args}, nil
	}

	args := make([]any, len(positional))
	for i, v := range positional {
		args[i] = textOrNull(v)
	}
	return args, nil
}

func textOrNull(v string) any {
	if v == NullValue {
		return nil
	}
	return v
}
