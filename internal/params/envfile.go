package params

import (
	"fmt"

	"github.com/joho/godotenv"

	"github.com/vvka-141/simplepg/pkg/simplepg"
)

// LoadFile reads named parameters from a file in .env format.
// Unlike the --env-file flag, the values are not exported to the process
// environment.
func LoadFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read params file %s: %w: %w", path, simplepg.ErrInvalidConfig, err)
	}
	return values, nil
}

// Collect merges parameters from an optional file with --param pairs.
// Pairs given on the command line override the file.
func Collect(file string, pairs []string) (map[string]string, error) {
	result := make(map[string]string)

	if file != "" {
		fromFile, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		for k, v := range fromFile {
			result[k] = v
		}
	}

	cli, err := ParseKeyValuePairs(pairs)
	if err != nil {
		return nil, err
	}
	for k, v := range cli {
		result[k] = v
	}

	return result, nil
}
