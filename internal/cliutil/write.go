// Package cliutil provides helpers shared by the restparams commands.
package cliutil

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Writef writes formatted output to w. A failed write is reported on stderr
// rather than returned, since there is nowhere better to send it.
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// KeyValues turns repeated key=value flags into request data. A key given
// more than once becomes a []string, as a repeated query key would.
func KeyValues(pairs []string) (map[string]any, error) {
	values := make(map[string][]string)
	var order []string
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid key=value pair %q", pair)
		}
		if _, seen := values[key]; !seen {
			order = append(order, key)
		}
		values[key] = append(values[key], value)
	}

	data := make(map[string]any, len(values))
	for _, key := range order {
		if vs := values[key]; len(vs) == 1 {
			data[key] = vs[0]
		} else {
			data[key] = vs
		}
	}
	return data, nil
}
