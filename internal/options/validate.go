// Package options provides shared checks for tool and command inputs.
package options

import (
	"fmt"
	"strings"
)

// ExactlyOne ensures exactly one of the named inputs is set. names and
// values pair up by index; an input is set when its value is non-empty.
//
//	ExactlyOne([]string{"file", "url", "content"}, in.File, in.URL, in.Content)
func ExactlyOne(names []string, values ...string) error {
	if len(names) != len(values) {
		return fmt.Errorf("options: %d names for %d values", len(names), len(values))
	}

	count := 0
	for _, v := range values {
		if v != "" {
			count++
		}
	}
	if count != 1 {
		return fmt.Errorf("exactly one of %s must be provided (got %d)", joinAlternatives(names), count)
	}
	return nil
}

// joinAlternatives renders names as "a, b, or c".
func joinAlternatives(names []string) string {
	switch len(names) {
	case 0:
		return "nothing"
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
}
