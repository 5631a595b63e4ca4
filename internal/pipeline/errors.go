package pipeline

import (
	"fmt"
	"strings"

	"github.com/inodb/tmtprep/internal/annotation"
)

// ConfigurationError reports an unrecognized option value or an unusable
// annotation table.
type ConfigurationError struct {
	Option  string
	Value   string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("configuration error")
	if e.Option != "" {
		fmt.Fprintf(&b, ": %s", e.Option)
		if e.Value != "" {
			fmt.Fprintf(&b, "=%q", e.Value)
		}
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// SchemaError reports that the PSM table lacks a column the pipeline needs
// or holds a value that cannot be interpreted.
type SchemaError struct {
	Column  string
	Message string
}

func (e *SchemaError) Error() string {
	if e.Column == "" {
		return "schema error: " + e.Message
	}
	return fmt.Sprintf("schema error: column %q: %s", e.Column, e.Message)
}

// AnnotationError lists the (Run, Channel) pairs of the data that have no
// annotation row.
type AnnotationError struct {
	Missing []annotation.Key
}

func (e *AnnotationError) Error() string {
	pairs := make([]string, 0, len(e.Missing))
	for _, k := range e.Missing {
		pairs = append(pairs, k.Run+"/"+k.Channel)
	}
	return fmt.Sprintf("annotation error: %d run/channel pair(s) have no annotation: %s",
		len(e.Missing), strings.Join(pairs, ", "))
}
