package output

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/cephrbdx/internal/rbdx"
)

// YAMLFormatter formats image usage as YAML.
type YAMLFormatter struct{}

// FormatImages formats a query result as a YAML mapping keyed by pool.
// Pools that could not be listed are null.
func (f *YAMLFormatter) FormatImages(result rbdx.QueryResult) (string, error) {
	if len(result) == 0 {
		return "{}\n", nil
	}

	data, err := yaml.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal images to YAML: %w", err)
	}

	return string(data), nil
}
