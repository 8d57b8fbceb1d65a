package output

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jbweber/cephrbdx/internal/rbdx"
)

// JSONFormatter formats image usage as JSON.
type JSONFormatter struct{}

// FormatImages formats a query result as a JSON object keyed by pool.
// Pools that could not be listed are null.
func (f *JSONFormatter) FormatImages(result rbdx.QueryResult) (string, error) {
	if result == nil {
		result = rbdx.QueryResult{}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(result); err != nil {
		return "", fmt.Errorf("failed to marshal images to JSON: %w", err)
	}

	return buf.String(), nil
}
