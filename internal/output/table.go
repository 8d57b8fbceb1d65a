package output

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/docker/go-units"

	"github.com/jbweber/cephrbdx/internal/rbdx"
)

// TableFormatter formats image usage as a human-readable table.
type TableFormatter struct {
	// NoHeaders omits the header row.
	NoHeaders bool
	// Raw prints byte counts instead of human-readable sizes.
	Raw bool
}

// FormatImages formats a query result as one row per image, sorted by pool then image.
// Pools that could not be listed and empty pools get a single marker row.
func (f *TableFormatter) FormatImages(result rbdx.QueryResult) (string, error) {
	if len(result) == 0 {
		return "No pools queried\n", nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	// Write header unless NoHeaders is set
	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "POOL\tIMAGE\tSIZE\tUSED")
	}

	for _, pool := range result.Keys() {
		entry := result[pool]

		if !entry.Available() {
			_, _ = fmt.Fprintf(w, "%s\t%s\t-\t-\n", pool, "<unavailable>")
			continue
		}
		if len(entry.Images) == 0 {
			_, _ = fmt.Fprintf(w, "%s\t%s\t-\t-\n", pool, "<no images>")
			continue
		}

		ids := make([]string, 0, len(entry.Images))
		for id := range entry.Images {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			usage := entry.Images[id]
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				pool, id, Size(usage.Size, f.Raw), Size(usage.Capacity, f.Raw))
		}
	}

	_ = w.Flush()
	return buf.String(), nil
}

// Size formats a byte count as binary units, e.g. "1GiB" or "456B", or as plain
// digits when raw is set.
func Size(n uint64, raw bool) string {
	if raw {
		return strconv.FormatUint(n, 10)
	}
	return units.BytesSize(float64(n))
}
