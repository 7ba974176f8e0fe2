// Package sqlxrepos implements the core repository interfaces on Postgres via
// sqlx. Raw row shapes never leave this package: every table has an explicit
// row struct and a mapping function at the boundary.
package sqlxrepos

import (
	"strings"

	"github.com/ltoral/escolar/core"
)

// getExec resolves the executor for a call: the service-provided override
// (usually a transaction) wins over the repository's default handle.
func getExec(def core.DBExecutor, svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return def
}

// orderBy renders an ORDER BY clause from the requested orderings, keeping
// only whitelisted fields (mapped to their column names). Falls back to def.
func orderBy(allowed map[string]string, ordering []core.DBOrdering, def string) string {
	parts := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		col, ok := allowed[ord.Field]
		if !ok {
			continue
		}
		parts = append(parts, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	if len(parts) == 0 {
		return " ORDER BY " + def
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}
