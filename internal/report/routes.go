package report

import (
	"strings"

	"github.com/nconklindev/mealroute/internal/types"
)

const DefaultMaxRoutes = 14

type RouteOptions struct {
	Exclude   bool
	Substring string
	Max       int
}

// Excluded reports whether route contains the exclusion substring,
// ignoring case.
func (o RouteOptions) Excluded(route string) bool {
	if !o.Exclude || o.Substring == "" {
		return false
	}
	return strings.Contains(strings.ToUpper(route), strings.ToUpper(o.Substring))
}

// Routes returns distinct route names in first-seen order across tables,
// visited in the order given. Callers pass days Monday to Friday; nil
// tables are skipped.
func Routes(tables []*types.DayTable, opts RouteOptions) []string {
	limit := opts.Max
	if limit <= 0 {
		limit = DefaultMaxRoutes
	}

	var order []string
	seen := make(map[string]bool)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, rec := range t.Records {
			route := strings.TrimSpace(rec.Route)
			if route == "" || seen[route] || opts.Excluded(route) {
				continue
			}
			seen[route] = true
			order = append(order, route)
			if len(order) == limit {
				return order
			}
		}
	}
	return order
}

// RecordsForRoute returns copies of the records of table on route.
func RecordsForRoute(table *types.DayTable, route string) []types.DeliveryRecord {
	if table == nil {
		return nil
	}
	var out []types.DeliveryRecord
	for _, rec := range table.Records {
		if rec.Route == route {
			out = append(out, rec)
		}
	}
	return out
}
