package listactivities

import "mergington-activities/pkg/registry"

// Output is the full catalog keyed by activity name.
type Output = registry.Catalog
