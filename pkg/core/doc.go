// Package core defines the shared language of the LeapGrid system.
//
// This package contains:
//   - Payload entities (Company, Metric, HierarchyNode, PeriodValue, Styling)
//   - Grid entities (GridRow, Cell, GridColumn, GridModel, Value)
//   - Service interfaces (Store)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
