package projectprefs

import "slices"

// View identifiers.
const (
	ViewOverall = "overall"
	ViewLeak    = "leak"
)

var views = []string{ViewOverall, ViewLeak}

var visualizations = []string{
	"risk",
	"reliability",
	"security",
	"maintainability",
	"coverage",
	"duplications",
}

// Views returns the allowed view identifiers in display order.
func Views() []string {
	return slices.Clone(views)
}

// Visualizations returns the allowed visualization identifiers in display order.
func Visualizations() []string {
	return slices.Clone(visualizations)
}

// IsView reports whether v is one of Views.
func IsView(v string) bool {
	return slices.Contains(views, v)
}

// IsVisualization reports whether v is one of Visualizations.
func IsVisualization(v string) bool {
	return slices.Contains(visualizations, v)
}
