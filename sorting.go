// sorting.go
package projectprefs

import (
	"maps"
	"slices"
	"strings"
)

// SortNamespace is the message namespace of sort field labels.
const SortNamespace = "projects.sort"

// DefaultSortField is used when no sort field is given.
const DefaultSortField = "name"

// LeakSortingClass marks sorting options that apply to the leak period.
const LeakSortingClass = "projects-leak-sorting-option"

// SortingMetric describes one sortable metric of the projects listing.
// StyleClass is LeakSortingClass for leak period metrics and empty otherwise.
type SortingMetric struct {
	Value      string `json:"value"`
	StyleClass string `json:"class,omitempty"`
}

var sortingMetrics = []SortingMetric{
	{Value: "name"},
	{Value: "analysis_date"},
	{Value: "reliability"},
	{Value: "security"},
	{Value: "maintainability"},
	{Value: "coverage"},
	{Value: "duplications"},
	{Value: "size"},
}

var sortingLeakMetrics = []SortingMetric{
	{Value: "name"},
	{Value: "analysis_date"},
	{Value: "new_reliability", StyleClass: LeakSortingClass},
	{Value: "new_security", StyleClass: LeakSortingClass},
	{Value: "new_maintainability", StyleClass: LeakSortingClass},
	{Value: "new_coverage", StyleClass: LeakSortingClass},
	{Value: "new_duplications", StyleClass: LeakSortingClass},
	{Value: "new_lines", StyleClass: LeakSortingClass},
}

// sortingSwitch maps an overall field to its leak counterpart and back.
var sortingSwitch = map[string]string{
	"analysis_date":       "analysis_date",
	"name":                "name",
	"reliability":         "new_reliability",
	"security":            "new_security",
	"maintainability":     "new_maintainability",
	"coverage":            "new_coverage",
	"duplications":        "new_duplications",
	"size":                "new_lines",
	"new_reliability":     "reliability",
	"new_security":        "security",
	"new_maintainability": "maintainability",
	"new_coverage":        "coverage",
	"new_duplications":    "duplications",
	"new_lines":           "size",
}

// SortingMetrics returns the overall sorting metrics in display order.
func SortingMetrics() []SortingMetric {
	return slices.Clone(sortingMetrics)
}

// SortingLeakMetrics returns the leak period sorting metrics in display order.
func SortingLeakMetrics() []SortingMetric {
	return slices.Clone(sortingLeakMetrics)
}

// SortingMetricsFor returns the leak metrics for ViewLeak and the overall metrics otherwise.
func SortingMetricsFor(view string) []SortingMetric {
	if view == ViewLeak {
		return SortingLeakMetrics()
	}
	return SortingMetrics()
}

// SortingSwitch returns a copy of the overall/leak field mirror table.
func SortingSwitch() map[string]string {
	return maps.Clone(sortingSwitch)
}

// SwitchField returns the counterpart of field in the other period.
func SwitchField(field string) (string, bool) {
	v, ok := sortingSwitch[field]
	return v, ok
}

// Sorting is a parsed sort specifier.
type Sorting struct {
	Value string `json:"sortValue"`
	Desc  bool   `json:"sortDesc"`
}

// ParseSorting splits a sort specifier into its field and direction.
// A leading "-" means descending. The empty string parses to an ascending empty field.
func ParseSorting(sort string) Sorting {
	if v, ok := strings.CutPrefix(sort, "-"); ok {
		return Sorting{Value: v, Desc: true}
	}
	return Sorting{Value: sort}
}

// String formats s back into a sort specifier.
func (s Sorting) String() string {
	if s.Desc {
		return "-" + s.Value
	}
	return s.Value
}

// SwitchSorting mirrors the field of a sort specifier to the other period,
// keeping its direction. Fields without a counterpart are returned unchanged.
func SwitchSorting(sort string) string {
	s := ParseSorting(sort)
	if v, ok := sortingSwitch[s.Value]; ok {
		s.Value = v
	}
	return s.String()
}

// LocalizeSorting returns the display label of a sort field.
// An empty field resolves as DefaultSortField.
func LocalizeSorting(tr Translator, sort string) string {
	if sort == "" {
		sort = DefaultSortField
	}
	return tr.Translate(SortNamespace, sort)
}
