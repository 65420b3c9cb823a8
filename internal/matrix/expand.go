package matrix

import (
	"sort"
	"strings"

	"github.com/sourceplane/gateci/internal/model"
)

// Instance is one point of a job's matrix: a concrete assignment of axis
// values (plus any extra keys contributed by include entries).
type Instance struct {
	ID     string
	Values map[string]string
}

// Expand produces one independent instance per combination of axis values,
// then layers the include list on top. An include entry that agrees with an
// existing combination on every shared axis extends (or overrides) that
// combination; one that matches none injects a new instance. Includes never
// filter the product.
//
// A nil matrix yields a single instance with no values.
func Expand(spec *model.MatrixSpec) []Instance {
	if spec == nil || len(spec.Axes) == 0 {
		return []Instance{{ID: "default", Values: map[string]string{}}}
	}

	axes := make([]string, 0, len(spec.Axes))
	for axis := range spec.Axes {
		axes = append(axes, axis)
	}
	sort.Strings(axes)

	combos := []map[string]string{{}}
	for _, axis := range axes {
		next := make([]map[string]string, 0, len(combos)*len(spec.Axes[axis]))
		for _, combo := range combos {
			for _, value := range spec.Axes[axis] {
				extended := make(map[string]string, len(combo)+1)
				for k, v := range combo {
					extended[k] = v
				}
				extended[axis] = value
				next = append(next, extended)
			}
		}
		combos = next
	}

	combos = layerIncludes(combos, spec.Include, axes)

	instances := make([]Instance, 0, len(combos))
	for _, combo := range combos {
		instances = append(instances, Instance{
			ID:     instanceID(combo),
			Values: combo,
		})
	}
	return instances
}

// layerIncludes applies include entries on top of the Cartesian product
func layerIncludes(combos []map[string]string, includes []map[string]string, axes []string) []map[string]string {
	for _, include := range includes {
		matchedAny := false
		for _, combo := range combos {
			if includeMatches(include, combo, axes) {
				matchedAny = true
				for k, v := range include {
					combo[k] = v
				}
			}
		}
		if !matchedAny {
			injected := make(map[string]string, len(include))
			for k, v := range include {
				injected[k] = v
			}
			combos = append(combos, injected)
		}
	}
	return combos
}

// includeMatches reports whether the include entry agrees with the combo on
// every declared axis the entry mentions
func includeMatches(include, combo map[string]string, axes []string) bool {
	shared := false
	for _, axis := range axes {
		value, ok := include[axis]
		if !ok {
			continue
		}
		shared = true
		if combo[axis] != value {
			return false
		}
	}
	return shared
}

// instanceID builds a stable, human-readable identifier from axis values
func instanceID(values map[string]string) string {
	if len(values) == 0 {
		return "default"
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"-"+values[k])
	}
	return strings.Join(parts, "_")
}
