// Package benchmark describes the SafeArena benchmarks and their task ids.
package benchmark

import (
	"fmt"
	"sort"

	"github.com/gobwas/glob"
)

// TaskPrefix namespaces every SafeArena task id.
const TaskPrefix = "safearena."

const (
	harmfulFirst = 1
	harmfulLast  = 249
	safeFirst    = 250
	safeLast     = 499
)

// Benchmark is a fixed list of tasks run with shared settings.
type Benchmark struct {
	Name                  string
	Backends              []string
	MultiTab              bool
	SupportsParallelSeeds bool
	MaxSteps              int
	TaskIDs               []string
}

func taskRange(first, last int) []string {
	ids := make([]string, 0, last-first+1)
	for i := first; i <= last; i++ {
		ids = append(ids, fmt.Sprintf("%s%d", TaskPrefix, i))
	}
	return ids
}

func newBenchmark(name string, ids []string) Benchmark {
	return Benchmark{
		Name:                  name,
		Backends:              []string{"safearena"},
		MultiTab:              true,
		SupportsParallelSeeds: false,
		MaxSteps:              30,
		TaskIDs:               ids,
	}
}

// registry builds every benchmark on each call so callers may modify them.
var registry = map[string]func() Benchmark{
	"safearena_all": func() Benchmark {
		return newBenchmark("safearena_all", append(taskRange(harmfulFirst, harmfulLast), taskRange(safeFirst, safeLast)...))
	},
	"safearena_harm": func() Benchmark {
		return newBenchmark("safearena_harm", taskRange(harmfulFirst, harmfulLast))
	},
	"safearena_safe": func() Benchmark {
		return newBenchmark("safearena_safe", taskRange(safeFirst, safeLast))
	},
}

// Names returns the registered benchmark names in lexical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the benchmark called name.
func Get(name string) (Benchmark, error) {
	build, ok := registry[name]
	if !ok {
		return Benchmark{}, fmt.Errorf("unknown benchmark %q", name)
	}
	return build(), nil
}

// Filter returns the task ids matching a glob pattern such as
// "safearena.1?" or "safearena.{1,2,3}". An empty pattern matches all.
func (b Benchmark) Filter(pattern string) ([]string, error) {
	if pattern == "" {
		return append([]string(nil), b.TaskIDs...), nil
	}

	g, err := glob.Compile(pattern, '.')
	if err != nil {
		return nil, fmt.Errorf("invalid task pattern %q: %w", pattern, err)
	}

	var ids []string
	for _, id := range b.TaskIDs {
		if g.Match(id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
