package journey

import "github.com/probuddy/api/internal/model"

// graph indexes a journey's steps by id and resolves the prerequisite edges
// into a child adjacency list. References to unknown ids are dropped.
type graph struct {
	steps    map[string]*model.GoalStep
	order    []string
	children map[string][]string
}

func newGraph(steps []*model.GoalStep) *graph {
	g := &graph{
		steps:    make(map[string]*model.GoalStep, len(steps)),
		order:    make([]string, 0, len(steps)),
		children: make(map[string][]string, len(steps)),
	}
	for _, s := range steps {
		g.steps[s.ID] = s
		g.order = append(g.order, s.ID)
	}
	for _, s := range steps {
		for _, parent := range s.Prerequisites {
			if _, ok := g.steps[parent]; ok {
				g.children[parent] = append(g.children[parent], s.ID)
			}
		}
	}
	return g
}

func (g *graph) step(id string) *model.GoalStep {
	return g.steps[id]
}

// reachable returns start and every step that depends on it, transitively.
func (g *graph) reachable(start string) map[string]bool {
	visited := map[string]bool{}
	stack := []string{start}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true
		stack = append(stack, g.children[current]...)
	}
	return visited
}

// options returns the branch roots of a decision step: its explicit
// alternatives when present, its children otherwise. Self references,
// unknown ids and duplicates are removed; order is preserved.
func (g *graph) options(decision *model.GoalStep) []string {
	candidates := []string(decision.Alternatives)
	if len(candidates) == 0 {
		candidates = g.children[decision.ID]
	}

	seen := map[string]bool{}
	out := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if id == decision.ID || seen[id] {
			continue
		}
		if _, ok := g.steps[id]; !ok {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// prerequisitesMet reports whether every known prerequisite of s is completed,
// skipped, or off the main path.
func (g *graph) prerequisitesMet(s *model.GoalStep) bool {
	for _, id := range s.Prerequisites {
		p := g.steps[id]
		if p == nil || !p.IsOnMainPath() {
			continue
		}
		if !p.IsTerminal() {
			return false
		}
	}
	return true
}
