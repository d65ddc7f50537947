package ecs

import (
	"fmt"
	"strings"
)

// systemNode is a registered system plus its declared requirements and
// declaration order (used as the tie-break when serializing hazards).
type systemNode struct {
	name  string
	sys   System
	reqs  ThreadingRequirements
	order int
}

// buildPlan partitions the registered systems into an ordered sequence of
// batches. An edge A -> B exists when B names A as a predecessor, or when
// the two declare overlapping access with at least one write; hazard pairs
// with no explicit ordering are serialized in declaration order. Phases are
// planned independently and concatenated: batches never span phases.
//
// Any cycle is a fatal planning error; no frame executes with an ambiguous
// schedule.
func buildPlan(nodes []*systemNode) ([][]*systemNode, error) {
	byName := make(map[string]*systemNode, len(nodes))
	for _, n := range nodes {
		byName[n.name] = n
	}

	for _, n := range nodes {
		for _, pred := range n.reqs.After {
			p, ok := byName[pred]
			if !ok {
				return nil, fmt.Errorf("%w: %q (required by %q)", ErrUnknownPredecessor, pred, n.name)
			}
			if p == n {
				return nil, fmt.Errorf("%w: %q depends on itself", ErrDependencyCycle, n.name)
			}
			if p.reqs.Phase > n.reqs.Phase {
				return nil, fmt.Errorf("%w: %q (%s) cannot run after %q (%s)",
					ErrPredecessorPhase, n.name, n.reqs.Phase, pred, p.reqs.Phase)
			}
		}
	}

	var plan [][]*systemNode
	for _, phase := range []Phase{PhasePreUpdate, PhaseUpdate, PhasePostUpdate} {
		group := make([]*systemNode, 0, len(nodes))
		for _, n := range nodes {
			if n.reqs.Phase == phase {
				group = append(group, n)
			}
		}

		batches, err := planPhase(group)
		if err != nil {
			return nil, err
		}
		plan = append(plan, batches...)
	}
	return plan, nil
}

func planPhase(group []*systemNode) ([][]*systemNode, error) {
	n := len(group)
	if n == 0 {
		return nil, nil
	}

	pos := make(map[string]int, n)
	for i, node := range group {
		pos[node.name] = i
	}

	// Explicit predecessor edges within this phase. Predecessors in earlier
	// phases are satisfied by phase ordering and need no edge.
	explicit := make([][]bool, n)
	for i := range explicit {
		explicit[i] = make([]bool, n)
	}
	for i, node := range group {
		for _, pred := range node.reqs.After {
			if j, ok := pos[pred]; ok {
				explicit[j][i] = true
			}
		}
	}

	// Transitive closure, so hazard tie-breaks never contradict an explicit
	// ordering that holds only through intermediaries.
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			if !explicit[i][k] {
				continue
			}
			for j := 0; j < n; j++ {
				if explicit[k][j] {
					explicit[i][j] = true
				}
			}
		}
	}
	for i := 0; i < n; i++ {
		if explicit[i][i] {
			return nil, fmt.Errorf("%w: %q is its own transitive predecessor", ErrDependencyCycle, group[i].name)
		}
	}

	edges := make([][]bool, n)
	for i := range edges {
		edges[i] = make([]bool, n)
		copy(edges[i], explicit[i])
	}

	// Data hazards: serialize in declaration order unless an explicit
	// ordering already covers the pair.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !group[i].reqs.conflictsWith(group[j].reqs) {
				continue
			}
			if !explicit[j][i] {
				edges[i][j] = true
			}
		}
	}

	indegree := make([]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if edges[i][j] {
				indegree[j]++
			}
		}
	}

	var batches [][]*systemNode
	done := make([]bool, n)
	placed := 0

	for placed < n {
		var ready []int
		for i := 0; i < n; i++ {
			if !done[i] && indegree[i] == 0 {
				ready = append(ready, i)
			}
		}

		if len(ready) == 0 {
			var remaining []string
			for i := 0; i < n; i++ {
				if !done[i] {
					remaining = append(remaining, group[i].name)
				}
			}
			return nil, fmt.Errorf("%w: involving %s", ErrDependencyCycle, strings.Join(remaining, ", "))
		}

		// Parallel-eligible members of the ready set share one batch; the
		// rest each get a batch of their own.
		var parallel []*systemNode
		var solo []*systemNode
		for _, i := range ready {
			if group[i].reqs.Parallel {
				parallel = append(parallel, group[i])
			} else {
				solo = append(solo, group[i])
			}
		}
		if len(parallel) > 0 {
			batches = append(batches, parallel)
		}
		for _, node := range solo {
			batches = append(batches, []*systemNode{node})
		}

		for _, i := range ready {
			done[i] = true
			placed++
			for j := 0; j < n; j++ {
				if edges[i][j] {
					indegree[j]--
				}
			}
		}
	}

	return batches, nil
}

// verifyPlan re-checks the pairwise disjoint-access invariant inside every
// multi-system batch. Given registration-time validation this cannot fire;
// if it does, a declaration bug slipped through.
func verifyPlan(plan [][]*systemNode) error {
	for _, batch := range plan {
		for i := 0; i < len(batch); i++ {
			for j := i + 1; j < len(batch); j++ {
				if batch[i].reqs.conflictsWith(batch[j].reqs) {
					return fmt.Errorf("%w: %q and %q share a batch", ErrRaceHazard, batch[i].name, batch[j].name)
				}
			}
		}
	}
	return nil
}
