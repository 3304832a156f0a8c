package engine

import "github.com/mkaline/recall/internal/model"

// Graph is the undirected relation graph over a memory set, built from
// explicit related_memories links.
type Graph struct {
	adj map[string][]string
}

// BuildGraph constructs the adjacency map. Each declared link is inserted
// in both directions regardless of which side declared it.
func BuildGraph(memories []*model.Memory) *Graph {
	g := &Graph{adj: make(map[string][]string, len(memories))}
	present := make(map[string]bool, len(memories))
	for _, m := range memories {
		present[m.ID] = true
	}
	for _, m := range memories {
		for _, rel := range m.RelatedIDs {
			if rel == m.ID || !present[rel] {
				continue
			}
			g.addEdge(m.ID, rel)
		}
	}
	return g
}

func (g *Graph) addEdge(a, b string) {
	for _, n := range g.adj[a] {
		if n == b {
			return
		}
	}
	g.adj[a] = append(g.adj[a], b)
	g.adj[b] = append(g.adj[b], a)
}

// Neighbors returns the ids directly linked to the given memory.
func (g *Graph) Neighbors(id string) []string {
	return g.adj[id]
}

// Distances runs a breadth-first traversal from the seed set, bounded by
// maxHops. The result maps each reachable id to its shortest hop distance;
// seeds are at distance 0 and nodes beyond the bound are simply absent.
func (g *Graph) Distances(seeds []string, maxHops int) map[string]int {
	dist := make(map[string]int, len(seeds))
	var frontier []string
	for _, s := range seeds {
		if _, ok := dist[s]; ok {
			continue
		}
		dist[s] = 0
		frontier = append(frontier, s)
	}

	for hop := 1; hop <= maxHops && len(frontier) > 0; hop++ {
		var next []string
		for _, id := range frontier {
			for _, n := range g.adj[id] {
				if _, seen := dist[n]; seen {
					continue
				}
				dist[n] = hop
				next = append(next, n)
			}
		}
		frontier = next
	}
	return dist
}
