package engine

import (
	"testing"

	"github.com/mkaline/recall/internal/model"
)

// chain a—b—c—d plus an unlinked island e. Only one side of each link
// declares it.
func chainMemories() []*model.Memory {
	return []*model.Memory{
		{ID: "a", RelatedIDs: []string{"b"}},
		{ID: "b", RelatedIDs: []string{"c"}},
		{ID: "c", RelatedIDs: []string{"d"}},
		{ID: "d"},
		{ID: "e"},
	}
}

func TestBuildGraphUndirected(t *testing.T) {
	g := BuildGraph(chainMemories())

	// b declared only c, but is reachable from a's declaration too.
	nb := g.Neighbors("b")
	if len(nb) != 2 {
		t.Fatalf("Neighbors(b) = %v, want a and c", nb)
	}
	if len(g.Neighbors("d")) != 1 {
		t.Errorf("Neighbors(d) = %v, want [c]", g.Neighbors("d"))
	}
	if len(g.Neighbors("e")) != 0 {
		t.Errorf("Neighbors(e) = %v, want none", g.Neighbors("e"))
	}
}

func TestBuildGraphIgnoresBadLinks(t *testing.T) {
	g := BuildGraph([]*model.Memory{
		{ID: "a", RelatedIDs: []string{"a", "ghost", "b", "b"}},
		{ID: "b", RelatedIDs: []string{"a"}},
	})

	if got := g.Neighbors("a"); len(got) != 1 || got[0] != "b" {
		t.Errorf("Neighbors(a) = %v, want [b]: self links, dangling links, and duplicates dropped", got)
	}
	if got := g.Neighbors("ghost"); len(got) != 0 {
		t.Errorf("Neighbors(ghost) = %v, want none", got)
	}
}

func TestDistancesBounded(t *testing.T) {
	g := BuildGraph(chainMemories())

	dist := g.Distances([]string{"a"}, 2)
	want := map[string]int{"a": 0, "b": 1, "c": 2}
	if len(dist) != len(want) {
		t.Fatalf("Distances = %v, want %v", dist, want)
	}
	for id, d := range want {
		if dist[id] != d {
			t.Errorf("dist[%s] = %d, want %d", id, dist[id], d)
		}
	}
	if _, ok := dist["d"]; ok {
		t.Error("d is beyond maxHops and must be absent")
	}
	if _, ok := dist["e"]; ok {
		t.Error("e is unreachable and must be absent")
	}
}

func TestDistancesMultiSeed(t *testing.T) {
	g := BuildGraph(chainMemories())

	dist := g.Distances([]string{"a", "d"}, 1)
	if dist["a"] != 0 || dist["d"] != 0 {
		t.Errorf("seeds must be at distance 0: %v", dist)
	}
	if dist["b"] != 1 || dist["c"] != 1 {
		t.Errorf("b and c are one hop from a seed: %v", dist)
	}
}

func TestDistancesZeroHops(t *testing.T) {
	g := BuildGraph(chainMemories())

	dist := g.Distances([]string{"a"}, 0)
	if len(dist) != 1 || dist["a"] != 0 {
		t.Errorf("Distances with maxHops 0 = %v, want only the seed", dist)
	}
}

func TestDistancesDuplicateSeeds(t *testing.T) {
	g := BuildGraph(chainMemories())

	dist := g.Distances([]string{"a", "a"}, 1)
	if dist["a"] != 0 || dist["b"] != 1 {
		t.Errorf("Distances = %v", dist)
	}
}
