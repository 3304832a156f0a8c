package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mkaline/recall/internal/model"
)

// MergeSynthesizer produces merged content for a cluster of near-duplicate
// memories. The heuristic default returns the longest member's content; a
// model-assisted implementation can be substituted for higher quality.
type MergeSynthesizer interface {
	SynthesizeMerge(ctx context.Context, members []*model.Memory) (string, error)
}

// HeuristicMerger implements MergeSynthesizer with the longest-content
// placeholder.
type HeuristicMerger struct{}

// SynthesizeMerge returns the longest member's content.
func (HeuristicMerger) SynthesizeMerge(_ context.Context, members []*model.Memory) (string, error) {
	longest := ""
	for _, m := range members {
		if len(m.Content) > len(longest) {
			longest = m.Content
		}
	}
	return longest, nil
}

// FindConsolidationCandidates greedily groups near-duplicate memories whose
// pairwise cosine similarity meets the threshold. Vectors come from the
// similarity collaborator and are never recomputed here.
//
// Clustering is single-link: pairs are visited in input order, and when
// either member of a matching pair already belongs to a cluster the other
// member joins it. Cluster membership is not re-validated after merges, so
// transitively weak chains can form; this mirrors the source behavior and
// is a documented limitation.
func FindConsolidationCandidates(memories []*model.Memory, vectors map[string][]float64, threshold float64) []model.ConsolidationCandidate {
	if len(memories) < 2 {
		return nil
	}
	threshold = clampThreshold(threshold)

	type cluster struct {
		members []*model.Memory
		simSum  float64
		pairs   int
	}

	var clusters []*cluster
	clusterOf := make(map[string]*cluster)

	for i := 0; i < len(memories); i++ {
		vi, ok := vectors[memories[i].ID]
		if !ok {
			continue
		}
		for j := i + 1; j < len(memories); j++ {
			vj, ok := vectors[memories[j].ID]
			if !ok {
				continue
			}
			sim := CosineSimilarity(vi, vj)
			if sim < threshold {
				continue
			}

			ci := clusterOf[memories[i].ID]
			cj := clusterOf[memories[j].ID]
			switch {
			case ci != nil && cj != nil:
				// Both already claimed; the pair still informs aggregate
				// similarity when they share a cluster.
				if ci == cj {
					ci.simSum += sim
					ci.pairs++
				}
			case ci != nil:
				ci.members = append(ci.members, memories[j])
				ci.simSum += sim
				ci.pairs++
				clusterOf[memories[j].ID] = ci
			case cj != nil:
				cj.members = append(cj.members, memories[i])
				cj.simSum += sim
				cj.pairs++
				clusterOf[memories[i].ID] = cj
			default:
				c := &cluster{
					members: []*model.Memory{memories[i], memories[j]},
					simSum:  sim,
					pairs:   1,
				}
				clusters = append(clusters, c)
				clusterOf[memories[i].ID] = c
				clusterOf[memories[j].ID] = c
			}
		}
	}

	var candidates []model.ConsolidationCandidate
	merger := HeuristicMerger{}
	for _, c := range clusters {
		if len(c.members) < 2 {
			continue
		}
		suggested, _ := merger.SynthesizeMerge(context.Background(), c.members)
		candidates = append(candidates, model.ConsolidationCandidate{
			Members:          c.members,
			Similarity:       c.simSum / float64(c.pairs),
			SuggestedContent: suggested,
			Rationale:        mergeRationale(c.members, c.simSum/float64(c.pairs)),
		})
	}
	return candidates
}

func clampThreshold(t float64) float64 {
	if t < 0.5 {
		return 0.5
	}
	if t > 0.99 {
		return 0.99
	}
	return t
}

// mergeRationale describes why the cluster belongs together: shared tags
// when any exist, otherwise the similarity magnitude.
func mergeRationale(members []*model.Memory, similarity float64) string {
	shared := members[0].Tags
	for _, m := range members[1:] {
		shared = (&model.Memory{Tags: shared}).SharedTags(m)
		if len(shared) == 0 {
			break
		}
	}
	if len(shared) > 0 {
		sort.Strings(shared)
		return fmt.Sprintf("%d memories share tags: %s", len(members), strings.Join(shared, ", "))
	}
	return fmt.Sprintf("%d memories with average similarity %.2f", len(members), similarity)
}
