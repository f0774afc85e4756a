// This file implements priority-weighted LRU eviction.

package eviction

import (
	"sort"
	"time"

	"github.com/bookedbarber/dashcache/types"
)

// plruNode tracks one key's eviction metadata.
type plruNode struct {
	key        string
	size       int64
	weight     int // priority weight: high=3, medium=2, low=1
	lastAccess time.Time
}

/*
priorityLRU evicts in ascending score order, where

	score = lastAccess + weight * WeightStep

Higher-priority entries behave as if they were accessed further in the future,
so a high-priority entry only falls to eviction once every lower-priority entry
with an older-or-equal access time is gone (or freeing those was not enough).

This is a heuristic approximation of LRU-with-priority, not a strict ordering
guarantee between entries whose scores collide.
*/
type priorityLRU struct {
	cfg   Config
	nodes map[string]*plruNode
}

func newPriorityLRU(cfg Config) *priorityLRU {
	return &priorityLRU{cfg: cfg, nodes: make(map[string]*plruNode)}
}

// OnGet refreshes the recency stamp for the key.
func (p *priorityLRU) OnGet(k string) {
	if n, ok := p.nodes[k]; ok {
		n.lastAccess = p.cfg.Now()
	}
}

// OnPut inserts or refreshes tracking metadata for the key.
func (p *priorityLRU) OnPut(k string, size int64, pri types.Priority) {
	now := p.cfg.Now()
	if n, ok := p.nodes[k]; ok {
		n.size = size
		n.weight = pri.Weight()
		n.lastAccess = now
		return
	}
	p.nodes[k] = &plruNode{key: k, size: size, weight: pri.Weight(), lastAccess: now}
}

// Remove drops tracking metadata for an explicitly removed key.
func (p *priorityLRU) Remove(k string) {
	delete(p.nodes, k)
}

// score computes the eviction score for a node.
func (p *priorityLRU) score(n *plruNode) time.Time {
	return n.lastAccess.Add(time.Duration(n.weight) * p.cfg.WeightStep)
}

/*
Evict picks victims in ascending score order until the cumulative freed size
reaches spaceNeeded. Ties break toward lower priority, then lexically by key so
eviction is deterministic under test.
*/
func (p *priorityLRU) Evict(spaceNeeded int64) []string {
	if len(p.nodes) == 0 || spaceNeeded <= 0 {
		return nil
	}

	candidates := make([]*plruNode, 0, len(p.nodes))
	for _, n := range p.nodes {
		candidates = append(candidates, n)
	}
	sort.Slice(candidates, func(i, j int) bool {
		si, sj := p.score(candidates[i]), p.score(candidates[j])
		if !si.Equal(sj) {
			return si.Before(sj)
		}
		if candidates[i].weight != candidates[j].weight {
			return candidates[i].weight < candidates[j].weight
		}
		return candidates[i].key < candidates[j].key
	})

	var freed int64
	var victims []string
	for _, n := range candidates {
		if freed >= spaceNeeded {
			break
		}
		freed += n.size
		victims = append(victims, n.key)
		delete(p.nodes, n.key)
	}
	return victims
}
