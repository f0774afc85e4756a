// This file implements LFU eviction.

package eviction

import "github.com/bookedbarber/dashcache/types"

// lfuNode represents one key tracked by LFU.
type lfuNode struct {
	key  string
	size int64
	freq int // how many times this key was accessed
}

type lfu struct {
	// nodes lets us quickly find the node for a key
	nodes map[string]*lfuNode

	// freqMap groups keys by how many times they were accessed
	freqMap map[int]map[string]*lfuNode

	// minFreq keeps track of the smallest frequency currently present.
	// This avoids scanning the entire map on eviction.
	minFreq int
}

func newLFU() *lfu {
	return &lfu{
		nodes:   make(map[string]*lfuNode),
		freqMap: make(map[int]map[string]*lfuNode),
	}
}

// OnGet is called whenever a key is read from the cache.
func (l *lfu) OnGet(k string) {
	n, ok := l.nodes[k]
	if !ok {
		// Key not tracked; nothing to do
		return
	}

	old := n.freq
	n.freq++

	// Move the key from its old frequency bucket to the new one
	delete(l.freqMap[old], k)
	if len(l.freqMap[old]) == 0 {
		delete(l.freqMap, old)
		if l.minFreq == old {
			l.minFreq = n.freq
		}
	}
	l.bucket(n.freq)[k] = n
}

// OnPut is called whenever a key is added to the cache.
// New keys start at frequency 1, which also resets minFreq.
func (l *lfu) OnPut(k string, size int64, _ types.Priority) {
	if n, ok := l.nodes[k]; ok {
		n.size = size
		return
	}
	n := &lfuNode{key: k, size: size, freq: 1}
	l.nodes[k] = n
	l.bucket(1)[k] = n
	l.minFreq = 1
}

// Remove is called when a key is explicitly removed (not evicted for space).
func (l *lfu) Remove(k string) {
	n, ok := l.nodes[k]
	if !ok {
		return
	}
	delete(l.nodes, k)
	delete(l.freqMap[n.freq], k)
	if len(l.freqMap[n.freq]) == 0 {
		delete(l.freqMap, n.freq)
		if l.minFreq == n.freq {
			l.recomputeMinFreq()
		}
	}
}

// Evict removes least-frequently-used keys until the requested space is freed.
// Within a frequency bucket the pick order is map iteration order; LFU makes
// no promise beyond the frequency itself.
func (l *lfu) Evict(spaceNeeded int64) []string {
	var freed int64
	var victims []string
	for freed < spaceNeeded && len(l.nodes) > 0 {
		bucket, ok := l.freqMap[l.minFreq]
		if !ok || len(bucket) == 0 {
			l.recomputeMinFreq()
			bucket, ok = l.freqMap[l.minFreq]
			if !ok {
				break
			}
		}
		for k, n := range bucket {
			delete(bucket, k)
			delete(l.nodes, k)
			freed += n.size
			victims = append(victims, k)
			break
		}
		if len(bucket) == 0 {
			delete(l.freqMap, l.minFreq)
			l.recomputeMinFreq()
		}
	}
	return victims
}

// bucket returns (creating if needed) the node set for a frequency.
func (l *lfu) bucket(freq int) map[string]*lfuNode {
	b, ok := l.freqMap[freq]
	if !ok {
		b = make(map[string]*lfuNode)
		l.freqMap[freq] = b
	}
	return b
}

// recomputeMinFreq rescans bucket frequencies after the current minimum drained.
func (l *lfu) recomputeMinFreq() {
	l.minFreq = 0
	for f := range l.freqMap {
		if l.minFreq == 0 || f < l.minFreq {
			l.minFreq = f
		}
	}
}
