// This file implements plain LRU eviction.

package eviction

import "github.com/bookedbarber/dashcache/types"

// lruNode represents ONE key inside the LRU structure. We use a doubly-linked
// list to track usage order.
type lruNode struct {
	// key is the cache key this node represents
	key string

	// size is the stored byte size, needed to evict an exact amount of space
	size int64

	// prev points to the node that was used just after this one
	prev *lruNode

	// next points to the node that was used just before this one
	next *lruNode
}

// lru is the concrete implementation of the LRU eviction policy.
// Priority is ignored; only recency matters.
type lru struct {
	cfg Config

	// nodes maps cache keys to their corresponding list nodes.
	// This allows us to find and move nodes in O(1) time.
	nodes map[string]*lruNode

	// head points to the MOST recently used key
	head *lruNode

	// tail points to the LEAST recently used key
	tail *lruNode
}

func newLRU(cfg Config) *lru {
	return &lru{cfg: cfg, nodes: make(map[string]*lruNode)}
}

// OnGet is called whenever a key is read from the cache. If a key is accessed,
// it becomes "recently used", so we move its node to the front of the list.
func (l *lru) OnGet(k string) {
	if n, ok := l.nodes[k]; ok {
		l.moveToFront(n)
	}
}

// OnPut is called whenever a key is added to the cache.
// - If the key already exists, refresh its size and recency
// - If the key is new: create a node and add it to the front
func (l *lru) OnPut(k string, size int64, _ types.Priority) {
	if n, ok := l.nodes[k]; ok {
		n.size = size
		l.moveToFront(n)
		return
	}
	n := &lruNode{key: k, size: size}
	l.nodes[k] = n
	l.addFront(n)
}

// Evict removes least-recently-used keys from the tail of the list until the
// requested space is freed.
func (l *lru) Evict(spaceNeeded int64) []string {
	var freed int64
	var victims []string
	for l.tail != nil && freed < spaceNeeded {
		n := l.tail
		l.remove(n)
		delete(l.nodes, n.key)
		freed += n.size
		victims = append(victims, n.key)
	}
	return victims
}

// Remove is called when a key is explicitly removed (not evicted for space).
// This keeps LRU's internal state consistent.
func (l *lru) Remove(k string) {
	if n, ok := l.nodes[k]; ok {
		l.remove(n)
		delete(l.nodes, k)
	}
}

// addFront adds a node to the front of the linked list. This marks the node as
// "most recently used".
func (l *lru) addFront(n *lruNode) {
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n

	// If the list was empty, head and tail are the same
	if l.tail == nil {
		l.tail = n
	}
}

// remove removes a node from the linked list, updating head and tail if needed.
func (l *lru) remove(n *lruNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

// moveToFront is used when a key is accessed:
// 1. Remove node from its current position
// 2. Add it to the front
func (l *lru) moveToFront(n *lruNode) {
	l.remove(n)
	l.addFront(n)
}
