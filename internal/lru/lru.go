// Package lru provides the recency list backing the frame cache.
package lru

// Handle is an entry in the doubly-linked recency list. Each handle
// stores its key so the owning cache can delete the map entry in O(1)
// when the handle is evicted.
type Handle[K comparable] struct {
	key  K
	prev *Handle[K]
	next *Handle[K]
}

// List tracks usage recency for cache keys: front is most recently
// used, back is the eviction candidate. The list is not thread-safe;
// the owning cache holds its lock around every call.
type List[K comparable] struct {
	front *Handle[K]
	back  *Handle[K]
	size  int
}

// New creates an empty recency list.
func New[K comparable]() *List[K] {
	return &List[K]{}
}

// Len returns the number of tracked keys.
func (l *List[K]) Len() int { return l.size }

// Touch inserts a key at the front and returns a handle for later
// Promote and Drop calls.
func (l *List[K]) Touch(key K) *Handle[K] {
	n := &Handle[K]{key: key}
	n.next = l.front
	if l.front != nil {
		l.front.prev = n
	}
	l.front = n
	if l.back == nil {
		l.back = n
	}
	l.size++
	return n
}

// Promote moves an existing handle to the front.
func (l *List[K]) Promote(n *Handle[K]) {
	if n == nil || n == l.front {
		return
	}
	l.unlink(n)
	n.next = l.front
	if l.front != nil {
		l.front.prev = n
	}
	l.front = n
	if l.back == nil {
		l.back = n
	}
	l.size++
}

// Drop removes a handle from the list.
func (l *List[K]) Drop(n *Handle[K]) {
	if n == nil {
		return
	}
	l.unlink(n)
}

// EvictBack removes the least recently used key and returns it.
// ok is false when the list is empty.
func (l *List[K]) EvictBack() (key K, ok bool) {
	if l.back == nil {
		var zero K
		return zero, false
	}
	n := l.back
	l.unlink(n)
	return n.key, true
}

// Clear empties the list.
func (l *List[K]) Clear() {
	l.front = nil
	l.back = nil
	l.size = 0
}

func (l *List[K]) unlink(n *Handle[K]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.front = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.back = n.prev
	}
	n.prev = nil
	n.next = nil
	l.size--
}
