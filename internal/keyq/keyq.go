// Package keyq tracks keys in insertion order for oldest-first eviction.
// Not safe for concurrent use; the owning cache serializes access.
package keyq

// Queue keeps each key at most once, in the order it was first pushed.
// The front of the queue is the oldest key.
type Queue struct {
	keys  []string
	index map[string]struct{}
}

func New() *Queue {
	return &Queue{index: make(map[string]struct{})}
}

// Push appends k unless it is already tracked.
func (q *Queue) Push(k string) {
	if _, ok := q.index[k]; ok {
		return
	}
	q.keys = append(q.keys, k)
	q.index[k] = struct{}{}
}

// PopOldest removes and returns the front key.
func (q *Queue) PopOldest() (string, bool) {
	if len(q.keys) == 0 {
		return "", false
	}
	k := q.keys[0]
	q.keys = q.keys[1:]
	delete(q.index, k)
	return k, true
}

// Remove drops k wherever it sits, preserving the order of the rest.
func (q *Queue) Remove(k string) {
	if _, ok := q.index[k]; !ok {
		return
	}
	delete(q.index, k)
	for i, v := range q.keys {
		if v == k {
			q.keys = append(q.keys[:i], q.keys[i+1:]...)
			break
		}
	}
}

func (q *Queue) Len() int { return len(q.keys) }

func (q *Queue) Reset() {
	q.keys = nil
	q.index = make(map[string]struct{})
}
