// Package queue provides the process-wide list of staged commands shared by
// every workflow instance.
package queue

import "sync"

// node is one staged command in the singly-linked list.
type node struct {
	value string
	next  *node
}

// Queue is a thread-safe singly-linked list of staged commands.
//
// Push prepends at the head and Pop detaches the tail, so commands come back
// out in the order they were staged (oldest first). The zero value is an
// empty queue ready for use.
type Queue struct {
	mu   sync.Mutex
	head *node // nil iff the queue is empty
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{}
}

// Push stages item as the newest entry.
func (q *Queue) Push(item string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.head = &node{value: item, next: q.head}
}

// Pop removes and returns the oldest staged item.
// Returns "" and false if the queue is empty, leaving it untouched.
func (q *Queue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == nil {
		return "", false
	}
	if q.head.next == nil {
		value := q.head.value
		q.head = nil
		return value, true
	}

	// Walk to the second-to-last node and cut the tail off it.
	cur := q.head
	for cur.next.next != nil {
		cur = cur.next
	}
	value := cur.next.value
	cur.next = nil
	return value, true
}

// Len returns the number of staged items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for cur := q.head; cur != nil; cur = cur.next {
		n++
	}
	return n
}
