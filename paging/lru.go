package paging

import "container/list"

type lruKey struct {
	pid  string
	page int
}

type lruEntry struct {
	key   lruKey
	frame int
	stamp uint64
}

// lruPolicy keeps the resident mappings ordered by last use, least recent
// at the front. Every hit or load moves the mapping to the back with a
// fresh stamp from a monotonic counter, so equal-looking uses still break
// ties by event order.
type lruPolicy struct {
	order *list.List
	index map[lruKey]*list.Element
	clock uint64
}

func newLRUPolicy() *lruPolicy {
	return &lruPolicy{
		order: list.New(),
		index: make(map[lruKey]*list.Element),
	}
}

func (p *lruPolicy) RecordLoad(pid string, page, frame int) {
	key := lruKey{pid: pid, page: page}
	if elem, ok := p.index[key]; ok {
		p.order.Remove(elem)
	}

	p.clock++
	p.index[key] = p.order.PushBack(lruEntry{
		key:   key,
		frame: frame,
		stamp: p.clock,
	})
}

func (p *lruPolicy) RecordHit(pid string, page int) {
	key := lruKey{pid: pid, page: page}
	elem, ok := p.index[key]
	if !ok {
		return
	}

	p.clock++
	entry := elem.Value.(lruEntry)
	entry.stamp = p.clock
	elem.Value = entry
	p.order.MoveToBack(elem)
}

func (p *lruPolicy) SelectVictim() (Victim, bool) {
	front := p.order.Front()
	if front == nil {
		return Victim{}, false
	}

	entry := front.Value.(lruEntry)
	p.order.Remove(front)
	delete(p.index, entry.key)

	return Victim{
		PID:   entry.key.pid,
		Page:  entry.key.page,
		Frame: entry.frame,
	}, true
}

func (p *lruPolicy) PurgeProcess(pid string) {
	for e := p.order.Front(); e != nil; {
		next := e.Next()
		entry := e.Value.(lruEntry)
		if entry.key.pid == pid {
			p.order.Remove(e)
			delete(p.index, entry.key)
		}
		e = next
	}
}
