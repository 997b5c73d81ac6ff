package paging

import "container/list"

// fifoPolicy evicts frames in the order their current mappings were loaded.
// The queue holds one entry per resident frame, oldest load at the front.
// Hits never reorder a FIFO queue.
type fifoPolicy struct {
	queue *list.List
}

func newFIFOPolicy() *fifoPolicy {
	return &fifoPolicy{
		queue: list.New(),
	}
}

func (p *fifoPolicy) RecordLoad(pid string, page, frame int) {
	p.queue.PushBack(Victim{PID: pid, Page: page, Frame: frame})
}

func (p *fifoPolicy) RecordHit(pid string, page int) {
	// FIFO ignores hits.
}

func (p *fifoPolicy) SelectVictim() (Victim, bool) {
	front := p.queue.Front()
	if front == nil {
		return Victim{}, false
	}

	p.queue.Remove(front)

	return front.Value.(Victim), true
}

func (p *fifoPolicy) PurgeProcess(pid string) {
	for e := p.queue.Front(); e != nil; {
		next := e.Next()
		if e.Value.(Victim).PID == pid {
			p.queue.Remove(e)
		}
		e = next
	}
}
