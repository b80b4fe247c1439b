package events

// Batch accumulates events raised while a use case runs so they can be
// published together once the state change has been persisted.
type Batch struct {
	pending []DomainEvent
}

// Add appends events to the batch.
func (b *Batch) Add(evts ...DomainEvent) {
	b.pending = append(b.pending, evts...)
}

// Len returns the number of pending events.
func (b *Batch) Len() int { return len(b.pending) }

// Drain returns the pending events in insertion order and empties the batch.
func (b *Batch) Drain() []DomainEvent {
	out := b.pending
	b.pending = nil
	return out
}
