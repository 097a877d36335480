package transform

// BatchSize is how many rows one reveal shows.
const BatchSize = 3

// RevealState is the state of a Cursor.
type RevealState int

const (
	Empty RevealState = iota
	Revealing
	Exhausted
)

func (s RevealState) String() string {
	switch s {
	case Empty:
		return "empty"
	case Revealing:
		return "revealing"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Cursor is the reveal state of one list view. It is a value: Reveal and
// Reset return a new Cursor and never modify the receiver.
type Cursor[T any] struct {
	Offset    int
	Shown     []T
	Remaining int
	Exhausted bool
}

// State derives the state machine position from the cursor fields.
func (c Cursor[T]) State() RevealState {
	switch {
	case c.Exhausted:
		return Exhausted
	case c.Offset == 0 && len(c.Shown) == 0:
		return Empty
	default:
		return Revealing
	}
}

// Reveal shows the next batch of rows starting at the cursor offset.
//
// The offset always advances by BatchSize, so a final partial batch exhausts
// the source. Once exhausted, Reveal is a no-op.
func (c Cursor[T]) Reveal(rows []T) Cursor[T] {
	if c.Exhausted {
		return c
	}
	if c.Offset >= len(rows) {
		return Cursor[T]{Offset: c.Offset, Shown: c.Shown, Remaining: 0, Exhausted: true}
	}

	end := c.Offset + BatchSize
	if end > len(rows) {
		end = len(rows)
	}
	batch := make([]T, end-c.Offset)
	copy(batch, rows[c.Offset:end])

	next := c.Offset + BatchSize
	remaining := len(rows) - next
	if remaining < 0 {
		remaining = 0
	}
	return Cursor[T]{
		Offset:    next,
		Shown:     batch,
		Remaining: remaining,
		Exhausted: next >= len(rows),
	}
}

// Reset returns the initial, empty cursor.
func (c Cursor[T]) Reset() Cursor[T] {
	return Cursor[T]{}
}
