package selection

// hopBudget counts notifications delivered in one chain and enforces a
// maximum.
//
// Idempotence ends a well-formed chain after one round trip. The budget
// catches chains that never settle, for example two subscribers that keep
// flipping the value between them.
type hopBudget struct {
	max     int
	current int
}

func newHopBudget(max int) hopBudget {
	return hopBudget{max: max}
}

// check increments the hop counter and validates against the limit.
func (b *hopBudget) check(flow string) error {
	b.current++
	if b.current > b.max {
		return &HopsExceededError{
			Flow:  flow,
			Hops:  b.current,
			Limit: b.max,
		}
	}
	return nil
}

func (b *hopBudget) reset() {
	b.current = 0
}
