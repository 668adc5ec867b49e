package util

// Stack is a LIFO of values
type Stack[A any] struct {
	items []A
}

func (s *Stack[A]) Push(v A) {
	s.items = append(s.items, v)
}

func (s *Stack[A]) Pop() (ret A, ok bool) {
	if len(s.items) == 0 {
		return ret, false
	}
	last := len(s.items) - 1
	ret = s.items[last]
	s.items = s.items[:last]
	return ret, true
}

func (s *Stack[A]) Len() int { return len(s.items) }

// Items are the stacked values, bottom first. The slice is only valid until
// the next Push or Pop.
func (s *Stack[A]) Items() []A { return s.items }
