package ecs

// Removable is implemented by all component stores so the World can drop an
// entity's data from every store when it is destroyed.
type Removable interface {
	Remove(id EntityID)
}

// Store is a sparse-set component store. Iteration follows insertion order
// until a removal swaps the last element into the freed position.
type Store[T any] struct {
	ids   []EntityID
	items []*T
	index map[EntityID]int
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{index: make(map[EntityID]int, 32)}
}

func (s *Store[T]) Set(id EntityID, c *T) {
	if i, ok := s.index[id]; ok {
		s.items[i] = c
		return
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
	s.items = append(s.items, c)
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.items[i], true
}

func (s *Store[T]) Remove(id EntityID) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	last := len(s.ids) - 1
	s.ids[i], s.items[i] = s.ids[last], s.items[last]
	s.index[s.ids[i]] = i
	s.ids, s.items = s.ids[:last], s.items[:last]
	delete(s.index, id)
}

func (s *Store[T]) Len() int { return len(s.ids) }

func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for i, id := range s.ids {
		fn(id, s.items[i])
	}
}
