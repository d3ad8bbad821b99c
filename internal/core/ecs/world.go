package ecs

// World owns the entity pool, every registered component store and a
// deferred destruction queue flushed by CleanupSystem at the end of a frame.
type World struct {
	pool         *EntityPool
	stores       []Removable
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		destroyQueue: make([]EntityID, 0, 32),
	}
}

// Register adds a component store so destroyed entities are removed from it.
func (w *World) Register(store Removable) {
	w.stores = append(w.stores, store)
}

func (w *World) CreateEntity() EntityID { return w.pool.Create() }

func (w *World) Alive(id EntityID) bool { return w.pool.Alive(id) }

// Len returns the number of live entities, including ones queued for destruction.
func (w *World) Len() int { return w.pool.Len() }

// MarkForDestruction queues an entity for end-of-frame cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// Queued returns the number of entities waiting for FlushDestroyQueue.
func (w *World) Queued() int { return len(w.destroyQueue) }

// EachQueued visits the entities waiting for FlushDestroyQueue, so their
// external resources can be released first.
func (w *World) EachQueued(fn func(EntityID)) {
	for _, id := range w.destroyQueue {
		if w.pool.Alive(id) {
			fn(id)
		}
	}
}

// FlushDestroyQueue destroys all queued entities and clears their components.
func (w *World) FlushDestroyQueue() {
	for _, id := range w.destroyQueue {
		if !w.pool.Alive(id) {
			continue
		}
		for _, s := range w.stores {
			s.Remove(id)
		}
		w.pool.Destroy(id)
	}
	w.destroyQueue = w.destroyQueue[:0]
}
