package store

import "time"

// Listener receives change notifications. The training load model
// implements it and invalidates itself on every event.
type Listener interface {
	RideAdded(id int64)
	RideDeleted(id int64)
	RefreshUpdate(at time.Time)
	SeasonsChanged()
}

// Subscribe registers a listener and returns a function that removes it.
func (db *DB) Subscribe(l Listener) (unsubscribe func()) {
	db.mu.Lock()
	defer db.mu.Unlock()

	id := db.nextID
	db.nextID++
	db.listeners[id] = l

	return func() {
		db.mu.Lock()
		defer db.mu.Unlock()
		delete(db.listeners, id)
	}
}

// NotifyRefresh tells listeners that a bulk refresh (sync or import)
// has changed the ride history.
func (db *DB) NotifyRefresh() {
	now := time.Now()
	db.notify(func(l Listener) { l.RefreshUpdate(now) })
}

func (db *DB) notifyRideAdded(id int64) {
	db.notify(func(l Listener) { l.RideAdded(id) })
}

func (db *DB) notifyRideDeleted(id int64) {
	db.notify(func(l Listener) { l.RideDeleted(id) })
}

func (db *DB) notifySeasonsChanged() {
	db.notify(func(l Listener) { l.SeasonsChanged() })
}

// notify calls fn for each listener outside the lock, so listeners may
// query the store.
func (db *DB) notify(fn func(Listener)) {
	db.mu.Lock()
	listeners := make([]Listener, 0, len(db.listeners))
	for _, l := range db.listeners {
		listeners = append(listeners, l)
	}
	db.mu.Unlock()

	for _, l := range listeners {
		fn(l)
	}
}
