package session

// Subscribe registers fn to be called with the new Status after every
// committed state change. The returned func unsubscribes.
func (m *Manager) Subscribe(fn func(Status)) func() {
	m.subMu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subscribers, id)
		m.subMu.Unlock()
	}
}

// notify must be called without m.mu held
func (m *Manager) notify() {
	m.subMu.Lock()
	if len(m.subscribers) == 0 {
		m.subMu.Unlock()
		return
	}
	fns := make([]func(Status), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	status := m.Status()
	for _, fn := range fns {
		fn(status)
	}
}
