package cron

import "sync"

// SpawnStatus reports a spawn handle state.
type SpawnStatus string

const (
	SpawnStatusScheduled SpawnStatus = "scheduled"
	SpawnStatusRunning   SpawnStatus = "running"
	SpawnStatusIdle      SpawnStatus = "idle"
	SpawnStatusCompleted SpawnStatus = "completed"
	SpawnStatusCanceled  SpawnStatus = "canceled"
	SpawnStatusFailed    SpawnStatus = "failed"
	SpawnStatusStopped   SpawnStatus = "stopped"
)

// Handle controls one scheduled spawn.
type Handle interface {
	Cancel()
	Status() SpawnStatus
	Err() error
	Done() <-chan struct{}
	ID() int64
}

type spawnHandle struct {
	spawner *Spawner
	id      int64
	entryID int
	done    chan struct{}

	mu     sync.RWMutex
	status SpawnStatus
	err    error
	once   sync.Once
}

func (h *spawnHandle) Cancel() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		if h.spawner != nil {
			h.spawner.removeHandle(h.id)
		}
		h.setTerminal(SpawnStatusCanceled, nil)
	})
}

func (h *spawnHandle) Status() SpawnStatus {
	if h == nil {
		return SpawnStatusStopped
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

func (h *spawnHandle) Err() error {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

func (h *spawnHandle) Done() <-chan struct{} {
	if h == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return h.done
}

func (h *spawnHandle) ID() int64 {
	if h == nil {
		return 0
	}
	return h.id
}

func (h *spawnHandle) setStatus(status SpawnStatus, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = status
	h.err = err
}

func (h *spawnHandle) setTerminal(status SpawnStatus, err error) {
	h.setStatus(status, err)
	if h.done != nil {
		select {
		case <-h.done:
		default:
			close(h.done)
		}
	}
}

func isTerminalStatus(status SpawnStatus) bool {
	switch status {
	case SpawnStatusCompleted, SpawnStatusCanceled, SpawnStatusFailed, SpawnStatusStopped:
		return true
	default:
		return false
	}
}
