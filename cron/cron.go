// Package cron applies motion actions on wall-clock schedules: a prototype
// action is cloned and registered with a world every time its cron
// expression fires. Registrations are handed to the world through
// Scheduler.Defer, so the tick thread stays the only mutator of world state.
package cron

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
	rcron "github.com/robfig/cron/v3"

	"github.com/goliatone/go-motion"
)

// Logger is the minimal logging contract this package needs.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Spawner wraps robfig/cron to clone-and-apply prototype actions on
// schedule.
type Spawner struct {
	mu           sync.Mutex
	cron         *rcron.Cron
	location     *time.Location
	parser       Parser
	logger       Logger
	errorHandler func(error)

	nextID  int64
	handles map[int64]*spawnHandle
}

// NewSpawner creates a spawner with the provided options.
func NewSpawner(opts ...Option) *Spawner {
	s := &Spawner{
		location: time.Local,
		parser:   StandardParser,
		handles:  make(map[int64]*spawnHandle),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.errorHandler == nil {
		s.errorHandler = func(err error) {
			if s.logger != nil {
				s.logger.Error("cron spawn error: %v", err)
			}
		}
	}
	s.cron = rcron.New(s.build()...)
	return s
}

// ScheduleApply registers a recurring spawn: on every firing of the cron
// expression the prototype is cloned and applied to the target on the
// world's next tick.
func (s *Spawner) ScheduleApply(expr string, world *motion.Scheduler, prototype *motion.Action, target motion.Target, applyOpts ...motion.ApplyOption) (Handle, error) {
	if expr == "" {
		return nil, errors.New("cron expression cannot be empty", errors.CategoryBadInput).
			WithTextCode("EMPTY_CRON_EXPRESSION")
	}
	if world == nil || prototype == nil {
		return nil, errors.New("world and prototype cannot be nil", errors.CategoryBadInput).
			WithTextCode("NIL_SPAWN_ARGUMENTS")
	}

	handle := s.newHandle()
	job := rcron.FuncJob(func() {
		if isTerminalStatus(handle.Status()) {
			return
		}
		handle.setStatus(SpawnStatusRunning, nil)
		world.Defer(func() {
			if _, err := world.Apply(prototype.Clone(), target, applyOpts...); err != nil {
				handle.setStatus(SpawnStatusFailed, err)
				s.errorHandler(err)
				return
			}
			if !isTerminalStatus(handle.Status()) {
				handle.setStatus(SpawnStatusIdle, nil)
			}
		})
	})

	entryID, err := s.cron.AddJob(expr, job)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to add cron job").
			WithTextCode("CRON_ADD_FAILED").
			WithMetadata(map[string]any{"expression": expr})
	}
	handle.entryID = int(entryID)
	s.storeHandle(handle)
	return handle, nil
}

// ScheduleApplyAfter spawns once after the delay.
func (s *Spawner) ScheduleApplyAfter(delay time.Duration, world *motion.Scheduler, prototype *motion.Action, target motion.Target, applyOpts ...motion.ApplyOption) (Handle, error) {
	if world == nil || prototype == nil {
		return nil, errors.New("world and prototype cannot be nil", errors.CategoryBadInput).
			WithTextCode("NIL_SPAWN_ARGUMENTS")
	}
	if delay < 0 {
		delay = 0
	}

	handle := s.newHandle()
	s.storeHandle(handle)

	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-handle.Done():
			return
		}

		if isTerminalStatus(handle.Status()) {
			return
		}
		handle.setStatus(SpawnStatusRunning, nil)
		world.Defer(func() {
			if _, err := world.Apply(prototype.Clone(), target, applyOpts...); err != nil {
				handle.setTerminal(SpawnStatusFailed, err)
				s.errorHandler(err)
				s.removeStoredHandle(handle.id)
				return
			}
			handle.setTerminal(SpawnStatusCompleted, nil)
			s.removeStoredHandle(handle.id)
		})
	}()

	return handle, nil
}

// Start begins executing scheduled spawns.
func (s *Spawner) Start(_ context.Context) error {
	s.cron.Start()
	return nil
}

// Stop halts the cron runner and marks live handles stopped.
func (s *Spawner) Stop(_ context.Context) error {
	s.cron.Stop()

	s.mu.Lock()
	handles := make([]*spawnHandle, 0, len(s.handles))
	for _, handle := range s.handles {
		handles = append(handles, handle)
	}
	s.handles = make(map[int64]*spawnHandle)
	s.mu.Unlock()

	for _, handle := range handles {
		if handle == nil {
			continue
		}
		if handle.entryID > 0 {
			s.cron.Remove(rcron.EntryID(handle.entryID))
		}
		if isTerminalStatus(handle.Status()) {
			continue
		}
		handle.setTerminal(SpawnStatusStopped, nil)
	}
	return nil
}

func (s *Spawner) removeHandle(id int64) {
	handle := s.removeStoredHandle(id)
	if handle == nil {
		return
	}
	if handle.entryID > 0 {
		s.cron.Remove(rcron.EntryID(handle.entryID))
	}
}

func (s *Spawner) removeStoredHandle(id int64) *spawnHandle {
	if s == nil || id == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	handle := s.handles[id]
	delete(s.handles, id)
	return handle
}

func (s *Spawner) storeHandle(handle *spawnHandle) {
	if handle == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handles[handle.id] = handle
}

func (s *Spawner) newHandle() *spawnHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return &spawnHandle{
		spawner: s,
		id:      s.nextID,
		status:  SpawnStatusScheduled,
		done:    make(chan struct{}),
	}
}

// build converts implementation-agnostic options to rcron options.
func (s *Spawner) build() []rcron.Option {
	opts := make([]rcron.Option, 0)

	if s.location != nil {
		opts = append(opts, rcron.WithLocation(s.location))
	}

	switch s.parser {
	case StandardParser:
		opts = append(opts, rcron.WithParser(rcron.NewParser(
			rcron.Minute|rcron.Hour|rcron.Dom|rcron.Month|rcron.Dow|rcron.Descriptor,
		)))
	case SecondsParser:
		opts = append(opts, rcron.WithParser(rcron.NewParser(
			rcron.Second|rcron.Minute|rcron.Hour|rcron.Dom|rcron.Month|rcron.Dow|rcron.Descriptor,
		)))
	}

	if s.errorHandler != nil {
		opts = append(opts, rcron.WithChain(
			rcron.Recover(&errorHandlerAdapter{handler: s.errorHandler}),
		))
	}

	if s.logger != nil {
		opts = append(opts, rcron.WithLogger(&loggerAdapter{logger: s.logger}))
	}

	return opts
}
