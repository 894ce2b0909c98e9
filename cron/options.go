package cron

import (
	"fmt"
	"time"
)

// Parser selects the cron expression grammar.
type Parser int

const (
	StandardParser Parser = iota
	SecondsParser
)

// Option configures a Spawner.
type Option func(*Spawner)

// WithLocation sets the timezone the schedule is evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(s *Spawner) {
		s.location = loc
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger Logger) Option {
	return func(s *Spawner) {
		s.logger = logger
	}
}

// WithErrorHandler sets a custom error handler for failed spawns.
func WithErrorHandler(handler func(error)) Option {
	return func(s *Spawner) {
		s.errorHandler = handler
	}
}

// WithParser selects the cron expression parser.
func WithParser(p Parser) Option {
	return func(s *Spawner) {
		s.parser = p
	}
}

// loggerAdapter adapts our Logger interface to robfig/cron's logger.
type loggerAdapter struct {
	logger Logger
}

func (l *loggerAdapter) Info(msg string, args ...interface{}) {
	l.logger.Info(msg, args...)
}

func (l *loggerAdapter) Error(err error, msg string, args ...interface{}) {
	if err != nil {
		l.logger.Error(fmt.Sprintf("%s: %v", fmt.Sprintf(msg, args...), err))
		return
	}
	l.logger.Error(msg, args...)
}

// errorHandlerAdapter adapts an error handler function to cron.Logger for
// panic recovery reporting.
type errorHandlerAdapter struct {
	handler func(error)
}

func (e *errorHandlerAdapter) Info(msg string, args ...interface{}) {}

func (e *errorHandlerAdapter) Error(err error, msg string, args ...interface{}) {
	if e.handler == nil {
		return
	}
	if err != nil {
		e.handler(err)
		return
	}
	e.handler(fmt.Errorf(msg, args...))
}
