package cron

import (
	"context"
	"time"
)

// Job is one scheduled task run by the worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Entry pairs a job with its cadence and lock.
type Entry struct {
	Job      Job
	Interval time.Duration
	Lock     Lock
}

// Registry tracks the scheduled jobs in registration order.
type Registry struct {
	entries []Entry
}

func NewRegistry(entries ...Entry) *Registry {
	registry := &Registry{}
	for _, entry := range entries {
		registry.Register(entry)
	}
	return registry
}

func (r *Registry) Register(entry Entry) {
	if entry.Job == nil {
		return
	}
	r.entries = append(r.entries, entry)
}

func (r *Registry) Entries() []Entry {
	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	return entries
}
