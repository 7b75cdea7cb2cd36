package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	ErrArtifactNotFound = errors.New("file not found")
	ErrTaskNotFound     = errors.New("task not found")
)

// TransitionError is returned when a stage change would move a task backwards
// or out of a terminal stage.
type TransitionError struct {
	TaskID string
	From   Stage
	To     Stage
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("task %s: invalid transition %s -> %s", e.TaskID, e.From, e.To)
}

type entry struct {
	mu sync.Mutex
	a  Artifact
}

// Registry is the in-memory store of artifacts, indexed by file id and task id.
// Entries are never evicted.
type Registry struct {
	mu        sync.RWMutex
	artifacts map[string]*entry
	tasks     map[string]string

	now func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		artifacts: map[string]*entry{},
		tasks:     map[string]string{},
		now:       time.Now,
	}
}

func (r *Registry) add(a Artifact) Artifact {
	now := r.now()
	a.CreatedAt, a.UpdatedAt = now, now
	if a.Stage == "" {
		a.Stage = StageReceived
	}
	e := &entry{a: a}
	r.mu.Lock()
	r.artifacts[a.FileID] = e
	r.tasks[a.TaskID] = a.FileID
	r.mu.Unlock()
	return a.clone()
}

func (r *Registry) lookup(fileID string) (*entry, bool) {
	r.mu.RLock()
	e, ok := r.artifacts[fileID]
	r.mu.RUnlock()
	return e, ok
}

func (r *Registry) Artifact(fileID string) (Artifact, error) {
	e, ok := r.lookup(fileID)
	if !ok {
		return Artifact{}, ErrArtifactNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.a.clone(), nil
}

func (r *Registry) Task(taskID string) (Artifact, error) {
	r.mu.RLock()
	fileID, ok := r.tasks[taskID]
	r.mu.RUnlock()
	if !ok {
		return Artifact{}, ErrTaskNotFound
	}
	return r.Artifact(fileID)
}

// List returns every artifact, oldest first.
func (r *Registry) List() []Artifact {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.artifacts))
	for _, e := range r.artifacts {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make([]Artifact, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.a.clone())
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].TaskID < out[j].TaskID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.artifacts)
}

// advance moves the artifact to stage `to` and applies mutate under the entry
// lock, so readers see either the old or the new state in full.
func (r *Registry) advance(fileID string, to Stage, mutate func(*Artifact)) (Artifact, error) {
	e, ok := r.lookup(fileID)
	if !ok {
		return Artifact{}, ErrArtifactNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !canAdvance(e.a.Stage, to) {
		return e.a.clone(), &TransitionError{TaskID: e.a.TaskID, From: e.a.Stage, To: to}
	}
	e.a.Stage = to
	if mutate != nil {
		mutate(&e.a)
	}
	e.a.UpdatedAt = r.now()
	return e.a.clone(), nil
}

// update mutates the artifact without a stage change.
func (r *Registry) update(fileID string, mutate func(*Artifact)) (Artifact, error) {
	e, ok := r.lookup(fileID)
	if !ok {
		return Artifact{}, ErrArtifactNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	mutate(&e.a)
	e.a.UpdatedAt = r.now()
	return e.a.clone(), nil
}
