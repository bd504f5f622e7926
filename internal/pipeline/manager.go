/**
 * Copyright 2025 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/viant/afs"

	"github.com/cloudwego/sheetcoder/lang/chunk"
	"github.com/cloudwego/sheetcoder/lang/log"
	"github.com/cloudwego/sheetcoder/lang/params"
	"github.com/cloudwego/sheetcoder/lang/state"
	"github.com/cloudwego/sheetcoder/lang/transpiler"
)

const maxCachedResults = 64

type Options struct {
	// FS reads string arguments; afs.New() when nil.
	FS afs.Service
	// Agent drives replays after an import update; DefaultAgent when nil.
	Agent     Agent
	Transpile transpiler.Options
}

// Manager owns a step history with a cursor. All methods are safe for
// concurrent use; each runs under one lock.
type Manager struct {
	mu       sync.Mutex
	registry *Registry
	opts     Options

	args       []Argument
	initial    *state.State
	argImports []argImport

	steps  []*Step
	cursor int
	undo   []*Snapshot
	redo   []*Snapshot

	records []StepRecord
	cache   map[uint64]*transpiler.Result
}

// NewManager builds the initial state from args. String literal arguments are
// read as CSV files.
func NewManager(ctx context.Context, registry *Registry, args []Argument, opts Options) (*Manager, error) {
	if opts.FS == nil {
		opts.FS = afs.New()
	}
	if opts.Agent == nil {
		opts.Agent = &DefaultAgent{MaxRetry: 1}
	}
	initial, imports, err := preprocessArgs(ctx, opts.FS, args)
	if err != nil {
		return nil, err
	}
	return &Manager{
		registry:   registry,
		opts:       opts,
		args:       append([]Argument(nil), args...),
		initial:    initial,
		argImports: imports,
		cache:      make(map[uint64]*transpiler.Result),
	}, nil
}

func (m *Manager) Registry() *Registry { return m.registry }

// Cursor is the number of steps currently applied.
func (m *Manager) Cursor() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor
}

// Len is the number of recorded steps, including undone ones.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.steps)
}

// Steps returns the recorded steps, including undone ones.
func (m *Manager) Steps() []*Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Step(nil), m.steps...)
}

// State returns the state after the applied steps.
func (m *Manager) State() *state.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateAt(m.cursor)
}

// Records returns the execution log.
func (m *Manager) Records() []StepRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]StepRecord(nil), m.records...)
}

func (m *Manager) stateAt(cursor int) *state.State {
	if cursor == 0 {
		return m.initial
	}
	return m.steps[cursor-1].Post
}

// resolve maps a negative cursor to the current one and checks the range.
func (m *Manager) resolve(cursor int) (int, error) {
	if cursor < 0 {
		return m.cursor, nil
	}
	if cursor > len(m.steps) {
		return 0, errors.Errorf("cursor %d out of range [0, %d]", cursor, len(m.steps))
	}
	return cursor, nil
}

// Apply executes a new step on the current state and appends it. Steps
// undone before the call are discarded.
func (m *Manager) Apply(ctx context.Context, t StepType, p Params) (*Step, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	step := &Step{ID: uuid.NewString(), Type: t, Params: p}
	done, err := m.runStep(ctx, step, m.stateAt(m.cursor), false)
	if err != nil {
		return nil, err
	}
	m.pushUndo(NewCursorSnapshot("apply", m.steps, m.cursor))
	m.steps = append(m.steps[:m.cursor:m.cursor], done)
	m.cursor++
	log.Debug("applied step %s (%s), cursor %d", done.ID, done.Type, m.cursor)
	return done, nil
}

// Undo reverts the last Apply or import update. An undone Apply stays in the
// history past the cursor until the next Apply. It reports false when there
// is nothing to undo.
func (m *Manager) Undo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.undo) == 0 {
		return false
	}
	last := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, m.capture("redo", last))
	m.restore(last)
	return true
}

// Redo re-applies the last undone change. It reports false, and changes
// nothing, when nothing was undone.
func (m *Manager) Redo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.redo) == 0 {
		return false
	}
	next := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = append(m.undo, m.capture("undo", next))
	m.restore(next)
	return true
}

// capture snapshots the current history in the same shape as s.
func (m *Manager) capture(kind string, s *Snapshot) *Snapshot {
	if s.CursorOnly {
		return NewCursorSnapshot(kind, m.steps, m.cursor)
	}
	return NewSnapshot(kind, m.steps, m.cursor)
}

func (m *Manager) pushUndo(s *Snapshot) {
	m.undo = append(m.undo, s)
	m.redo = nil
}

// restore puts the history back to a snapshot.
func (m *Manager) restore(s *Snapshot) {
	if !s.CursorOnly {
		m.steps = append([]*Step(nil), s.Steps...)
	}
	m.cursor = s.Cursor
}

// CodeChunks builds the unoptimized chunks of the first cursor steps. A
// negative cursor means the current one.
func (m *Manager) CodeChunks(cursor int) ([]chunk.CodeChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codeChunks(cursor)
}

func (m *Manager) codeChunks(cursor int) ([]chunk.CodeChunk, error) {
	cursor, err := m.resolve(cursor)
	if err != nil {
		return nil, err
	}
	var out []chunk.CodeChunk
	for _, imp := range m.argImports {
		out = append(out, imp.chunk())
	}
	for _, step := range m.steps[:cursor] {
		if step.Skipped {
			continue
		}
		p, err := m.registry.Get(step.Type)
		if err != nil {
			return nil, err
		}
		cs, err := p.Transpile(step.Prev, step.Post, step.Params, step.ExecData)
		if err != nil {
			return nil, errors.Wrapf(err, "transpile step %s (%s)", step.ID, step.Type)
		}
		out = append(out, cs...)
	}
	return out, nil
}

// Transpile optimizes and emits the first cursor steps. Results are cached by
// the identity and outcome of every step in the prefix.
func (m *Manager) Transpile(cursor int) (*transpiler.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transpile(cursor)
}

func (m *Manager) transpile(cursor int) (*transpiler.Result, error) {
	cursor, err := m.resolve(cursor)
	if err != nil {
		return nil, err
	}
	key := fingerprint(m.steps[:cursor], m.cacheSalt())
	if res, ok := m.cache[key]; ok {
		return res, nil
	}
	chunks, err := m.codeChunks(cursor)
	if err != nil {
		return nil, err
	}
	res, err := transpiler.Transpile(chunks, m.opts.Transpile)
	if err != nil {
		return nil, err
	}
	res.Final = m.stateAt(cursor)
	if len(m.cache) >= maxCachedResults {
		m.cache = make(map[uint64]*transpiler.Result)
	}
	m.cache[key] = res
	return res, nil
}

func (m *Manager) cacheSalt() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(rawArgs(m.args), ","))
	if m.opts.Transpile.Comments {
		sb.WriteString("|comments")
	}
	if m.opts.Transpile.NoOptimize {
		sb.WriteString("|raw")
	}
	sb.WriteString("|")
	return sb.String()
}

// ParameterizableParams describes the literals of the optimized code of the
// first cursor steps that can become function parameters.
func (m *Manager) ParameterizableParams(cursor int) ([]params.Descriptor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, err := m.transpile(cursor)
	if err != nil {
		return nil, err
	}
	return params.Parameterize(res.Chunks, rawArgs(m.args)), nil
}

// Function emits the first cursor steps as a function with every
// parameterizable literal lifted into a parameter.
func (m *Manager) Function(cursor int, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, err := m.transpile(cursor)
	if err != nil {
		return "", err
	}
	return transpiler.Function(res, name, params.Parameterize(res.Chunks, rawArgs(m.args)))
}

func (m *Manager) record(step *Step, attempt int, status StepStatus, err error) {
	rec := StepRecord{
		StepID:   step.ID,
		StepType: step.Type,
		Attempt:  attempt,
		Status:   status,
		Time:     time.Now(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	m.records = append(m.records, rec)
}
