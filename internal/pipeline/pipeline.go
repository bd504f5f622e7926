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

	"github.com/pkg/errors"

	"github.com/cloudwego/sheetcoder/lang/log"
	"github.com/cloudwego/sheetcoder/lang/state"
)

// runStep executes step on prev, asking the Agent what to do on failure.
// Skipping is only honoured when allowSkip is set; a fresh step that fails is
// never recorded.
func (m *Manager) runStep(ctx context.Context, step *Step, prev *state.State, allowSkip bool) (*Step, error) {
	p, err := m.registry.Get(step.Type)
	if err != nil {
		return nil, err
	}
	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		attempt++
		post, exec, err := p.Execute(ctx, prev, step.Params)
		if err == nil {
			m.record(step, attempt, StepOK, nil)
			return step.withResult(prev, post, exec, false), nil
		}
		m.record(step, attempt, StepFailed, err)

		result := &StepResult{Status: StepFailed, Recoverable: Recoverable(err), Err: err}
		decision := m.opts.Agent.OnStepFailure(ctx, step, result, attempt)
		switch {
		case decision == DecisionRetry:
			continue
		case decision == DecisionSkip && allowSkip:
			log.Info("skipping step %s (%s): %v", step.ID, step.Type, err)
			m.record(step, attempt, StepSkipped, err)
			return step.withResult(prev, prev, nil, true), nil
		default:
			return nil, errors.Wrapf(err, "step %s (%s)", step.Type, step.ID)
		}
	}
}

// stepError is a replay failure at a history position.
type stepError struct {
	position int
	err      error
}

func (e *stepError) Error() string { return e.err.Error() }

func (e *stepError) Unwrap() error { return e.err }

// replayFrom re-executes m.steps[from:m.cursor] in place. On failure the
// history is left half replayed; callers restore a snapshot.
func (m *Manager) replayFrom(ctx context.Context, from int) error {
	for i := from; i < m.cursor; i++ {
		done, err := m.runStep(ctx, m.steps[i], m.stateAt(i), true)
		if err != nil {
			return &stepError{position: i, err: err}
		}
		m.steps[i] = done
	}
	return nil
}
