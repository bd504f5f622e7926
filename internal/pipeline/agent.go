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
)

// Agent decides what to do when a step fails while the history is replayed
// after an import update. It only schedules; it never edits steps.
type Agent interface {
	OnStepFailure(
		ctx context.Context,
		step *Step,
		result *StepResult,
		attempt int,
	) AgentDecision
}

// AgentDecision is the action to take after a step failure.
type AgentDecision string

const (
	DecisionRetry AgentDecision = "retry"
	// DecisionSkip keeps the step in the history but marks it skipped.
	DecisionSkip  AgentDecision = "skip"
	DecisionAbort AgentDecision = "abort"
)

// DefaultAgent retries recoverable failures up to MaxRetry attempts and
// aborts otherwise, which rejects the whole update.
type DefaultAgent struct {
	MaxRetry int
}

// OnStepFailure implements Agent.
func (a *DefaultAgent) OnStepFailure(
	ctx context.Context,
	step *Step,
	result *StepResult,
	attempt int,
) AgentDecision {
	if result != nil && result.Recoverable && attempt < a.MaxRetry {
		return DecisionRetry
	}
	return DecisionAbort
}

// SkipAgent behaves like DefaultAgent except that steps downstream of the
// replaced imports are skipped instead of aborting the update. Imports
// themselves always abort.
type SkipAgent struct {
	DefaultAgent
	Imports func(StepType) bool
}

// OnStepFailure implements Agent.
func (a *SkipAgent) OnStepFailure(
	ctx context.Context,
	step *Step,
	result *StepResult,
	attempt int,
) AgentDecision {
	d := a.DefaultAgent.OnStepFailure(ctx, step, result, attempt)
	if d != DecisionAbort || step == nil {
		return d
	}
	if a.Imports != nil && a.Imports(step.Type) {
		return DecisionAbort
	}
	return DecisionSkip
}
