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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/sheetcoder/lang/chunk"
	"github.com/cloudwego/sheetcoder/lang/frame"
	"github.com/cloudwego/sheetcoder/lang/state"
)

// flakyStep appends one dataframe, failing the first failures runs.
type flakyStep struct {
	typ         StepType
	failures    int
	recoverable bool
	calls       int
}

func (s *flakyStep) Type() StepType { return s.typ }

func (s *flakyStep) IsImport() bool { return false }

func (s *flakyStep) Execute(ctx context.Context, prev *state.State, params Params) (*state.State, ExecData, error) {
	s.calls++
	if s.calls <= s.failures {
		err := errors.Errorf("attempt %d failed", s.calls)
		if s.recoverable {
			return nil, nil, &RecoverableError{Err: err}
		}
		return nil, nil, err
	}
	post, _ := prev.WithDataframe(frame.New([]string{"A"}, nil), "df", state.SourceImported)
	return post, nil, nil
}

func (s *flakyStep) Transpile(prev, post *state.State, params Params, exec ExecData) ([]chunk.CodeChunk, error) {
	return nil, nil
}

func newTestManager(t *testing.T, agent Agent, performers ...StepPerformer) *Manager {
	m, err := NewManager(context.Background(), NewRegistry(performers...), nil, Options{Agent: agent})
	require.NoError(t, err)
	return m
}

func TestDefaultAgent_OnStepFailure(t *testing.T) {
	ctx := context.Background()
	agent := &DefaultAgent{MaxRetry: 2}

	t.Run("abort when not recoverable", func(t *testing.T) {
		assert.Equal(t, DecisionAbort, agent.OnStepFailure(ctx, nil, &StepResult{Recoverable: false}, 1))
	})
	t.Run("retry when recoverable and under max", func(t *testing.T) {
		assert.Equal(t, DecisionRetry, agent.OnStepFailure(ctx, nil, &StepResult{Recoverable: true}, 1))
	})
	t.Run("abort when recoverable and at max", func(t *testing.T) {
		assert.Equal(t, DecisionAbort, agent.OnStepFailure(ctx, nil, &StepResult{Recoverable: true}, 2))
	})
	t.Run("nil result", func(t *testing.T) {
		assert.Equal(t, DecisionAbort, agent.OnStepFailure(ctx, nil, nil, 1))
	})
}

func TestSkipAgent_OnStepFailure(t *testing.T) {
	ctx := context.Background()
	agent := &SkipAgent{
		DefaultAgent: DefaultAgent{MaxRetry: 2},
		Imports:      func(t StepType) bool { return t == "import" },
	}
	failed := &StepResult{Status: StepFailed}

	assert.Equal(t, DecisionSkip, agent.OnStepFailure(ctx, &Step{Type: "edit"}, failed, 1))
	assert.Equal(t, DecisionAbort, agent.OnStepFailure(ctx, &Step{Type: "import"}, failed, 1))
	assert.Equal(t, DecisionRetry, agent.OnStepFailure(ctx, &Step{Type: "edit"}, &StepResult{Recoverable: true}, 1))
}

func TestRunStep(t *testing.T) {
	ctx := context.Background()

	t.Run("retries recoverable failures", func(t *testing.T) {
		s := &flakyStep{typ: "flaky", failures: 2, recoverable: true}
		m := newTestManager(t, &DefaultAgent{MaxRetry: 3}, s)
		done, err := m.runStep(ctx, &Step{ID: "a", Type: "flaky"}, state.New(), false)
		require.NoError(t, err)
		assert.Equal(t, 3, s.calls)
		assert.Equal(t, 1, done.Post.Len())

		recs := m.Records()
		require.Len(t, recs, 3)
		assert.Equal(t, StepFailed, recs[0].Status)
		assert.Equal(t, StepOK, recs[2].Status)
		assert.Equal(t, 3, recs[2].Attempt)
	})

	t.Run("gives up after max retry", func(t *testing.T) {
		s := &flakyStep{typ: "flaky", failures: 5, recoverable: true}
		m := newTestManager(t, &DefaultAgent{MaxRetry: 2}, s)
		_, err := m.runStep(ctx, &Step{ID: "a", Type: "flaky"}, state.New(), false)
		require.Error(t, err)
		assert.Equal(t, 2, s.calls)
		assert.True(t, Recoverable(err))
	})

	t.Run("skip only when allowed", func(t *testing.T) {
		agent := &SkipAgent{DefaultAgent: DefaultAgent{MaxRetry: 1}}
		m := newTestManager(t, agent, &flakyStep{typ: "flaky", failures: 5})
		prev := state.New()

		_, err := m.runStep(ctx, &Step{ID: "a", Type: "flaky"}, prev, false)
		assert.Error(t, err)

		done, err := m.runStep(ctx, &Step{ID: "a", Type: "flaky"}, prev, true)
		require.NoError(t, err)
		assert.True(t, done.Skipped)
		assert.Same(t, prev, done.Post)
		assert.Equal(t, StepSkipped, m.Records()[len(m.Records())-1].Status)
	})

	t.Run("cancelled context", func(t *testing.T) {
		m := newTestManager(t, nil, &flakyStep{typ: "flaky"})
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := m.runStep(cctx, &Step{ID: "a", Type: "flaky"}, state.New(), false)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("unknown type", func(t *testing.T) {
		m := newTestManager(t, nil)
		_, err := m.runStep(ctx, &Step{ID: "a", Type: "nope"}, state.New(), false)
		assert.Error(t, err)
	})
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(&flakyStep{typ: "b"}, &flakyStep{typ: "a"})
	assert.Equal(t, []StepType{"a", "b"}, r.Types())
	replacement := &flakyStep{typ: "a", failures: 1}
	r.Register(replacement)
	p, err := r.Get("a")
	require.NoError(t, err)
	assert.Same(t, replacement, p)
	_, err = r.Get("c")
	assert.Error(t, err)
}

func TestSnapshotFingerprint(t *testing.T) {
	one, _ := state.New().WithDataframe(frame.New([]string{"A"}, [][]interface{}{{1.0}}), "df", state.SourcePassed)
	two, _ := state.New().WithDataframe(frame.New([]string{"A"}, [][]interface{}{{2.0}}), "df", state.SourcePassed)
	steps := []*Step{{ID: "x", Post: one}}

	snap := NewSnapshot("apply", steps, 1)
	assert.Equal(t, fingerprint(steps, ""), snap.Hash)
	assert.NotSame(t, &steps[0], &snap.Steps[0])

	assert.NotEqual(t, snap.Hash, fingerprint([]*Step{{ID: "x", Post: two}}, ""))
	assert.NotEqual(t, snap.Hash, fingerprint([]*Step{{ID: "y", Post: one}}, ""))
	assert.NotEqual(t, snap.Hash, fingerprint([]*Step{{ID: "x", Post: one, Skipped: true}}, ""))
	assert.NotEqual(t, snap.Hash, fingerprint(steps, "salt"))
	assert.Equal(t, fingerprint(nil, ""), NewSnapshot("apply", steps, 0).Hash)
}

func TestImportUpdateError(t *testing.T) {
	err := &ImportUpdateError{Errors: map[int]string{3: "bad sheet", 0: "missing"}}
	assert.Equal(t, "update imports failed: 0: missing; 3: bad sheet", err.Error())
}

func TestParamsDecode(t *testing.T) {
	var v struct {
		Locations map[int]string `json:"locations"`
		Flag      *bool          `json:"flag"`
	}
	p := Params{"locations": map[string]interface{}{"1": "a.csv"}}
	require.NoError(t, p.Decode(&v))
	assert.Equal(t, map[int]string{1: "a.csv"}, v.Locations)
	assert.Nil(t, v.Flag)

	back, err := EncodeParams(v)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"1": "a.csv"}, back["locations"])
}
