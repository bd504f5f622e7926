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

// Package analysis reads and writes saved analyses: the entry-point arguments
// and the recorded steps of a session, stored as YAML or JSON.
package analysis

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/cloudwego/sheetcoder/internal/pipeline"
	"github.com/cloudwego/sheetcoder/lang/chunk"
	"github.com/cloudwego/sheetcoder/lang/frame"
	"github.com/cloudwego/sheetcoder/lang/log"
)

// Analysis is a replayable session.
type Analysis struct {
	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
	Args  []Arg  `yaml:"args,omitempty" json:"args,omitempty"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// Arg is an entry-point argument. A quoted Raw is a CSV path read at replay;
// an identifier names a dataframe whose contents are read from Path.
type Arg struct {
	Raw  string `yaml:"raw" json:"raw" jsonschema:"description=dataframe identifier or quoted CSV path"`
	Path string `yaml:"path,omitempty" json:"path,omitempty" jsonschema:"description=CSV holding the dataframe passed as Raw"`
}

type Step struct {
	Type   pipeline.StepType `yaml:"type" json:"type"`
	Params pipeline.Params   `yaml:"params,omitempty" json:"params,omitempty"`
}

// Load reads an analysis through fs.
func Load(ctx context.Context, fs afs.Service, location string) (*Analysis, error) {
	data, err := frame.Load(ctx, fs, location)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML or JSON.
func Parse(data []byte) (*Analysis, error) {
	var a Analysis
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&a); err != nil {
		return nil, errors.Wrap(err, "decode analysis")
	}
	for i := range a.Steps {
		if a.Steps[i].Type == "" {
			return nil, errors.Errorf("step %d has no type", i)
		}
		a.Steps[i].Params = normalize(a.Steps[i].Params).(map[string]interface{})
	}
	return &a, nil
}

// normalize turns the map[interface{}]interface{} yaml produces for
// non-string keys, such as sheet indexes, into string keyed maps.
func normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case pipeline.Params:
		return normalize(map[string]interface{}(x))
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, e := range x {
			out[k] = normalize(e)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}

// Save writes a as YAML through fs.
func Save(ctx context.Context, fs afs.Service, location string, a *Analysis) error {
	data, err := yaml.Marshal(a)
	if err != nil {
		return errors.Wrap(err, "encode analysis")
	}
	return frame.Store(ctx, fs, location, data)
}

// Arguments loads the dataframes passed by identifier. Relative paths are
// resolved against baseDir.
func (a *Analysis) Arguments(ctx context.Context, fs afs.Service, baseDir string) ([]pipeline.Argument, error) {
	out := make([]pipeline.Argument, 0, len(a.Args))
	for i, arg := range a.Args {
		if chunk.IsStringLiteral(arg.Raw) {
			out = append(out, pipeline.Argument{Raw: arg.Raw})
			continue
		}
		if arg.Path == "" {
			return nil, errors.Errorf("argument %d (%s) has no path", i, arg.Raw)
		}
		data, err := frame.Load(ctx, fs, resolve(baseDir, arg.Path))
		if err != nil {
			return nil, errors.Wrapf(err, "argument %s", arg.Raw)
		}
		df, err := frame.ReadCSV(data, ",")
		if err != nil {
			return nil, errors.Wrapf(err, "argument %s", arg.Raw)
		}
		out = append(out, pipeline.Argument{Raw: arg.Raw, Frame: df})
	}
	return out, nil
}

func resolve(baseDir, path string) string {
	if baseDir == "" || strings.Contains(path, "://") || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// Replay builds a manager from the arguments and applies every step in order.
// The first failing step stops the replay.
func (a *Analysis) Replay(ctx context.Context, registry *pipeline.Registry, args []pipeline.Argument, opts pipeline.Options) (*pipeline.Manager, error) {
	m, err := pipeline.NewManager(ctx, registry, args, opts)
	if err != nil {
		return nil, err
	}
	for i, s := range a.Steps {
		if _, err := m.Apply(ctx, s.Type, s.Params); err != nil {
			return nil, errors.Wrapf(err, "replay step %d", i)
		}
	}
	log.Debug("replayed %d steps of %q", len(a.Steps), a.Name)
	return m, nil
}

// Open loads the analysis at path with its arguments and replays it. Paths
// inside the file are relative to its directory.
func Open(ctx context.Context, fs afs.Service, registry *pipeline.Registry, path string, opts pipeline.Options) (*Analysis, *pipeline.Manager, error) {
	a, err := Load(ctx, fs, path)
	if err != nil {
		return nil, nil, err
	}
	args, err := a.Arguments(ctx, fs, filepath.Dir(path))
	if err != nil {
		return nil, nil, err
	}
	m, err := a.Replay(ctx, registry, args, opts)
	if err != nil {
		return nil, nil, err
	}
	return a, m, nil
}

// Record captures the applied steps of m.
func Record(name string, args []Arg, m *pipeline.Manager) *Analysis {
	a := &Analysis{Name: name, Args: args}
	steps := m.Steps()
	for _, s := range steps[:m.Cursor()] {
		a.Steps = append(a.Steps, Step{Type: s.Type, Params: s.Params})
	}
	return a
}

// IsAnalysisFile reports whether name has an extension Load understands.
func IsAnalysisFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// List returns the analysis files in dir, sorted by name.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", dir)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && IsAnalysisFile(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

// ParseReplacements decodes a YAML or JSON list of import replacements.
func ParseReplacements(data []byte) ([]pipeline.ImportReplacement, error) {
	var reps []pipeline.ImportReplacement
	if err := yaml.Unmarshal(data, &reps); err != nil {
		return nil, errors.Wrap(err, "decode replacements")
	}
	for i := range reps {
		reps[i].Params = normalize(reps[i].Params).(map[string]interface{})
	}
	return reps, nil
}
