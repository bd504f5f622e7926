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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil, "", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig, *cfg)

	opts := cfg.TranspileOptions()
	assert.Equal(t, 100, opts.Optimizer.MaxIterations)
	assert.False(t, opts.Comments)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sheetcoder.yaml"), []byte(`
log_level: debug
optimizer:
  max_iterations: 7
transpile:
  comments: true
  function_name: from_file
server:
  addr: ":9000"
`), 0644))

	t.Run("file", func(t *testing.T) {
		cfg, err := Load(nil, "", dir)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 7, cfg.Optimizer.MaxIterations)
		assert.True(t, cfg.Transpile.Comments)
		assert.Equal(t, "from_file", cfg.Transpile.FunctionName)
		assert.Equal(t, ":9000", cfg.Server.Addr)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("SHEETCODER_OPTIMIZER_MAX_ITERATIONS", "12")
		cfg, err := Load(nil, "", dir)
		require.NoError(t, err)
		assert.Equal(t, 12, cfg.Optimizer.MaxIterations)
	})

	t.Run("flag over env", func(t *testing.T) {
		t.Setenv("SHEETCODER_TRANSPILE_FUNCTION_NAME", "from_env")
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		RegisterFlags(flags)
		require.NoError(t, flags.Parse([]string{"--function-name", "from_flag"}))

		cfg, err := Load(flags, "", dir)
		require.NoError(t, err)
		assert.Equal(t, "from_flag", cfg.Transpile.FunctionName)
		assert.Equal(t, 7, cfg.Optimizer.MaxIterations, "unset flags keep lower layers")
	})
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(nil, filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sheetcoder.yaml"), []byte("optimizer:\n  max_iterations: 0\n"), 0644))
	_, err = Load(nil, "", dir)
	assert.Error(t, err)

	t.Run("log level typo", func(t *testing.T) {
		t.Setenv("SHEETCODER_LOG_LEVEL", "debgu")
		_, err := Load(nil, "", t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"debgu"`)

		cfg := DefaultConfig
		cfg.LogLevel = "verbose"
		assert.Error(t, cfg.ApplyLogLevel())
	})
}
