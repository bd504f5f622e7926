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

package log

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Run("known", func(t *testing.T) {
		for in, want := range map[string]Level{"debug": DebugLevel, "info": InfoLevel, "ERROR": ErrorLevel} {
			lv, err := ParseLevel(in)
			require.NoError(t, err, in)
			assert.Equal(t, want, lv)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := ParseLevel("debgu")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "debgu")

		_, err = ParseLevel("")
		assert.Error(t, err)
	})
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetLogLevel(InfoLevel)

	SetLogLevel(ErrorLevel)
	Info("hidden")
	assert.Empty(t, buf.String())

	SetLogLevel(DebugLevel)
	Debug("shown %d", 1)
	assert.Contains(t, buf.String(), "shown 1")
}
