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

package state

import (
	"testing"

	"github.com/cloudwego/sheetcoder/lang/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_CopyOnWrite(t *testing.T) {
	df := frame.New([]string{"A"}, [][]interface{}{{1.0}})
	s0 := New()
	s1, idx := s0.WithDataframe(df, "df1", SourcePassed)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 0, s0.Len())
	assert.Equal(t, 1, s1.Len())

	s2, _ := s1.WithDataframe(df.Clone(), "df2", SourceDuplicated)
	s3, err := s2.WithoutDataframes([]int{0})
	require.NoError(t, err)
	assert.Equal(t, []string{"df2"}, s3.DfNames)
	assert.Equal(t, []string{"df1", "df2"}, s2.DfNames)

	_, err = s3.WithoutDataframes([]int{3})
	assert.Error(t, err)
}

func TestState_Hash(t *testing.T) {
	df := frame.New([]string{"A"}, [][]interface{}{{1.0}})
	a, _ := New().WithDataframe(df, "df1", SourcePassed)
	b, _ := New().WithDataframe(df.Clone(), "df1", SourcePassed)
	assert.Equal(t, a.Hash(), b.Hash())
	assert.True(t, a.DataframesEqual(b))

	changed, err := df.SetColumn("A", []interface{}{2.0})
	require.NoError(t, err)
	c, err := a.WithFrame(0, changed)
	require.NoError(t, err)
	assert.NotEqual(t, a.Hash(), c.Hash())
	assert.False(t, a.DataframesEqual(c))

	d, err := a.WithFormat(0, DataframeFormat{Headers: ColorFormat{BackgroundColor: "#fff"}})
	require.NoError(t, err)
	assert.NotEqual(t, a.Hash(), d.Hash())
}

func TestDataframeFormat_Validate(t *testing.T) {
	assert.NoError(t, DataframeFormat{Headers: ColorFormat{Color: "#ABCDEF", BackgroundColor: "#abc"}}.Validate())
	assert.Error(t, DataframeFormat{Headers: ColorFormat{Color: "red"}}.Validate())
	assert.Error(t, DataframeFormat{Rows: RowFormat{Odd: ColorFormat{BackgroundColor: "#12345"}}}.Validate())
	assert.True(t, DataframeFormat{}.IsZero())
}
