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

package cmd

import (
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

func (o *rootOptions) render(style lipgloss.Style, s string) string {
	if o.plain {
		return s
	}
	return style.Render(s)
}

func (o *rootOptions) status(w io.Writer, style lipgloss.Style, format string, args ...interface{}) {
	fmt.Fprintln(w, o.render(style, fmt.Sprintf(format, args...)))
}

// printCode writes Python source, highlighted unless plain output is asked for.
func (o *rootOptions) printCode(w io.Writer, code string) error {
	if !o.plain {
		if err := quick.Highlight(w, code, "python", "terminal256", "monokai"); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	}
	_, err := fmt.Fprintln(w, code)
	return err
}
