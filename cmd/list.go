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
	"path/filepath"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/cloudwego/sheetcoder/internal/analysis"
)

func newListCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [dir]",
		Short: "List the saved analyses in a directory",
		Long:  "Lists the analyses in dir, or in analysis_dir from the configuration.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := o.cfg.AnalysisDir
			if len(args) == 1 {
				dir = args[0]
			}
			files, err := analysis.List(dir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				o.status(cmd.OutOrStdout(), infoStyle, "no analyses in %s", dir)
				return nil
			}
			data := pterm.TableData{{"File", "Name", "Args", "Steps"}}
			for _, f := range files {
				a, err := analysis.Load(cmd.Context(), afs.New(), f)
				if err != nil {
					data = append(data, []string{filepath.Base(f), o.render(errorStyle, err.Error()), "", ""})
					continue
				}
				data = append(data, []string{filepath.Base(f), a.Name, strconv.Itoa(len(a.Args)), strconv.Itoa(len(a.Steps))})
			}
			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), table)
			return err
		},
	}
}
