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
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/cloudwego/sheetcoder/internal/analysis"
	"github.com/cloudwego/sheetcoder/internal/service"
	"github.com/cloudwego/sheetcoder/lang/frame"
)

func newUpdateImportsCmd(o *rootOptions) *cobra.Command {
	var (
		dryRun bool
		skip   bool
		out    string
	)
	c := &cobra.Command{
		Use:   "update-imports <analysis> <replacements>",
		Short: "Swap the import steps of an analysis and replay the rest",
		Long: `Replaces import steps by history position and replays every later step on
the new data. The replacements file is a YAML or JSON list of
{position, type, params}. Nothing changes unless every replacement and the
replay succeed; with --skip-failing, steps broken by the new data are
skipped instead.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, svc, err := o.open(ctx, args[0], skip)
			if err != nil {
				return err
			}
			data, err := frame.Load(ctx, afs.New(), args[1])
			if err != nil {
				return err
			}
			reps, err := analysis.ParseReplacements(data)
			if err != nil {
				return err
			}

			var spinner *pterm.SpinnerPrinter
			if !o.plain {
				spinner, _ = pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgCyan)).Start("Replaying steps...")
			}
			resp, err := svc.UpdateImports(ctx, service.ImportsReq{Replacements: reps, DryRun: dryRun})
			if spinner != nil {
				_ = spinner.Stop()
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !resp.OK {
				positions := make([]int, 0, len(resp.Errors))
				for pos := range resp.Errors {
					positions = append(positions, pos)
				}
				sort.Ints(positions)
				for _, pos := range positions {
					o.status(w, errorStyle, "step %d: %s", pos, resp.Errors[pos])
				}
				return fmt.Errorf("import update rejected at %d positions", len(positions))
			}
			if dryRun {
				o.status(w, successStyle, "all %d replacements apply", len(reps))
				return nil
			}
			o.status(w, successStyle, "imports updated, %s", svc.Summary())
			if out == "" {
				return nil
			}
			rec := analysis.Record(a.Name, rebase(a.Args, filepath.Dir(args[0]), filepath.Dir(out)), svc.Manager())
			if err := analysis.Save(ctx, afs.New(), out, rec); err != nil {
				return err
			}
			o.status(w, infoStyle, "saved %s", out)
			return nil
		},
	}
	c.Flags().BoolVar(&dryRun, "dry-run", false, "only report which replacements would fail")
	c.Flags().BoolVar(&skip, "skip-failing", false, "skip steps that fail on the new data")
	c.Flags().StringVarP(&out, "out", "o", "", "save the updated analysis to this file")
	return c
}

// rebase rewrites relative argument paths so they resolve from a file saved
// in dir to instead of from.
func rebase(args []analysis.Arg, from, to string) []analysis.Arg {
	out := make([]analysis.Arg, len(args))
	for i, arg := range args {
		out[i] = arg
		if arg.Path == "" || filepath.IsAbs(arg.Path) {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(from, arg.Path))
		if err != nil {
			continue
		}
		toAbs, err := filepath.Abs(to)
		if err != nil {
			continue
		}
		if rel, err := filepath.Rel(toAbs, abs); err == nil {
			out[i].Path = rel
		}
	}
	return out
}
