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

	"github.com/spf13/cobra"

	"github.com/cloudwego/sheetcoder/internal/service"
)

func newTranspileCmd(o *rootOptions) *cobra.Command {
	var (
		asFunction bool
		cursor     int
	)
	c := &cobra.Command{
		Use:   "transpile <analysis>",
		Short: "Print the pandas code of a saved analysis",
		Long: `Replays the analysis and prints the optimized pandas code of its steps.
With --function the code is wrapped in a function whose parameters are the
dataframes and file names it reads.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := o.open(cmd.Context(), args[0], false)
			if err != nil {
				return err
			}
			req := service.TranspileReq{AsFunction: asFunction}
			if cmd.Flags().Changed("cursor") {
				req.Cursor = &cursor
			}
			resp, err := svc.Transpile(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := o.printCode(cmd.OutOrStdout(), resp.Code); err != nil {
				return err
			}
			stderr := cmd.ErrOrStderr()
			if resp.Unoptimized {
				o.status(stderr, warnStyle, "optimizer did not converge, code is unoptimized")
			}
			if v := resp.Validation; v != nil && !v.Ok {
				for _, e := range v.Errors {
					o.status(stderr, errorStyle, "%s", e.String())
				}
				return fmt.Errorf("generated code has %d syntax errors", len(v.Errors))
			}
			return nil
		},
	}
	c.Flags().BoolVar(&asFunction, "function", false, "wrap the code in a function")
	c.Flags().IntVar(&cursor, "cursor", 0, "number of steps to include; all applied steps by default")
	return c
}
