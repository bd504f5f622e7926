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

	"github.com/cloudwego/sheetcoder/internal/analysis"
	"github.com/cloudwego/sheetcoder/internal/pipeline"
)

func newSchemaCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [step-type]",
		Short: "Print the JSON schema of analysis files or of one step's params",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 1 {
				data, err = analysis.StepSchema(pipeline.StepType(args[0]))
			} else {
				data, err = analysis.Schema()
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
