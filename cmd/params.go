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
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/cloudwego/sheetcoder/internal/service"
)

func newParamsCmd(o *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "params <analysis>",
		Short: "List the values that become function parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := o.open(cmd.Context(), args[0], false)
			if err != nil {
				return err
			}
			resp, err := svc.ParameterizableParams(cmd.Context(), service.ParamsReq{})
			if err != nil {
				return err
			}
			if len(resp.Params) == 0 {
				o.status(cmd.OutOrStdout(), infoStyle, "no parameterizable values")
				return nil
			}
			data := pterm.TableData{{"Name", "Type", "Subtype", "Value", "Required"}}
			for _, p := range resp.Params {
				data = append(data, []string{p.Name, string(p.Type), string(p.Subtype), p.InitialValue, strconv.FormatBool(p.Required)})
			}
			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), table)
			return err
		},
	}
	return c
}
