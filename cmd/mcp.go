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
	"github.com/spf13/cobra"

	"github.com/cloudwego/sheetcoder/llm/mcp"
)

func newMCPCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp <analysis>",
		Short: "Serve the step history of an analysis as MCP tools on stdio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := o.open(cmd.Context(), args[0], false)
			if err != nil {
				return err
			}
			s, err := mcp.NewServer(mcp.ServerOptions{
				ServerName:    "sheetcoder",
				ServerVersion: Version,
				Service:       svc,
			})
			if err != nil {
				return err
			}
			return s.ServeStdio(cmd.Context())
		},
	}
}
