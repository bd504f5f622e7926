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

// Package cmd implements the sheetcoder command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/cloudwego/sheetcoder/internal/analysis"
	"github.com/cloudwego/sheetcoder/internal/config"
	"github.com/cloudwego/sheetcoder/internal/pipeline"
	"github.com/cloudwego/sheetcoder/internal/pipeline/steps"
	"github.com/cloudwego/sheetcoder/internal/service"
)

// Version is overridden at link time.
var Version = "0.1.0"

type rootOptions struct {
	cfgFile string
	plain   bool
	cfg     *config.Config
}

// NewRootCmd builds the command tree. Every call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:   "sheetcoder",
		Short: "Turn recorded spreadsheet analyses into pandas code",
		Long: `sheetcoder replays a saved analysis, a list of spreadsheet steps with the
dataframes they start from, and emits the equivalent pandas program.
The same history can be served over HTTP or MCP for interactive editing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := config.Load(cmd.Flags(), o.cfgFile, cwd)
			if err != nil {
				return err
			}
			if err := cfg.ApplyLogLevel(); err != nil {
				return err
			}
			if o.plain {
				pterm.DisableStyling()
			}
			o.cfg = cfg
			return nil
		},
	}
	config.RegisterFlags(root.PersistentFlags())
	root.PersistentFlags().StringVarP(&o.cfgFile, "config", "c", "", "path to a sheetcoder.yaml or .json file")
	root.PersistentFlags().BoolVar(&o.plain, "plain", false, "disable colors and syntax highlighting")

	root.AddCommand(
		newTranspileCmd(o),
		newParamsCmd(o),
		newUpdateImportsCmd(o),
		newListCmd(o),
		newSchemaCmd(o),
		newServeCmd(o),
		newMCPCmd(o),
		newVersionCmd(o),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

// open replays the analysis at path. With skip set, steps broken by a later
// import update are marked skipped instead of rejecting the update.
func (o *rootOptions) open(ctx context.Context, path string, skip bool) (*analysis.Analysis, *service.Service, error) {
	fs := afs.New()
	registry := steps.NewRegistry(fs)
	opts := pipeline.Options{FS: fs, Transpile: o.cfg.TranspileOptions()}
	if skip {
		opts.Agent = &pipeline.SkipAgent{
			DefaultAgent: pipeline.DefaultAgent{MaxRetry: 1},
			Imports: func(typ pipeline.StepType) bool {
				p, err := registry.Get(typ)
				return err == nil && p.IsImport()
			},
		}
	}
	a, m, err := analysis.Open(ctx, fs, registry, path, opts)
	if err != nil {
		return nil, nil, err
	}
	svc := service.New(m, service.Options{
		FunctionName: o.cfg.Transpile.FunctionName,
		Validate:     o.cfg.Transpile.Validate,
	})
	return a, svc, nil
}
