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

package mcp

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cloudwego/sheetcoder/internal/service"
	"github.com/cloudwego/sheetcoder/lang/log"
	"github.com/cloudwego/sheetcoder/llm/tool"
)

type ServerOptions struct {
	ServerName    string
	ServerVersion string
	Service       *service.Service
}

type Server struct {
	Server *server.MCPServer
}

func NewServer(opts ServerOptions) (*Server, error) {
	tools, err := tool.NewSheetTools(opts.Service)
	if err != nil {
		return nil, err
	}
	s := server.NewMCPServer(opts.ServerName, opts.ServerVersion,
		server.WithToolCapabilities(false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
	)
	registered := getSheetTools(tools)
	s.AddTools(registered...)
	s.AddPrompt(mcp.NewPrompt("sheetcoder_usage",
		mcp.WithPromptDescription("how to drive a recorded spreadsheet analysis"),
	), handleUsagePrompt)
	log.Debug("mcp server %s registered %d tools", opts.ServerName, len(registered))
	return &Server{Server: s}, nil
}

// ServeStdio blocks serving requests on stdin and stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return server.NewStdioServer(s.Server).Listen(ctx, os.Stdin, os.Stdout)
}
