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
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/cloudwego/sheetcoder/internal/analysis"
	"github.com/cloudwego/sheetcoder/internal/api"
	"github.com/cloudwego/sheetcoder/lang/log"
)

func newServeCmd(o *rootOptions) *cobra.Command {
	var watch bool
	c := &cobra.Command{
		Use:   "serve <analysis>",
		Short: "Serve the step history of an analysis over HTTP",
		Long: `Replays the analysis and serves its history on the configured address.
With --watch the analysis is replayed again whenever the file changes, which
discards edits made through the API.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			path := filepath.Clean(args[0])
			_, svc, err := o.open(ctx, path, false)
			if err != nil {
				return err
			}
			var current atomic.Pointer[api.Server]
			current.Store(api.NewServer(svc))

			if watch {
				go o.watch(ctx, path, &current)
			}

			srv := &http.Server{
				Addr: o.cfg.Server.Addr,
				Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					current.Load().ServeHTTP(w, r)
				}),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()
			o.status(cmd.ErrOrStderr(), successStyle, "serving %s on http://%s", path, srv.Addr)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	c.Flags().BoolVarP(&watch, "watch", "w", false, "replay the analysis when the file changes")
	return c
}

// watch swaps in a freshly replayed server after each write to path. A replay
// that fails keeps the previous server.
func (o *rootOptions) watch(ctx context.Context, path string, current *atomic.Pointer[api.Server]) {
	abs, err := filepath.Abs(path)
	if err != nil {
		log.Error("watch %s: %v", path, err)
		return
	}
	err = analysis.Watch(ctx, filepath.Dir(abs), func(op fsnotify.Op, file string) {
		if file != abs || op&(fsnotify.Create|fsnotify.Write) == 0 {
			return
		}
		_, svc, err := o.open(ctx, abs, false)
		if err != nil {
			log.Error("reload %s: %v", path, err)
			return
		}
		current.Store(api.NewServer(svc))
		log.Info("reloaded %s: %s", path, svc.Summary())
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("watch %s: %v", path, err)
	}
}
