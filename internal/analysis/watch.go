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

package analysis

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/cloudwego/sheetcoder/lang/log"
)

// Watch calls onChange for every analysis file in dir that is created or
// written, until ctx is done. Removals are passed too, with op set.
func Watch(ctx context.Context, dir string, onChange func(op fsnotify.Op, file string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return errors.Wrapf(err, "watch %s", dir)
	}
	log.Debug("watching %s", dir)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !IsAnalysisFile(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				onChange(ev.Op, filepath.Clean(ev.Name))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error("watch %s: %v", dir, err)
		}
	}
}
