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

// Package api serves a step history over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/cloudwego/sheetcoder/internal/service"
	"github.com/cloudwego/sheetcoder/lang/chunk"
	"github.com/cloudwego/sheetcoder/lang/log"
)

type Server struct {
	router chi.Router
	svc    *service.Service
}

func NewServer(svc *service.Service) *Server {
	s := &Server{router: chi.NewRouter(), svc: svc}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug("%s %s took %v", r.Method, r.URL.Path, time.Since(start))
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/steps", s.handleHistory)
		r.Post("/steps", s.handleApply)
		r.Post("/undo", s.handleUndo)
		r.Post("/redo", s.handleRedo)
		r.Get("/code", s.handleCode)
		r.Get("/params", s.handleParams)
		r.Post("/imports/test", s.handleImports(true))
		r.Post("/imports/update", s.handleImports(false))
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.History(r.Context()))
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req service.ApplyStepReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := s.svc.ApplyStep(r.Context(), req)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Undo(r.Context()))
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Redo(r.Context()))
}

// handleCode accepts ?cursor=N and ?function=true.
func (s *Server) handleCode(w http.ResponseWriter, r *http.Request) {
	cursor, err := cursorParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	asFunction, _ := strconv.ParseBool(r.URL.Query().Get("function"))
	resp, err := s.svc.Transpile(r.Context(), service.TranspileReq{Cursor: cursor, AsFunction: asFunction})
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	cursor, err := cursorParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := s.svc.ParameterizableParams(r.Context(), service.ParamsReq{Cursor: cursor})
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleImports(dryRun bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req service.ImportsReq
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		req.DryRun = dryRun
		resp, err := s.svc.UpdateImports(r.Context(), req)
		if err != nil {
			writeError(w, statusOf(err), err)
			return
		}
		status := http.StatusOK
		if !resp.OK && !dryRun {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, resp)
	}
}

func cursorParam(r *http.Request) (*int, error) {
	raw := r.URL.Query().Get("cursor")
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, errors.Errorf("invalid cursor %q", raw)
	}
	return &n, nil
}

func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode request")
	}
	return nil
}

// statusOf maps configuration errors to 400 and step failures to 422.
func statusOf(err error) int {
	var cfg *chunk.ConfigError
	if errors.As(err, &cfg) {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.Error("request failed: %v", err)
	} else {
		log.Info("request failed with %d: %v", status, err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
