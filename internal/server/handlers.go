package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/threadart/pkg/buildinfo"
	"github.com/matzehuels/threadart/pkg/config"
	"github.com/matzehuels/threadart/pkg/core/compute"
	"github.com/matzehuels/threadart/pkg/errors"
	"github.com/matzehuels/threadart/pkg/pipeline"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to disk.
const multipartMemory = 8 << 20

// threadRequest is the "options" form field of POST /v1/threads. Omitted
// fields keep the server's configured defaults.
type threadRequest struct {
	Params  config.Parameters `json:"params"`
	Display config.Display    `json:"display"`
	Formats []string          `json:"formats"`
	PNGSize int               `json:"png_size"`
	Refresh bool              `json:"refresh"`
}

type threadResponse struct {
	ID         string             `json:"id"`
	Created    time.Time          `json:"created"`
	ImageHash  string             `json:"image_hash"`
	ThreadHash string             `json:"thread_hash"`
	Mode       string             `json:"mode"`
	Shape      string             `json:"shape"`
	Indicators compute.Indicators `json:"indicators"`
	Cached     bool               `json:"cached"`
	ComputeMS  int64              `json:"compute_ms"`
	Links      map[string]string  `json:"links"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"date":    buildinfo.Date,
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "upload exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse multipart form"), 0)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	opts, err := s.parseOptions(r.FormValue("options"))
	if err != nil {
		s.writeError(w, err, 0)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "missing image field"), 0)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read image"), 0)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Server.ComputeTimeout)
	defer cancel()
	res, err := s.runner.Execute(ctx, data, header.Filename, opts)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			err = errors.Wrap(errors.ErrCodeTimeout, err, "computation exceeded %s", s.cfg.Server.ComputeTimeout)
		}
		s.writeError(w, err, 0)
		return
	}

	e := &entry{id: uuid.NewString(), created: time.Now().UTC(), opts: opts, result: res}
	s.store.put(e)
	w.Header().Set("Location", "/v1/threads/"+e.id)
	writeJSON(w, http.StatusCreated, describe(e))
}

func (s *Server) parseOptions(raw string) (pipeline.Options, error) {
	req := threadRequest{Params: s.cfg.Thread, Display: s.cfg.Render}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			if errors.GetCode(err) != "" {
				return pipeline.Options{}, err
			}
			return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode options")
		}
	}
	opts := pipeline.Options{
		Params:  req.Params,
		Display: req.Display,
		Formats: req.Formats,
		PNGSize: req.PNGSize,
		Refresh: req.Refresh,
		Logger:  s.logger,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, describe(e))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.store.remove(id) {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "thread %s not found", id), 0)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleArtifact serves one output. Formats not requested at creation, or
// a PNG at another ?size, are rendered on demand.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, err, 0)
		return
	}

	size := e.opts.PNGSize
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid size %q", v), 0)
			return
		}
		size = n
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	data, cached := e.result.Artifacts[format]
	if !cached || (format == pipeline.FormatPNG && size != e.opts.PNGSize) {
		opts := pipeline.Options{
			Params:  e.opts.Params,
			Display: e.opts.Display,
			Formats: []string{format},
			PNGSize: size,
			Logger:  s.logger,
		}
		artifacts, _, _, err := s.runner.RenderWithCacheInfo(r.Context(), e.result.Computer, opts)
		if err != nil {
			s.writeError(w, err, 0)
			return
		}
		data = artifacts[format]
		if format != pipeline.FormatPNG || size == e.opts.PNGSize {
			e.result.Artifacts[format] = data
		}
	}

	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("ETag", fmt.Sprintf("%q", e.result.ThreadHash))
	_, _ = w.Write(data)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*entry, bool) {
	id := chi.URLParam(r, "id")
	e, ok := s.store.get(id)
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "thread %s not found", id), 0)
	}
	return e, ok
}

func describe(e *entry) threadResponse {
	base := "/v1/threads/" + e.id
	links := map[string]string{"self": base}
	for format := range pipeline.ValidFormats {
		links[format] = base + "/" + format
	}
	doc := e.result.Document
	return threadResponse{
		ID:         e.id,
		Created:    e.created,
		ImageHash:  e.result.ImageHash,
		ThreadHash: e.result.ThreadHash,
		Mode:       doc.Mode.String(),
		Shape:      doc.Shape.String(),
		Indicators: doc.Indicators,
		Cached:     e.result.CacheInfo.ThreadHit,
		ComputeMS:  e.result.Stats.ComputeTime.Milliseconds(),
		Links:      links,
	}
}

// writeError writes err as JSON. A zero status derives it from the error
// code.
func (s *Server) writeError(w http.ResponseWriter, err error, status int) {
	if status == 0 {
		status = errors.HTTPStatus(err)
	}
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
