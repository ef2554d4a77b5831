package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"svc/internal/errors"
	"svc/internal/logging"
	"svc/internal/render"
	"svc/internal/repo"
	"svc/internal/service"

	"go.uber.org/zap"
)

type Handler struct {
	svc    *service.Service
	logger *logging.Logger
}

func NewHandler(svc *service.Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Wrap(nil)
	}
	return &Handler{svc: svc, logger: logger}
}

// Register adds every route to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("POST /api/files", h.AddFile)
	mux.HandleFunc("DELETE /api/files/{name...}", h.RemoveFile)
	mux.HandleFunc("GET /api/status", h.Status)

	mux.HandleFunc("POST /api/commits", h.Commit)
	mux.HandleFunc("GET /api/commits/{id}", h.GetCommit)
	mux.HandleFunc("GET /api/commits/{id}/history", h.History)
	mux.HandleFunc("GET /api/commits/{id}/render", h.RenderCommit)
	mux.HandleFunc("GET /api/log", h.Log)

	mux.HandleFunc("GET /api/branches", h.ListBranches)
	mux.HandleFunc("POST /api/branches", h.CreateBranch)
	mux.HandleFunc("POST /api/checkout", h.Checkout)
	mux.HandleFunc("POST /api/reset", h.Reset)
	mux.HandleFunc("POST /api/merge", h.Merge)

	mux.HandleFunc("GET /api/graph", h.Graph)
}

type fileRequest struct {
	Name string `json:"name"`
}

type commitRequest struct {
	Message string `json:"message"`
}

type branchRequest struct {
	Name string `json:"name"`
}

type checkoutRequest struct {
	Branch string `json:"branch"`
}

type resetRequest struct {
	ID string `json:"id"`
}

type mergeRequest struct {
	Branch      string            `json:"branch"`
	Resolutions []repo.Resolution `json:"resolutions"`
}

type historyResponse struct {
	ID  string   `json:"id"`
	IDs []string `json:"ids"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) AddFile(w http.ResponseWriter, r *http.Request) {
	var req fileRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.svc.Add(req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) RemoveFile(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Remove(r.PathValue("name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.svc.Commit(req.Message)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if res.Committed {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

func (h *Handler) GetCommit(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Lookup(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ids, err := h.svc.History(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, historyResponse{ID: id, IDs: ids})
}

// RenderCommit answers text/plain. ?color=1 keeps terminal escape codes.
// An unknown or empty id renders as "Invalid commit id".
func (h *Handler) RenderCommit(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	p := render.New(&buf, r.URL.Query().Get("color") == "1")

	d, err := h.svc.Show(r.PathValue("id"))
	switch {
	case errors.Is(err, errors.ErrNotFound), errors.Is(err, errors.ErrInvalidArgument):
		p.Commit(nil)
		writeText(w, buf.Bytes())
		return
	case err != nil:
		h.writeError(w, r, err)
		return
	}

	p.Commit(&d.Commit)
	for _, fd := range d.Diffs {
		buf.WriteString("\n")
		p.Diff(fd.Name, fd.Result)
	}
	writeText(w, buf.Bytes())
}

func (h *Handler) Log(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.Log()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if recs == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *Handler) ListBranches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Branches())
}

func (h *Handler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	var req branchRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.Branch(req.Name); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.svc.Branches())
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.Checkout(req.Branch); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Status())
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.Reset(req.ID); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Status())
}

func (h *Handler) Merge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.svc.Merge(req.Branch, req.Resolutions)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	render.New(&buf, false).Graph(h.svc.Nodes())
	writeText(w, buf.Bytes())
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, r, errors.InvalidArgument("invalid request body: %v", err))
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := errors.Internal("%s", err.Error())
	var e *errors.Error
	if errors.As(err, &e) {
		body = &errors.Error{Type: e.Type, Message: err.Error(), Code: e.Code, Details: e.Details}
	}
	if body.Code == 0 {
		body.Code = errors.StatusCode(err)
	}

	log := h.logger.WithRequestID(r.Context())
	if body.Code >= http.StatusInternalServerError && body.Type != errors.ErrorTypeUnimplemented {
		log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		log.Info("request rejected",
			zap.String("path", r.URL.Path),
			zap.String("type", string(body.Type)),
			zap.String("reason", err.Error()),
		)
	}
	writeJSON(w, body.Code, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
