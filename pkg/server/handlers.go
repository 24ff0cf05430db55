package server

import (
	"net/http"
	"time"

	"github.com/hebraica/mothertree/pkg/corpus"
	"github.com/hebraica/mothertree/pkg/mother"
)

// =============================================================================
// Read Handlers
// =============================================================================

// handleTree serves GET /tree?scope=Book.Chapter.Verse. A missing scope
// projects the whole corpus; an unparseable one yields empty sets. This
// endpoint never fails.
func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}

	scope := r.URL.Query().Get("scope")

	s.mu.RLock()
	resp := s.treeResponse(s.svc.Tree(scope))
	s.mu.RUnlock()

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	}
	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.Stats()

	s.mu.RLock()
	clauses := s.svc.Corpus().Len()
	edits := len(s.svc.Store().Overlay())
	undoDepth := s.svc.Store().UndoDepth()
	redoDepth := s.svc.Store().RedoDepth()
	version := s.svc.Version()
	s.mu.RUnlock()

	response := map[string]interface{}{
		"status": "running",
		"server": map[string]interface{}{
			"uptime_seconds": stats.Uptime.Seconds(),
			"requests":       stats.RequestCount,
			"errors":         stats.ErrorCount,
			"active":         stats.ActiveRequests,
		},
		"corpus": map[string]interface{}{
			"clauses": clauses,
			"books":   len(s.svc.Corpus().Books()),
		},
		"overlay": map[string]interface{}{
			"edits":      edits,
			"undo_depth": undoDepth,
			"redo_depth": redoDepth,
			"version":    version,
		},
	}

	s.writeJSON(w, http.StatusOK, response)
}

// =============================================================================
// Mutation Handlers
// =============================================================================

func (s *Server) handleReparent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req ReparentRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	res, err := s.svc.Reparent(corpus.NodeID(req.Child), corpus.NodeID(req.NewMother))
	s.mu.Unlock()

	if err != nil {
		s.writeReason(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, SuccessResponse{
		Ok:      true,
		Edge:    edgeDTO(res.Edge),
		Version: res.Version,
	})
}

func (s *Server) handleRootify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req RootifyRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	res, err := s.svc.Rootify(corpus.NodeID(req.Child))
	s.mu.Unlock()

	if err != nil {
		s.writeReason(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, SuccessResponse{
		Ok:      true,
		Edge:    edgeDTO(res.Edge),
		Version: res.Version,
	})
}

// handleReparentBatch applies a sequence of operations atomically. On
// success it answers with the full projected tree; on failure the batch has
// been rolled back and the single failing operation's reason is returned.
func (s *Server) handleReparentBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req BatchReparentRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ops := make([]mother.BatchOp, 0, len(req.Ops))
	for _, op := range req.Ops {
		bo := mother.BatchOp{Child: corpus.NodeID(op.Child)}
		if op.NewMother != nil {
			bo.NewMother = corpus.NodeID(*op.NewMother)
		}
		ops = append(ops, bo)
	}

	s.mu.Lock()
	err := s.svc.ReparentBatch(ops)
	var resp TreeResponse
	if err == nil {
		resp = s.treeResponse(s.svc.Tree(""))
	}
	s.mu.Unlock()

	if err != nil {
		s.writeReason(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.handleHistory(w, r, (*mother.Service).Undo)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.handleHistory(w, r, (*mother.Service).Redo)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, step func(*mother.Service) (mother.Result, error)) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	s.mu.Lock()
	res, err := step(s.svc)
	s.mu.Unlock()

	if err != nil {
		s.writeReason(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, SuccessResponse{
		Ok:      true,
		Edge:    edgeDTO(res.Edge),
		Version: res.Version,
	})
}

// =============================================================================
// Error Writers
// =============================================================================

// writeReason writes a rejected mutation with its stable reason code.
func (s *Server) writeReason(w http.ResponseWriter, err error) {
	s.errorCount.Add(1)

	reason, ok := mother.ReasonOf(err)
	if !ok {
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Reason: "INTERNAL_ERROR"})
		return
	}
	s.writeJSON(w, statusForReason(reason), ErrorResponse{Reason: string(reason)})
}

// writeError writes a transport-level failure (bad method, bad JSON).
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.errorCount.Add(1)
	s.writeJSON(w, status, map[string]interface{}{
		"ok":      false,
		"error":   true,
		"message": message,
		"code":    status,
	})
}
