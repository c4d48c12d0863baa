package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/codefionn/aifm/internal/agent"
	"github.com/codefionn/aifm/internal/consts"
	"github.com/codefionn/aifm/internal/logger"
	"github.com/codefionn/aifm/internal/sandbox"
	"github.com/julienschmidt/httprouter"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response: %v", err)
	}
}

func writeOK(w http.ResponseWriter, body envelope) {
	body["success"] = true
	writeJSON(w, http.StatusOK, body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, envelope{"success": false, "error": err.Error()})
}

// decodeBody reads a JSON request body of at most MaxRequestBodySize bytes
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, consts.MaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// resolvedOrJoined reports where p lands under the working directory for
// response metadata.
func (s *Server) resolvedOrJoined(p string) string {
	if abs, err := s.files.Manager().Resolve(p); err == nil {
		return abs
	}
	return filepath.Join(s.files.WorkingDirectory(), p)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p := r.URL.Query().Get("path")
	items, err := s.files.ListDirectory(r.Context(), p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeOK(w, envelope{
		"items":            items,
		"currentDirectory": s.files.WorkingDirectory(),
		"fullPath":         s.resolvedOrJoined(p),
	})
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p := r.URL.Query().Get("path")
	content, err := s.files.GetFileContent(r.Context(), p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeOK(w, envelope{"content": content, "filePath": p})
}

func (s *Server) handleCreateFile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req pathRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	abs, err := s.files.CreateFile(r.Context(), req.Path, req.Content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeOK(w, envelope{"path": abs, "message": "File created: " + abs})
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req pathRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	abs, err := s.files.CreateFolder(r.Context(), req.Path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeOK(w, envelope{"path": abs, "message": "Folder created: " + abs})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req pathRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.files.DeleteItem(r.Context(), req.Path); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeOK(w, envelope{"message": "Item deleted successfully: " + req.Path})
}

func (s *Server) handleCreateStructure(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req structureRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Structure == nil {
		writeError(w, http.StatusInternalServerError, errors.New("structure is required"))
		return
	}
	results, err := s.files.CreateStructure(r.Context(), req.Structure, req.BasePath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeOK(w, envelope{
		"results":   results,
		"createdIn": s.resolvedOrJoined(req.BasePath),
		"message":   fmt.Sprintf("Structure created with %d items", len(results)),
	})
}

func (s *Server) handleSetDirectory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req directoryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Directory == "" {
		writeError(w, http.StatusBadRequest, errors.New("Directory path is required"))
		return
	}
	dir, err := s.files.Manager().SetWorkingDirectory(sandbox.ExpandShortcut(req.Directory))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeOK(w, envelope{"directory": dir, "message": "Working directory set to: " + dir})
}

func (s *Server) handleCurrentDirectory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	home, err := os.UserHomeDir()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	mgr := s.files.Manager()
	writeOK(w, envelope{
		"currentDirectory":   mgr.WorkingDirectory(),
		"allowedRoots":       mgr.AllowedRoots(),
		"homeDirectory":      home,
		"desktopDirectory":   filepath.Join(home, "Desktop"),
		"documentsDirectory": filepath.Join(home, "Documents"),
	})
}

func (s *Server) handleExploreDirectory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req directoryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Directory == "" {
		writeError(w, http.StatusBadRequest, errors.New("Directory path is required"))
		return
	}
	items, err := s.files.ExploreDirectory(r.Context(), sandbox.ExpandShortcut(req.Directory))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeOK(w, envelope{"directory": req.Directory, "items": items})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req processRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := s.agent.Process(r.Context(), req.Message, req.Context)
	if errors.Is(err, agent.ErrEmptyMessage) {
		writeError(w, http.StatusBadRequest, errors.New("Message is required"))
		return
	}
	if err != nil {
		s.log.Error("Chat turn failed: %v", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeOK(w, envelope{"response": resp})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	entries, err := s.agent.History(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeOK(w, envelope{"history": entries})
}

func (s *Server) handleWorkingDirectory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	mgr := s.files.Manager()
	writeOK(w, envelope{
		"currentDirectory": mgr.WorkingDirectory(),
		"allowedRoots":     mgr.AllowedRoots(),
	})
}
