package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/deyanlaf0409/noteblocks/pkg/adapters/memory"
	"github.com/deyanlaf0409/noteblocks/pkg/core"
)

type contextKey string

const claimsKey contextKey = "claims"

// ServerConfig holds the configuration for a Server.
type ServerConfig struct {
	Secret []byte
	Logger *slog.Logger
}

// Server is a reference implementation of the remote note service. Records are held by
// an in-memory backend; every /api route requires a bearer token issued with Secret.
type Server struct {
	backend *memory.Gateway
	secret  []byte
	logger  *slog.Logger
	router  *mux.Router
}

// NewServer creates a Server. A nil backend starts with no accounts.
func NewServer(backend *memory.Gateway, cfg ServerConfig) *Server {
	if backend == nil {
		backend = memory.NewGateway()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{backend: backend, secret: cfg.Secret, logger: logger, router: mux.NewRouter()}

	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.authenticate)
	api.HandleFunc("/accounts/{account}", s.fetchAccount).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{account}/notes", s.createNote).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{account}/folders", s.createFolder).Methods(http.MethodPost)
	api.HandleFunc("/notes/{id}", s.updateNote).Methods(http.MethodPut)
	api.HandleFunc("/notes/{id}", s.deleteNote).Methods(http.MethodDelete)
	api.HandleFunc("/folders/{id}", s.deleteFolder).Methods(http.MethodDelete)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Backend exposes the records held by the server.
func (s *Server) Backend() *memory.Gateway {
	return s.backend
}

// authenticate checks the bearer token and stores its claims in the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			s.logger.Debug("rejected request without bearer token", "method", r.Method, "path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := ValidateToken(s.secret, token)
		if err != nil {
			s.logger.Debug("rejected invalid token", "method", r.Method, "path", r.URL.Path, "error", err)
			writeError(w, http.StatusUnauthorized, "invalid token: "+err.Error())
			return
		}

		s.backend.EnsureAccount(claims.Subject, claims.Username)
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFrom(r *http.Request) *Claims {
	claims, _ := r.Context().Value(claimsKey).(*Claims)
	return claims
}

// ownAccount rejects requests for an account other than the token's.
func (s *Server) ownAccount(w http.ResponseWriter, r *http.Request) (string, bool) {
	account := mux.Vars(r)["account"]
	if claims := claimsFrom(r); claims == nil || claims.Subject != account {
		writeError(w, http.StatusForbidden, "token does not grant access to this account")
		return "", false
	}
	return account, true
}

// owns reports whether the record is absent or belongs to the caller; absent records
// fall through so the backend reports 404.
func (s *Server) owns(w http.ResponseWriter, r *http.Request, owner func(string) (string, bool)) bool {
	id := mux.Vars(r)["id"]
	if acc, ok := owner(id); ok && acc != claimsFrom(r).Subject {
		writeError(w, http.StatusNotFound, "record "+id+" not found")
		return false
	}
	return true
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) fetchAccount(w http.ResponseWriter, r *http.Request) {
	account, ok := s.ownAccount(w, r)
	if !ok {
		return
	}
	data, err := s.backend.FetchAccountData(r.Context(), account)
	if err != nil {
		s.fail(w, err)
		return
	}
	payload, err := newAccountPayload(data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode account")
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) createNote(w http.ResponseWriter, r *http.Request) {
	account, ok := s.ownAccount(w, r)
	if !ok {
		return
	}
	var n core.Note
	if !decodeBody(w, r, &n) || !valid(w, n.Validate()) {
		return
	}
	if err := s.backend.CreateNote(r.Context(), n, account); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) updateNote(w http.ResponseWriter, r *http.Request) {
	if !s.owns(w, r, s.backend.NoteOwner) {
		return
	}
	var n core.Note
	if !decodeBody(w, r, &n) {
		return
	}
	if n.ID != mux.Vars(r)["id"] {
		writeError(w, http.StatusBadRequest, "note id does not match path")
		return
	}
	if err := s.backend.UpdateNote(r.Context(), n); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	if !s.owns(w, r, s.backend.NoteOwner) {
		return
	}
	if err := s.backend.DeleteNote(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createFolder(w http.ResponseWriter, r *http.Request) {
	account, ok := s.ownAccount(w, r)
	if !ok {
		return
	}
	var f core.Folder
	if !decodeBody(w, r, &f) || !valid(w, f.Validate()) {
		return
	}
	if err := s.backend.CreateFolder(r.Context(), f, account); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) deleteFolder(w http.ResponseWriter, r *http.Request) {
	if !s.owns(w, r, s.backend.FolderOwner) {
		return
	}
	if err := s.backend.DeleteFolder(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail maps a backend error to its HTTP status.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := err.Error()
	var re *core.RemoteError
	if errors.As(err, &re) {
		if re.Status != 0 {
			status = re.Status
		}
		if re.Message != "" {
			message = re.Message
		}
	}
	if status >= 500 {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	writeError(w, status, message)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func valid(w http.ResponseWriter, err error) bool {
	if err != nil {
		writeError(w, http.StatusBadRequest, "record has no id")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorPayload{Error: message})
}
