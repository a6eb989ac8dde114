package sheetserver

import (
	"encoding/json"
	"net/http"

	"github.com/ad/telegram-bolao-bot/internal/domain"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Server implements the spreadsheet web app surface the bot posts to:
// a single JSON POST endpoint guarded by a shared key, plus an xlsx
// export. Status codes follow the original web app: 500 when the key is
// unconfigured, 401 on key mismatch, 400 on a missing or unknown type.
type Server struct {
	router *mux.Router
	store  *RowStore
	apiKey string
	logger domain.Logger
}

// appendRequest is the superset of both record payloads; the type field
// decides which sheet the row lands in
type appendRequest struct {
	Key        string `json:"key"`
	Type       string `json:"type"`
	CreatedAt  string `json:"createdAt"`
	WeekKey    string `json:"weekKey"`
	TelegramID int64  `json:"telegramId"`
	Username   string `json:"username"`
	Nome       string `json:"nome"`
	Telefone   string `json:"telefone"`
	CPF        string `json:"cpf"`
	Email      string `json:"email"`
	ReferredBy string `json:"referredBy"`
	Numeros    string `json:"numeros"`
}

// New creates the sheet server
func New(store *RowStore, apiKey string, log domain.Logger) *Server {
	s := &Server{
		router: mux.NewRouter(),
		store:  store,
		apiKey: apiKey,
		logger: log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	s.router.HandleFunc("/", s.handleAppend).Methods(http.MethodPost)
	s.router.HandleFunc("/export", s.handleExport).Methods(http.MethodGet)
}

// Handler returns the root handler with CORS applied
func (s *Server) Handler() http.Handler {
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
	}
	return cors.New(corsOptions).Handler(s.router)
}

// handleRoot answers a liveness body, handy for checking the deployment
// from a browser
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"message": "Sheet server online. Use POST JSON to append rows.",
	})
}

// handleAppend validates the shared key and type, then appends the row to
// the matching sheet
func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	var req appendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if s.apiKey == "" {
		s.writeError(w, http.StatusInternalServerError, "SHEETS_API_KEY not configured")
		return
	}
	if req.Key != s.apiKey {
		s.logger.Warn("append rejected: key mismatch", "remote", r.RemoteAddr)
		s.writeError(w, http.StatusUnauthorized, "invalid key")
		return
	}
	if req.Type == "" {
		s.writeError(w, http.StatusBadRequest, "type is required")
		return
	}

	telegramID := ""
	if req.TelegramID != 0 {
		telegramID = formatInt64(req.TelegramID)
	}

	switch req.Type {
	case "cadastro":
		row := &CadastroRow{
			CreatedAt:  req.CreatedAt,
			TelegramID: telegramID,
			Username:   req.Username,
			Nome:       req.Nome,
			Telefone:   req.Telefone,
			CPF:        req.CPF,
			Email:      req.Email,
			ReferredBy: req.ReferredBy,
		}
		if err := s.store.AppendCadastro(r.Context(), row); err != nil {
			s.writeError(w, http.StatusInternalServerError, "failed to append row")
			return
		}
	case "aposta":
		row := &ApostaRow{
			CreatedAt:  req.CreatedAt,
			WeekKey:    req.WeekKey,
			TelegramID: telegramID,
			Nome:       req.Nome,
			Numeros:    req.Numeros,
		}
		if err := s.store.AppendAposta(r.Context(), row); err != nil {
			s.writeError(w, http.StatusInternalServerError, "failed to append row")
			return
		}
	default:
		s.writeError(w, http.StatusBadRequest, "invalid type (use cadastro or aposta)")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"saved": req.Type,
	})
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]interface{}{
		"ok":    false,
		"error": msg,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
