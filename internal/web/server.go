// Package web serves the single-page chat UI.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"bioassist/internal/domain"
)

// AnswerPort is the web-facing subset of the agent.
type AnswerPort interface {
	Answer(ctx context.Context, question string) string
	Mode() domain.ContextMode
}

// Info holds the configuration values displayed on the page.
type Info struct {
	LLMModel    string
	ContextMode string
	StorePath   string
	DataDir     string
}

// Server hosts the chat page. The transcript is held in memory for the
// process lifetime only; questions are answered one at a time.
type Server struct {
	agent  AnswerPort
	info   Info
	logger *zap.Logger

	mu    sync.Mutex
	turns []domain.Turn

	server *http.Server
}

// NewServer creates the chat UI server.
func NewServer(agent AnswerPort, info Info, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{agent: agent, info: info, logger: logger}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/", s.handleIndex)
	r.Post("/chat", s.handleChatForm)
	r.Post("/api/chat", s.handleChatAPI)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{Addr: addr, Handler: s.Router()}
	s.logger.Info("chat UI listening", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	turns := make([]domain.Turn, len(s.turns))
	copy(turns, s.turns)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTemplate.Execute(w, pageData{Info: s.info, Turns: turns})
	if err != nil {
		s.logger.Warn("render page", zap.Error(err))
	}
}

// ask runs one question through the agent and appends both turns to the
// session transcript.
func (s *Server) ask(ctx context.Context, question string) string {
	answer := s.agent.Answer(ctx, question)
	s.mu.Lock()
	s.turns = append(s.turns,
		domain.Turn{Role: domain.RoleUser, Content: question},
		domain.Turn{Role: domain.RoleAssistant, Content: answer},
	)
	s.mu.Unlock()
	return answer
}

func (s *Server) handleChatForm(w http.ResponseWriter, r *http.Request) {
	question := strings.TrimSpace(r.FormValue("question"))
	if question != "" {
		s.ask(r.Context(), question)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleChatAPI(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		http.Error(w, `{"error":"question is required"}`, http.StatusBadRequest)
		return
	}
	answer := s.ask(r.Context(), question)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"answer": answer}); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
