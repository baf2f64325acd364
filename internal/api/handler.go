package api

import (
	"context"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/RichardoC/bioexpert/internal/models"
	"github.com/RichardoC/bioexpert/internal/store"
	"github.com/RichardoC/bioexpert/web"
	"go.uber.org/zap"
)

// HistorySize is how many past messages the index page shows.
const HistorySize = 10

// Completer produces a reply for a full conversation.
type Completer interface {
	Complete(ctx context.Context, messages []models.Message) (string, error)
}

// Normalizer rewrites a model reply to house style.
type Normalizer interface {
	Normalize(text string) string
}

type Handler struct {
	store      store.Store
	llm        Completer
	normalizer Normalizer
	logger     *zap.Logger
	page       *template.Template
	renderer   *renderer
}

func NewHandler(st store.Store, llmService Completer, normalizer Normalizer, logger *zap.Logger) (*Handler, error) {
	page, err := template.ParseFS(web.Templates, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &Handler{
		store:      st,
		llm:        llmService,
		normalizer: normalizer,
		logger:     logger,
		page:       page,
		renderer:   newRenderer(),
	}, nil
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

// Routes returns the full HTTP surface: pages, API and static assets, with
// session and access-log middleware applied.
func (h *Handler) Routes() http.Handler {
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		// The directory is embedded at build time.
		panic(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", h.Index)
	mux.HandleFunc("/chat", h.Chat)
	mux.HandleFunc("/new-chat", h.NewChat)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	return withSession(h.logRequests(mux))
}

var suggestions = []string{
	"Explain the Smith-Waterman algorithm",
	"How do CRISPR-Cas9 guide RNAs find their target?",
	"What are the phases of a clinical drug trial?",
}

type historyItem struct {
	Role    models.Role
	HTML    template.HTML
	Preview string
}

type indexData struct {
	History     []historyItem
	Suggestions []string
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := sessionFromContext(r.Context())
	history, err := h.store.RecentHistory(r.Context(), sessionID, HistorySize)
	if err != nil {
		h.logger.Error("Failed to load history",
			zap.Error(err),
			zap.String("session", sessionID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data := indexData{
		History:     make([]historyItem, 0, len(history)),
		Suggestions: suggestions,
	}
	for _, msg := range history {
		data.History = append(data.History, historyItem{
			Role:    msg.Role,
			HTML:    h.renderer.message(msg),
			Preview: preview(msg.Content),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.page.Execute(w, data); err != nil {
		h.logger.Error("Failed to render page", zap.Error(err))
	}
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// A missing "message" field is forwarded as an empty string.
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	sessionID := sessionFromContext(ctx)
	logger := h.logger.With(zap.String("session", sessionID))

	if err := h.store.Append(ctx, sessionID, models.RoleUser, req.Message); err != nil {
		logger.Error("Failed to save user message", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	conversation, err := h.store.Conversation(ctx, sessionID)
	if err != nil {
		logger.Error("Failed to load conversation", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	reply, err := h.llm.Complete(ctx, conversation)
	if err != nil {
		logger.Error("Failed to process message", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	reply = h.normalizer.Normalize(reply)

	if err := h.store.Append(ctx, sessionID, models.RoleAssistant, reply); err != nil {
		logger.Error("Failed to save assistant message", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logger.Debug("Chat turn completed",
		zap.Int("conversation_length", len(conversation)+1),
		zap.Int("reply_bytes", len(reply)))

	h.writeJSON(w, ChatResponse{Reply: reply})
}

func (h *Handler) NewChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := sessionFromContext(r.Context())
	if err := h.store.Reset(r.Context(), sessionID); err != nil {
		h.logger.Error("Failed to reset conversation",
			zap.Error(err),
			zap.String("session", sessionID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, StatusResponse{Status: "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
