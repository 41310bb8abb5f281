package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"newsroom/internal/core"
	"newsroom/internal/features/news/services"
	"newsroom/internal/identity"
)

// Handlers contains all news feature HTTP handlers.
type Handlers struct {
	logger    *core.Logger
	feeds     *services.FeedService
	news      *services.NewsService
	unread    *services.UnreadService
	users     *services.UserService
	scheduler *services.SchedulerService
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	logger *core.Logger,
	feeds *services.FeedService,
	news *services.NewsService,
	unread *services.UnreadService,
	users *services.UserService,
	scheduler *services.SchedulerService,
) *Handlers {
	return &Handlers{
		logger:    logger,
		feeds:     feeds,
		news:      news,
		unread:    unread,
		users:     users,
		scheduler: scheduler,
	}
}

// log returns the handler logger tagged with the request ID, when the
// router middleware has put one on the context.
func (h *Handlers) log(r *http.Request) *core.Logger {
	return h.logger.WithContext(r.Context())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// ListUnreadItems returns the caller's unread news items, newest first,
// together with the current unread counter.
func (h *Handlers) ListUnreadItems(w http.ResponseWriter, r *http.Request) {
	user := identity.UserFromRequest(r)

	items, err := h.news.UnreadItems(r.Context(), user.ID, queryInt(r, "limit", 0))
	if err != nil {
		h.log(r).Error("Failed to list unread news items", "user_id", user.ID, "error", err)
		core.HandleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"news_items":             items,
		"number_of_unread_items": user.NumberOfUnreadItems,
	})
}

// ListReadItems returns a page of the caller's already-read news items.
func (h *Handlers) ListReadItems(w http.ResponseWriter, r *http.Request) {
	user := identity.UserFromRequest(r)

	items, err := h.news.ReadItems(r.Context(), user.ID, queryInt(r, "offset", 0), queryInt(r, "limit", 0))
	if err != nil {
		h.log(r).Error("Failed to list read news items", "user_id", user.ID, "error", err)
		core.HandleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"news_items": items})
}

// MarkAsRead flips the given news items to read and decrements the
// caller's unread counter.
func (h *Handlers) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	user := identity.UserFromRequest(r)

	var input struct {
		NewsItemIDs []string `json:"news_item_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		core.HandleError(w, core.NewValidationError("invalid request body", err))
		return
	}
	if len(input.NewsItemIDs) == 0 {
		core.HandleError(w, core.NewValidationError("news_item_ids is required", nil))
		return
	}

	updated, err := h.unread.MarkItemsRead(r.Context(), user.ID, input.NewsItemIDs)
	if err != nil {
		h.log(r).Error("Failed to mark news items read", "user_id", user.ID, "error", err)
		core.HandleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"number_of_unread_items": updated.NumberOfUnreadItems,
	})
}

// ListFeeds returns every feed with the caller's subscription status.
func (h *Handlers) ListFeeds(w http.ResponseWriter, r *http.Request) {
	user := identity.UserFromRequest(r)

	feeds, err := h.feeds.ListFeeds(r.Context(), user.ID)
	if err != nil {
		h.log(r).Error("Failed to list feeds", "error", err)
		core.HandleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"feeds": feeds})
}

// CreateFeed registers a feed by URL.
func (h *Handlers) CreateFeed(w http.ResponseWriter, r *http.Request) {
	var input struct {
		URL      string `json:"url"`
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		core.HandleError(w, core.NewValidationError("invalid request body", err))
		return
	}

	feed, err := h.feeds.CreateFeed(r.Context(), input.URL, input.Category)
	if err != nil {
		h.log(r).Error("Failed to create feed", "url", input.URL, "error", err)
		core.HandleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"feed": feed})
}

// RefreshFeed fetches and reconciles a single feed immediately.
func (h *Handlers) RefreshFeed(w http.ResponseWriter, r *http.Request) {
	feedID := chi.URLParam(r, "id")

	result, err := h.scheduler.RefreshFeedByID(r.Context(), feedID)
	if err != nil {
		h.log(r).Error("Failed to refresh feed", "feed_id", feedID, "error", err)
		core.HandleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

// Subscribe links the caller to a feed.
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	user := identity.UserFromRequest(r)
	feedID := chi.URLParam(r, "id")

	if err := h.feeds.Subscribe(r.Context(), user, feedID); err != nil {
		h.log(r).Error("Failed to subscribe", "user_id", user.ID, "feed_id", feedID, "error", err)
		core.HandleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"number_of_unread_items": user.NumberOfUnreadItems,
	})
}

// Unsubscribe removes the caller's subscription and their news items for
// the feed.
func (h *Handlers) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	user := identity.UserFromRequest(r)
	feedID := chi.URLParam(r, "id")

	if err := h.feeds.Unsubscribe(r.Context(), user, feedID); err != nil {
		h.log(r).Error("Failed to unsubscribe", "user_id", user.ID, "feed_id", feedID, "error", err)
		core.HandleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"number_of_unread_items": user.NumberOfUnreadItems,
	})
}

// CreateUser registers a reader account.
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		core.HandleError(w, core.NewValidationError("invalid request body", err))
		return
	}

	user, err := h.users.CreateUser(r.Context(), input.Name)
	if err != nil {
		h.log(r).Error("Failed to create user", "error", err)
		core.HandleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}
