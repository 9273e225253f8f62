package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hiroyoshii/twitter-clone-api/internal/apperror"
	"github.com/hiroyoshii/twitter-clone-api/internal/auth"
	"github.com/hiroyoshii/twitter-clone-api/internal/model"
	"github.com/hiroyoshii/twitter-clone-api/internal/monitoring"
	"github.com/hiroyoshii/twitter-clone-api/internal/service"
)

// TweetHandler serves the timeline, single tweets and the three
// interaction toggles (like, retweet, bookmark).
type TweetHandler struct {
	tweetService *service.TweetService
	logger       *slog.Logger
}

// NewTweetHandler creates a TweetHandler.
func NewTweetHandler(tweetService *service.TweetService, logger *slog.Logger) *TweetHandler {
	return &TweetHandler{tweetService: tweetService, logger: logger}
}

// tweetListResponse is the paginated timeline envelope.
type tweetListResponse struct {
	Tweets   []model.TweetDetail `json:"tweets"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

// actionResponse reports the outcome of writes that don't return a
// record: deletes and interaction toggles.
type actionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TweetID int64  `json:"tweet_id"`
}

type createTweetRequest struct {
	Content string `json:"content"`
}

// pathID parses the {id} segment of the route. Chi populates
// r.PathValue, so for GET /tweets/42 pathID returns 42.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.ValidationFailed("id", "id must be a positive integer")
	}
	return id, nil
}

// queryInt reads an integer query parameter, returning def when absent.
// A malformed value is a validation error rather than a silent default,
// so typos like ?page=abc don't quietly serve page 1.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ValidationFailed(name, name+" must be an integer")
	}
	return v, nil
}

// viewerID returns the authenticated user's handle, or "" when the
// request carries no session. Repository queries bind "" for anonymous
// viewers; no handle can be empty, so all flags come back false.
func viewerID(r *http.Request) string {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

// HandleList returns the paginated timeline, newest first.
//
// HTTP: GET /tweets?page=1&page_size=20
//
// RESPONSE FORMAT:
//
//	{"tweets":[...], "total":125, "page":1, "page_size":20}
//
// Each tweet carries its interaction counts plus is_liked /
// is_retweeted / is_bookmarked computed for the requesting viewer.
func (h *TweetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, err)
		return
	}
	pageSize, err := queryInt(r, "page_size", 0)
	if err != nil {
		writeError(w, err)
		return
	}

	tweets, total, err := h.tweetService.List(r.Context(), page, pageSize, viewerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if pageSize == 0 {
		pageSize = service.DefaultPageSize
	}

	writeJSON(w, http.StatusOK, tweetListResponse{
		Tweets:   tweets,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// HandleGet returns a single tweet with viewer-specific flags.
//
// HTTP: GET /tweets/{id}
func (h *TweetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	tweetID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	tweet, err := h.tweetService.Get(r.Context(), tweetID, viewerID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tweet)
}

// HandleCreate posts a new tweet.
//
// HTTP: POST /tweets
// REQUEST BODY: {"content": "hello world"}
//
// Returns the full annotated record (counts zero, flags false) so the
// client can render it without a second request.
func (h *TweetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid tweet JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	tweet, err := h.tweetService.Create(r.Context(), req.Content, viewerID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	monitoring.TweetsPosted.Inc()
	writeJSON(w, http.StatusOK, tweet)
}

// HandleDelete removes the caller's own tweet, cascading to its replies
// and interactions.
//
// HTTP: DELETE /tweets/{id}
//
// Deleting someone else's tweet returns the same 404 as deleting a
// tweet that doesn't exist, so the endpoint can't be used to test which
// ids are live.
func (h *TweetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	tweetID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.tweetService.Delete(r.Context(), tweetID, viewerID(r)); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, actionResponse{
		Success: true,
		Message: "tweet deleted",
		TweetID: tweetID,
	})
}

// HandleAddInteraction turns the POST side of the like/retweet/bookmark
// toggles into one handler parameterised by kind.
//
// HTTP: POST /tweets/{id}/like (and /retweet, /bookmark)
//
// Adding an interaction that already exists succeeds — the toggle is
// idempotent, so a double-tap on the heart never errors.
func (h *TweetHandler) HandleAddInteraction(kind model.InteractionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tweetID, err := pathID(r)
		if err != nil {
			writeError(w, err)
			return
		}

		if err := h.tweetService.AddInteraction(r.Context(), kind, tweetID, viewerID(r)); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, actionResponse{
			Success: true,
			Message: string(kind) + " added",
			TweetID: tweetID,
		})
	}
}

// HandleRemoveInteraction is the DELETE side of the toggles.
//
// HTTP: DELETE /tweets/{id}/like (and /retweet, /bookmark)
//
// Removing an interaction that isn't there is a 404 — the resource
// being deleted is the interaction row itself.
func (h *TweetHandler) HandleRemoveInteraction(kind model.InteractionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tweetID, err := pathID(r)
		if err != nil {
			writeError(w, err)
			return
		}

		if err := h.tweetService.RemoveInteraction(r.Context(), kind, tweetID, viewerID(r)); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, actionResponse{
			Success: true,
			Message: string(kind) + " removed",
			TweetID: tweetID,
		})
	}
}
