package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hiroyoshii/twitter-clone-api/internal/apperror"
	"github.com/hiroyoshii/twitter-clone-api/internal/model"
	"github.com/hiroyoshii/twitter-clone-api/internal/service"
)

// ReplyHandler serves the reply endpoints. Replies hang off tweets
// (list/create live under /tweets/{id}/replies) while single-reply
// operations live under /replies/{id}.
type ReplyHandler struct {
	replyService *service.ReplyService
	logger       *slog.Logger
}

// NewReplyHandler creates a ReplyHandler.
func NewReplyHandler(replyService *service.ReplyService, logger *slog.Logger) *ReplyHandler {
	return &ReplyHandler{replyService: replyService, logger: logger}
}

type replyListResponse struct {
	Replies  []model.ReplyDetail `json:"replies"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

type replyActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ReplyID int64  `json:"reply_id"`
}

type createReplyRequest struct {
	Content       string `json:"content"`
	ParentReplyID *int64 `json:"parent_reply_id"`
}

// HandleList returns one level of a tweet's reply tree.
//
// HTTP: GET /tweets/{id}/replies?parent_reply_id=&page=&page_size=
//
// Without parent_reply_id the page holds top-level replies; with it, the
// direct children of that reply. Each row carries child_reply_count so
// the client knows whether a "show replies" toggle is worth rendering.
// Total counts only the level being listed, not the whole tree.
func (h *ReplyHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tweetID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var parentReplyID *int64
	if raw := r.URL.Query().Get("parent_reply_id"); raw != "" {
		parent, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parent < 1 {
			writeError(w, apperror.ValidationFailed("parent_reply_id",
				"parent_reply_id must be a positive integer"))
			return
		}
		parentReplyID = &parent
	}

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

	replies, total, err := h.replyService.ListForTweet(r.Context(), tweetID, parentReplyID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	if pageSize == 0 {
		pageSize = service.DefaultPageSize
	}

	writeJSON(w, http.StatusOK, replyListResponse{
		Replies:  replies,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// HandleGet returns a single reply with its child count.
//
// HTTP: GET /replies/{id}
func (h *ReplyHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	replyID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	reply, err := h.replyService.Get(r.Context(), replyID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// HandleCreate posts a reply to a tweet, optionally nested under
// another reply of the same tweet.
//
// HTTP: POST /tweets/{id}/replies
// REQUEST BODY: {"content": "nice one", "parent_reply_id": 7}
//
// A parent_reply_id pointing at a missing reply, or at a reply under a
// different tweet, is a 400 invalid_reference.
func (h *ReplyHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	tweetID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req createReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid reply JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	reply, err := h.replyService.Create(r.Context(), tweetID, viewerID(r), req.Content, req.ParentReplyID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// HandleDelete removes the caller's own reply and, via the cascade, its
// whole subtree.
//
// HTTP: DELETE /replies/{id}
//
// Same 404 for "absent" and "not yours" as tweet deletion.
func (h *ReplyHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	replyID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.replyService.Delete(r.Context(), replyID, viewerID(r)); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, replyActionResponse{
		Success: true,
		Message: "reply deleted",
		ReplyID: replyID,
	})
}
