package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hiroyoshii/twitter-clone-api/internal/apperror"
	"github.com/hiroyoshii/twitter-clone-api/internal/model"
	"github.com/hiroyoshii/twitter-clone-api/internal/repository"
)

// ReplyService handles business logic for the reply tree.
type ReplyService struct {
	replies repository.ReplyRepository
	logger  *slog.Logger
}

// NewReplyService creates a ReplyService.
func NewReplyService(replies repository.ReplyRepository, logger *slog.Logger) *ReplyService {
	return &ReplyService{replies: replies, logger: logger}
}

// ListForTweet returns one page of a tweet's replies at a single tree
// level. parentReplyID nil means top-level replies; otherwise the direct
// children of that reply. Clients descend the tree one level at a time by
// passing the parent they're expanding.
func (s *ReplyService) ListForTweet(ctx context.Context, tweetID int64, parentReplyID *int64, page, pageSize int) ([]model.ReplyDetail, int64, error) {
	opts, err := pageOptions(page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	replies, total, err := s.replies.ListReplies(ctx, tweetID, parentReplyID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("service/reply: listing replies for tweet %d: %w", tweetID, err)
	}
	return replies, total, nil
}

// Get returns a single annotated reply or NotFound.
func (s *ReplyService) Get(ctx context.Context, replyID int64) (*model.ReplyDetail, error) {
	detail, err := s.replies.GetReply(ctx, replyID)
	if err != nil {
		return nil, fmt.Errorf("service/reply: getting reply %d: %w", replyID, err)
	}
	if detail == nil {
		return nil, apperror.NotFound("reply", replyID)
	}
	return detail, nil
}

// Create validates and posts a reply under a tweet, optionally under a
// parent reply. The repository enforces the referential rules: parent
// must belong to the same tweet (InvalidReference), tweet must exist
// (NotFound).
func (s *ReplyService) Create(ctx context.Context, tweetID int64, authorID, content string, parentReplyID *int64) (*model.ReplyDetail, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	reply := &model.Reply{
		UserID:        authorID,
		TweetID:       tweetID,
		ParentReplyID: parentReplyID,
		Content:       content,
	}
	if err := s.replies.CreateReply(ctx, reply); err != nil {
		return nil, err
	}

	s.logger.Info("reply created",
		slog.Int64("replyID", reply.ReplyID),
		slog.Int64("tweetID", tweetID),
		slog.String("userID", authorID),
	)

	return s.Get(ctx, reply.ReplyID)
}

// Delete removes a reply owned by requesterID along with its descendant
// subtree. Absent and not-owned are the same NotFound.
func (s *ReplyService) Delete(ctx context.Context, replyID int64, requesterID string) error {
	ok, err := s.replies.DeleteReply(ctx, replyID, requesterID)
	if err != nil {
		return fmt.Errorf("service/reply: deleting reply %d: %w", replyID, err)
	}
	if !ok {
		return apperror.NotFound("reply", replyID)
	}

	s.logger.Info("reply deleted",
		slog.Int64("replyID", replyID),
		slog.String("userID", requesterID),
	)
	return nil
}
