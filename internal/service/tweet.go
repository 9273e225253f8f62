package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/hiroyoshii/twitter-clone-api/internal/apperror"
	"github.com/hiroyoshii/twitter-clone-api/internal/model"
	"github.com/hiroyoshii/twitter-clone-api/internal/repository"
)

// Content and pagination bounds.
const (
	MaxContentLength = 280
	DefaultPageSize  = 20
	MaxPageSize      = 100
)

// TweetService handles business logic for tweets and their interactions.
type TweetService struct {
	tweets repository.TweetRepository
	logger *slog.Logger
}

// NewTweetService creates a TweetService.
func NewTweetService(tweets repository.TweetRepository, logger *slog.Logger) *TweetService {
	return &TweetService{tweets: tweets, logger: logger}
}

// pageOptions validates page/pageSize and converts them to limit/offset.
// page must be ≥1; pageSize defaults to 20 and is rejected above 100 —
// the cap stops a single request from dragging the whole table over.
func pageOptions(page, pageSize int) (repository.ListOptions, error) {
	if page < 1 {
		return repository.ListOptions{}, apperror.ValidationFailed("page", "page must be 1 or greater")
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return repository.ListOptions{}, apperror.ValidationFailed("page_size",
			fmt.Sprintf("page_size must be between 1 and %d", MaxPageSize))
	}
	return repository.ListOptions{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}, nil
}

// validateContent enforces the 1–280 bound shared by tweets and replies.
// Length is counted in runes: a 280-kanji tweet is valid even though it's
// 840 bytes.
func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperror.ValidationFailed("content", "content is required")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", apperror.ValidationFailed("content",
			fmt.Sprintf("content must be %d characters or less", MaxContentLength))
	}
	return content, nil
}

// List returns one page of annotated tweets plus the total tweet count.
func (s *TweetService) List(ctx context.Context, page, pageSize int, viewerID string) ([]model.TweetDetail, int64, error) {
	opts, err := pageOptions(page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	tweets, total, err := s.tweets.ListTweets(ctx, opts, viewerID)
	if err != nil {
		return nil, 0, fmt.Errorf("service/tweet: listing tweets: %w", err)
	}
	return tweets, total, nil
}

// Get returns a single annotated tweet or NotFound.
func (s *TweetService) Get(ctx context.Context, tweetID int64, viewerID string) (*model.TweetDetail, error) {
	detail, err := s.tweets.GetTweet(ctx, tweetID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("service/tweet: getting tweet %d: %w", tweetID, err)
	}
	if detail == nil {
		return nil, apperror.NotFound("tweet", tweetID)
	}
	return detail, nil
}

// Create validates and posts a new tweet, returning the annotated detail
// (counts zero, flags false for a fresh tweet, but fetched through the
// same query every other read uses).
func (s *TweetService) Create(ctx context.Context, content, authorID string) (*model.TweetDetail, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	tweet := &model.Tweet{UserID: authorID, Content: content}
	if err := s.tweets.CreateTweet(ctx, tweet); err != nil {
		return nil, fmt.Errorf("service/tweet: creating tweet: %w", err)
	}

	s.logger.Info("tweet created",
		slog.Int64("tweetID", tweet.TweetID),
		slog.String("userID", authorID),
	)

	return s.Get(ctx, tweet.TweetID, authorID)
}

// Delete removes a tweet owned by requesterID. Absent and not-owned are
// the same NotFound.
func (s *TweetService) Delete(ctx context.Context, tweetID int64, requesterID string) error {
	ok, err := s.tweets.DeleteTweet(ctx, tweetID, requesterID)
	if err != nil {
		return fmt.Errorf("service/tweet: deleting tweet %d: %w", tweetID, err)
	}
	if !ok {
		return apperror.NotFound("tweet", tweetID)
	}

	s.logger.Info("tweet deleted",
		slog.Int64("tweetID", tweetID),
		slog.String("userID", requesterID),
	)
	return nil
}

// AddInteraction toggles an interaction on. Adding twice is success;
// a missing tweet is NotFound.
func (s *TweetService) AddInteraction(ctx context.Context, kind model.InteractionKind, tweetID int64, userID string) error {
	if !kind.Valid() {
		return apperror.ValidationFailed("kind", "unknown interaction kind")
	}

	ok, err := s.tweets.AddInteraction(ctx, kind, tweetID, userID)
	if err != nil {
		return fmt.Errorf("service/tweet: adding %s on tweet %d: %w", kind, tweetID, err)
	}
	if !ok {
		return apperror.NotFound("tweet", tweetID)
	}
	return nil
}

// RemoveInteraction toggles an interaction off. Removing what isn't there
// is NotFound.
func (s *TweetService) RemoveInteraction(ctx context.Context, kind model.InteractionKind, tweetID int64, userID string) error {
	if !kind.Valid() {
		return apperror.ValidationFailed("kind", "unknown interaction kind")
	}

	ok, err := s.tweets.RemoveInteraction(ctx, kind, tweetID, userID)
	if err != nil {
		return fmt.Errorf("service/tweet: removing %s on tweet %d: %w", kind, tweetID, err)
	}
	if !ok {
		return apperror.NotFound(string(kind), tweetID)
	}
	return nil
}
