package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/hiroyoshii/twitter-clone-api/internal/apperror"
	"github.com/hiroyoshii/twitter-clone-api/internal/model"
	"github.com/hiroyoshii/twitter-clone-api/internal/repository"
)

// =========================================================================
// MOCK TWEET REPOSITORY
// =========================================================================

type likeKey struct {
	kind    model.InteractionKind
	tweetID int64
	userID  string
}

type mockTweetRepo struct {
	tweets       map[int64]*model.Tweet
	interactions map[likeKey]bool
	nextID       int64
	lastOpts     repository.ListOptions // captured for pagination assertions
}

func newMockTweetRepo() *mockTweetRepo {
	return &mockTweetRepo{
		tweets:       make(map[int64]*model.Tweet),
		interactions: make(map[likeKey]bool),
	}
}

func (m *mockTweetRepo) ListTweets(_ context.Context, opts repository.ListOptions, _ string) ([]model.TweetDetail, int64, error) {
	m.lastOpts = opts
	return []model.TweetDetail{}, int64(len(m.tweets)), nil
}

func (m *mockTweetRepo) GetTweet(_ context.Context, tweetID int64, _ string) (*model.TweetDetail, error) {
	tweet, ok := m.tweets[tweetID]
	if !ok {
		return nil, nil
	}
	return &model.TweetDetail{Tweet: *tweet, UserName: "Mock " + tweet.UserID}, nil
}

func (m *mockTweetRepo) CreateTweet(_ context.Context, tweet *model.Tweet) error {
	m.nextID++
	tweet.TweetID = m.nextID
	tweet.CreatedAt = time.Now()
	tweet.UpdatedAt = tweet.CreatedAt
	stored := *tweet
	m.tweets[tweet.TweetID] = &stored
	return nil
}

func (m *mockTweetRepo) DeleteTweet(_ context.Context, tweetID int64, requesterID string) (bool, error) {
	tweet, ok := m.tweets[tweetID]
	if !ok || tweet.UserID != requesterID {
		return false, nil
	}
	delete(m.tweets, tweetID)
	return true, nil
}

func (m *mockTweetRepo) AddInteraction(_ context.Context, kind model.InteractionKind, tweetID int64, userID string) (bool, error) {
	if _, ok := m.tweets[tweetID]; !ok {
		return false, nil
	}
	m.interactions[likeKey{kind, tweetID, userID}] = true
	return true, nil
}

func (m *mockTweetRepo) RemoveInteraction(_ context.Context, kind model.InteractionKind, tweetID int64, userID string) (bool, error) {
	key := likeKey{kind, tweetID, userID}
	if !m.interactions[key] {
		return false, nil
	}
	delete(m.interactions, key)
	return true, nil
}

func newTestTweetService() (*TweetService, *mockTweetRepo) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	repo := newMockTweetRepo()
	return NewTweetService(repo, logger), repo
}

// =========================================================================
// PAGINATION TESTS
// =========================================================================

func TestList_PageOptions(t *testing.T) {
	svc, repo := newTestTweetService()
	ctx := context.Background()

	// page 3 of size 10 → offset 20
	if _, _, err := svc.List(ctx, 3, 10, "alice"); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if repo.lastOpts.Limit != 10 || repo.lastOpts.Offset != 20 {
		t.Errorf("List(3, 10) → limit %d offset %d, want 10/20", repo.lastOpts.Limit, repo.lastOpts.Offset)
	}

	// pageSize 0 falls back to the default
	if _, _, err := svc.List(ctx, 1, 0, "alice"); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if repo.lastOpts.Limit != DefaultPageSize {
		t.Errorf("List(1, 0) limit = %d, want DefaultPageSize %d", repo.lastOpts.Limit, DefaultPageSize)
	}
}

func TestList_RejectsBadPaging(t *testing.T) {
	svc, _ := newTestTweetService()
	ctx := context.Background()

	tests := []struct {
		name     string
		page     int
		pageSize int
	}{
		{"page zero", 0, 10},
		{"negative page", -3, 10},
		{"oversized page_size", 1, MaxPageSize + 1},
		{"negative page_size", 1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.List(ctx, tt.page, tt.pageSize, "alice")
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("List(%d, %d) error = %v, want ErrValidation", tt.page, tt.pageSize, err)
			}
		})
	}
}

// =========================================================================
// CONTENT VALIDATION TESTS
// =========================================================================

func TestCreate_ContentBounds(t *testing.T) {
	svc, _ := newTestTweetService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "", "alice"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Create(empty) error = %v, want ErrValidation", err)
	}
	if _, err := svc.Create(ctx, "   \n\t  ", "alice"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Create(whitespace) error = %v, want ErrValidation", err)
	}
	if _, err := svc.Create(ctx, strings.Repeat("x", MaxContentLength+1), "alice"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Create(too long) error = %v, want ErrValidation", err)
	}
}

func TestCreate_CountsRunesNotBytes(t *testing.T) {
	svc, _ := newTestTweetService()

	// 280 three-byte runes: 840 bytes but exactly at the rune limit.
	content := strings.Repeat("語", MaxContentLength)
	tweet, err := svc.Create(context.Background(), content, "alice")
	if err != nil {
		t.Fatalf("Create(280 runes) error = %v", err)
	}
	if tweet.Content != content {
		t.Error("Create() altered multi-byte content")
	}
}

func TestCreate_ReturnsAnnotatedDetail(t *testing.T) {
	svc, _ := newTestTweetService()

	tweet, err := svc.Create(context.Background(), "  hello  ", "alice")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if tweet.Content != "hello" {
		t.Errorf("Create() content = %q, want trimmed %q", tweet.Content, "hello")
	}
	if tweet.UserName == "" {
		t.Error("Create() should return the detail record with the author's name")
	}
}

// =========================================================================
// DELETE / INTERACTION TESTS
// =========================================================================

func TestDelete_NotOwnerIsNotFound(t *testing.T) {
	svc, _ := newTestTweetService()
	ctx := context.Background()

	tweet, err := svc.Create(ctx, "mine", "alice")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(ctx, tweet.TweetID, "bob"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete(not owner) error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, 999, "alice"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, tweet.TweetID, "alice"); err != nil {
		t.Errorf("Delete(owner) error = %v", err)
	}
}

func TestAddInteraction_MissingTweet(t *testing.T) {
	svc, _ := newTestTweetService()

	err := svc.AddInteraction(context.Background(), model.KindLike, 999, "alice")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("AddInteraction(missing tweet) error = %v, want ErrNotFound", err)
	}
}

func TestRemoveInteraction_AbsentRow(t *testing.T) {
	svc, _ := newTestTweetService()
	ctx := context.Background()

	tweet, err := svc.Create(ctx, "never liked", "alice")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err = svc.RemoveInteraction(ctx, model.KindLike, tweet.TweetID, "bob")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("RemoveInteraction(absent) error = %v, want ErrNotFound", err)
	}
}

func TestInteraction_UnknownKind(t *testing.T) {
	svc, _ := newTestTweetService()

	err := svc.AddInteraction(context.Background(), model.InteractionKind("upvote"), 1, "alice")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("AddInteraction(unknown kind) error = %v, want ErrValidation", err)
	}
}
