package sqlite

import (
	"context"
	"testing"

	"github.com/hiroyoshii/twitter-clone-api/internal/model"
)

// TESTING WITH IN-MEMORY SQLITE:
// Using ":memory:" creates a fresh database that exists only during the test.
// Benefits:
// - Fast: no disk I/O
// - Isolated: each test gets its own database
// - Clean: automatically destroyed when the connection closes
//
// newTestDB is a "test helper" — a function used only in tests to reduce boilerplate.
// The `t.Helper()` call tells Go's test framework to report errors at the CALLER's
// line number, not inside this function. This makes test failure output much clearer.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	// t.Cleanup registers a function to run when the test finishes.
	// This is like defer, but scoped to the test — even works in subtests.
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user whose e-mail derives from the handle.
func createTestUser(t *testing.T, db *DB, userID string) *model.User {
	t.Helper()
	user := &model.User{
		UserID:       userID,
		Email:        userID + "@example.com",
		PasswordHash: "$2a$04$notarealhashbutlongenough0000000000000000000000000000",
		UserName:     "Test " + userID,
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user %s: %v", userID, err)
	}
	return user
}

// createTestTweet creates a tweet owned by userID.
func createTestTweet(t *testing.T, db *DB, userID, content string) *model.Tweet {
	t.Helper()
	tweet := &model.Tweet{UserID: userID, Content: content}
	if err := db.CreateTweet(context.Background(), tweet); err != nil {
		t.Fatalf("failed to create test tweet: %v", err)
	}
	return tweet
}

// createTestReply creates a reply on tweetID, optionally nested under parent.
func createTestReply(t *testing.T, db *DB, userID string, tweetID int64, parent *int64, content string) *model.Reply {
	t.Helper()
	reply := &model.Reply{
		UserID:        userID,
		TweetID:       tweetID,
		ParentReplyID: parent,
		Content:       content,
	}
	if err := db.CreateReply(context.Background(), reply); err != nil {
		t.Fatalf("failed to create test reply: %v", err)
	}
	return reply
}
