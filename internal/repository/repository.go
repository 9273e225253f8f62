// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage provides the implementation;
// tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/hiroyoshii/twitter-clone-api/internal/model"
)

// ListOptions carries offset pagination. Services compute the offset from
// (page, pageSize) after clamping; repositories apply it as-is.
type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository is CRUD over user records.
//
// Lookups return (nil, nil) on a miss rather than a typed error: "user
// doesn't exist" is an expected outcome during login and registration, and
// forcing callers through errors.Is for it obscures the anti-enumeration
// handling in the auth service.
type UserRepository interface {
	// Create inserts the user, assigning ID and timestamps. Returns an
	// apperror.Conflict describing the duplicate field if e_mail or
	// user_id is already taken.
	CreateUser(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUserID(ctx context.Context, userID string) (*model.User, error)
}

// TweetRepository is CRUD plus aggregation over tweets.
//
// viewerID annotates the Is* flags on returned details; pass "" for an
// anonymous viewer (all flags false). ListTweets' total is the unfiltered
// count of all tweets, not the page size.
type TweetRepository interface {
	ListTweets(ctx context.Context, opts ListOptions, viewerID string) ([]model.TweetDetail, int64, error)
	GetTweet(ctx context.Context, tweetID int64, viewerID string) (*model.TweetDetail, error)
	// Create inserts the tweet, assigning TweetID and timestamps.
	CreateTweet(ctx context.Context, tweet *model.Tweet) error
	// Delete removes the tweet only if requesterID owns it. Returns false
	// both when the tweet is absent and when it belongs to someone else.
	DeleteTweet(ctx context.Context, tweetID int64, requesterID string) (bool, error)

	// AddInteraction is idempotent: an existing row is success. Returns
	// false only when the tweet does not exist.
	AddInteraction(ctx context.Context, kind model.InteractionKind, tweetID int64, userID string) (bool, error)
	// RemoveInteraction returns false when no such row exists.
	RemoveInteraction(ctx context.Context, kind model.InteractionKind, tweetID int64, userID string) (bool, error)
}

// ReplyRepository is CRUD over the reply tree of a tweet.
type ReplyRepository interface {
	// ListReplies returns direct children of parentReplyID, or top-level
	// replies to the tweet when parentReplyID is nil. total counts rows
	// under the same filter.
	ListReplies(ctx context.Context, tweetID int64, parentReplyID *int64, opts ListOptions) ([]model.ReplyDetail, int64, error)
	GetReply(ctx context.Context, replyID int64) (*model.ReplyDetail, error)
	// Create inserts the reply, assigning ReplyID and timestamps. Returns
	// apperror.InvalidReference when ParentReplyID doesn't resolve to a
	// reply under the same tweet, apperror.NotFound when the tweet is
	// absent.
	CreateReply(ctx context.Context, reply *model.Reply) error
	// Delete removes the reply and its whole descendant subtree, gated on
	// ownership like DeleteTweet.
	DeleteReply(ctx context.Context, replyID int64, requesterID string) (bool, error)
}
