package model

import "time"

// Reply is one node of the reply tree under a tweet.
//
// The tree is stored flat: every reply carries its root TweetID plus an
// optional ParentReplyID. A nil parent means the reply is a direct answer
// to the tweet. Traversal (child counts, cascade delete) happens through
// indexed lookups on parent_reply_id, never through in-memory pointers.
type Reply struct {
	ReplyID       int64     `json:"reply_id"`
	UserID        string    `json:"user_id"`
	TweetID       int64     `json:"tweet_id"`
	ParentReplyID *int64    `json:"parent_reply_id"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ReplyDetail adds the author's display name and the direct child count.
// ChildReplyCount is a one-level lookahead (how many replies point at this
// one as parent), not a subtree total.
type ReplyDetail struct {
	Reply
	UserName        string `json:"user_name"`
	ChildReplyCount int64  `json:"child_reply_count"`
}
