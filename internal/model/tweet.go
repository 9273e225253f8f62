package model

import "time"

// Tweet is the bare persisted record. TweetID is assigned by the database
// (monotonic auto-increment), which is what makes it usable as the tie
// breaker when two tweets share a created_at timestamp.
type Tweet struct {
	TweetID   int64     `json:"tweet_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TweetDetail is a Tweet annotated with the author's display name, the
// aggregate interaction counts, and the per-viewer interaction flags.
// The repository fills all of it in a single grouped query — handlers and
// services never assemble these fields themselves.
//
// The Is* flags are always false when no viewer is known.
type TweetDetail struct {
	Tweet
	UserName      string `json:"user_name"`
	LikeCount     int64  `json:"like_count"`
	RetweetCount  int64  `json:"retweet_count"`
	BookmarkCount int64  `json:"bookmark_count"`
	IsLiked       bool   `json:"is_liked"`
	IsRetweeted   bool   `json:"is_retweeted"`
	IsBookmarked  bool   `json:"is_bookmarked"`
}
