package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/hiroyoshii/twitter-clone-api/internal/model"
	"github.com/hiroyoshii/twitter-clone-api/internal/repository"
)

// Compile-time check that *DB implements repository.TweetRepository.
var _ repository.TweetRepository = (*DB)(nil)

// tweetDetailQuery builds the one grouped query that annotates tweets with
// interaction counts and per-viewer flags.
//
// SHAPE:
// One LEFT JOIN per interaction table, then GROUP BY tweet. Because the
// three joins multiply rows (a tweet with 2 likes and 3 retweets yields 6
// joined rows), the counts must be COUNT(DISTINCT <kind>.user_id) — the
// composite (user_id, tweet_id) key guarantees distinct user_ids equal the
// row count per kind. The viewer flags ride the same joins: MAX(CASE WHEN
// user_id = viewer) is 1 exactly when the viewer's row exists.
//
// This is deliberately a single query per call. The naive alternative —
// three count sub-queries plus three existence sub-queries per tweet — is
// an N+1 pattern that falls over as soon as a page has real data behind it.
//
// An anonymous viewer binds viewerID = "", which can never equal a stored
// handle (3–50 chars), so the flags come back false without needing a
// second query shape.
func tweetDetailQuery(viewerID string) sq.SelectBuilder {
	return sq.Select(
		"t.tweet_id",
		"t.user_id",
		"u.user_name",
		"t.content",
		"t.created_at",
		"t.updated_at",
		"COUNT(DISTINCT l.user_id) AS like_count",
		"COUNT(DISTINCT rt.user_id) AS retweet_count",
		"COUNT(DISTINCT b.user_id) AS bookmark_count",
	).
		Column(sq.Expr("COALESCE(MAX(CASE WHEN l.user_id = ? THEN 1 ELSE 0 END), 0) AS is_liked", viewerID)).
		Column(sq.Expr("COALESCE(MAX(CASE WHEN rt.user_id = ? THEN 1 ELSE 0 END), 0) AS is_retweeted", viewerID)).
		Column(sq.Expr("COALESCE(MAX(CASE WHEN b.user_id = ? THEN 1 ELSE 0 END), 0) AS is_bookmarked", viewerID)).
		From("tweets t").
		Join("users u ON u.user_id = t.user_id").
		LeftJoin("likes l ON l.tweet_id = t.tweet_id").
		LeftJoin("retweets rt ON rt.tweet_id = t.tweet_id").
		LeftJoin("bookmarks b ON b.tweet_id = t.tweet_id").
		GroupBy("t.tweet_id", "u.user_name")
}

func scanTweetDetail(row sq.RowScanner) (*model.TweetDetail, error) {
	var (
		d                              model.TweetDetail
		isLiked, isRetweeted, isMarked int
	)
	err := row.Scan(
		&d.TweetID,
		&d.UserID,
		&d.UserName,
		&d.Content,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.LikeCount,
		&d.RetweetCount,
		&d.BookmarkCount,
		&isLiked,
		&isRetweeted,
		&isMarked,
	)
	if err != nil {
		return nil, err
	}
	d.IsLiked = isLiked == 1
	d.IsRetweeted = isRetweeted == 1
	d.IsBookmarked = isMarked == 1
	return &d, nil
}

// ListTweets returns one page of tweets, newest first, with the unfiltered total.
// Ties on created_at break by tweet_id descending — the timestamp
// resolution isn't guaranteed unique, the auto-increment id is.
func (db *DB) ListTweets(ctx context.Context, opts repository.ListOptions, viewerID string) ([]model.TweetDetail, int64, error) {
	query, args, err := tweetDetailQuery(viewerID).
		OrderBy("t.created_at DESC", "t.tweet_id DESC").
		Limit(uint64(opts.Limit)).
		Offset(uint64(opts.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: building tweet list query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing tweets: %w", err)
	}
	defer rows.Close()

	tweets := make([]model.TweetDetail, 0, opts.Limit)
	for rows.Next() {
		d, err := scanTweetDetail(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning tweet row: %w", err)
		}
		tweets = append(tweets, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating tweets: %w", err)
	}

	// total is the count of ALL tweets, not the page — clients use it to
	// compute the number of pages.
	var total int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM tweets`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting tweets: %w", err)
	}

	return tweets, total, nil
}

// GetTweet returns a single annotated tweet, or (nil, nil) if it doesn't exist.
func (db *DB) GetTweet(ctx context.Context, tweetID int64, viewerID string) (*model.TweetDetail, error) {
	query, args, err := tweetDetailQuery(viewerID).
		Where(sq.Eq{"t.tweet_id": tweetID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building tweet get query: %w", err)
	}

	d, err := scanTweetDetail(db.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: getting tweet %d: %w", tweetID, err)
	}
	return d, nil
}

// CreateTweet inserts a new tweet and fills in TweetID and the timestamps.
func (db *DB) CreateTweet(ctx context.Context, tweet *model.Tweet) error {
	now := time.Now().UTC()
	tweet.CreatedAt = now
	tweet.UpdatedAt = now

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO tweets (user_id, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?)`,
		tweet.UserID,
		tweet.Content,
		tweet.CreatedAt,
		tweet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting tweet: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading tweet insert id: %w", err)
	}
	tweet.TweetID = id
	return nil
}

// DeleteTweet removes a tweet if requesterID owns it. The ownership predicate
// lives in the WHERE clause, so "absent" and "not yours" are the same
// zero-rows-affected outcome — deliberate, per the anti-enumeration rule.
// Likes, retweets, bookmarks and the whole reply tree go with it via the
// declared cascades.
func (db *DB) DeleteTweet(ctx context.Context, tweetID int64, requesterID string) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM tweets WHERE tweet_id = ? AND user_id = ?`,
		tweetID, requesterID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting tweet %d: %w", tweetID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return affected > 0, nil
}
