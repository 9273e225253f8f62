package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/hiroyoshii/twitter-clone-api/internal/apperror"
	"github.com/hiroyoshii/twitter-clone-api/internal/model"
	"github.com/hiroyoshii/twitter-clone-api/internal/repository"
)

// Compile-time check that *DB implements repository.ReplyRepository.
var _ repository.ReplyRepository = (*DB)(nil)

// replyDetailQuery annotates replies with the author name and the direct
// child count. The count is a one-level lookahead — a LEFT JOIN back onto
// replies via parent_reply_id, grouped per reply — not a subtree total.
// Like the tweet queries, it is one grouped query per call instead of a
// count sub-query per row.
func replyDetailQuery() sq.SelectBuilder {
	return sq.Select(
		"r.reply_id",
		"r.user_id",
		"u.user_name",
		"r.tweet_id",
		"r.parent_reply_id",
		"r.content",
		"r.created_at",
		"r.updated_at",
		"COUNT(c.reply_id) AS child_reply_count",
	).
		From("replies r").
		Join("users u ON u.user_id = r.user_id").
		LeftJoin("replies c ON c.parent_reply_id = r.reply_id").
		GroupBy("r.reply_id", "u.user_name")
}

func scanReplyDetail(row sq.RowScanner) (*model.ReplyDetail, error) {
	var (
		d      model.ReplyDetail
		parent sql.NullInt64
	)
	err := row.Scan(
		&d.ReplyID,
		&d.UserID,
		&d.UserName,
		&d.TweetID,
		&parent,
		&d.Content,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.ChildReplyCount,
	)
	if err != nil {
		return nil, err
	}
	if parent.Valid {
		p := parent.Int64
		d.ParentReplyID = &p
	}
	return &d, nil
}

// ListReplies returns one page of a tweet's replies at a single tree
// level: top-level replies when parentReplyID is nil, otherwise the direct
// children of that reply. total counts rows under the same filter.
func (db *DB) ListReplies(ctx context.Context, tweetID int64, parentReplyID *int64, opts repository.ListOptions) ([]model.ReplyDetail, int64, error) {
	builder := replyDetailQuery().Where(sq.Eq{"r.tweet_id": tweetID})

	// sq.Eq renders a nil value as IS NULL, but only for untyped nil —
	// spell both branches out instead of leaning on that.
	countFilter := `parent_reply_id IS NULL`
	countArgs := []any{tweetID}
	if parentReplyID == nil {
		builder = builder.Where("r.parent_reply_id IS NULL")
	} else {
		builder = builder.Where(sq.Eq{"r.parent_reply_id": *parentReplyID})
		countFilter = `parent_reply_id = ?`
		countArgs = append(countArgs, *parentReplyID)
	}

	query, args, err := builder.
		OrderBy("r.created_at DESC", "r.reply_id DESC").
		Limit(uint64(opts.Limit)).
		Offset(uint64(opts.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: building reply list query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing replies for tweet %d: %w", tweetID, err)
	}
	defer rows.Close()

	replies := make([]model.ReplyDetail, 0, opts.Limit)
	for rows.Next() {
		d, err := scanReplyDetail(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning reply row: %w", err)
		}
		replies = append(replies, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating replies: %w", err)
	}

	var total int64
	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM replies WHERE tweet_id = ? AND `+countFilter,
		countArgs...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting replies for tweet %d: %w", tweetID, err)
	}

	return replies, total, nil
}

// GetReply returns a single annotated reply, or (nil, nil) if it doesn't exist.
func (db *DB) GetReply(ctx context.Context, replyID int64) (*model.ReplyDetail, error) {
	query, args, err := replyDetailQuery().
		Where(sq.Eq{"r.reply_id": replyID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building reply get query: %w", err)
	}

	d, err := scanReplyDetail(db.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: getting reply %d: %w", replyID, err)
	}
	return d, nil
}

// Create inserts a reply after validating its references.
//
// Invariant enforced here: a parent reply, when given, must belong to the
// same tweet — the tree never crosses tweet boundaries. Violations come
// back as InvalidReference (400), a missing tweet as NotFound (404).
// Both checks and the insert share one transaction.
func (db *DB) CreateReply(ctx context.Context, reply *model.Reply) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning tx: %w", err)
	}
	defer tx.Rollback()

	if reply.ParentReplyID != nil {
		var parentTweetID int64
		err = tx.QueryRowContext(ctx,
			`SELECT tweet_id FROM replies WHERE reply_id = ?`, *reply.ParentReplyID,
		).Scan(&parentTweetID)
		if err == sql.ErrNoRows || (err == nil && parentTweetID != reply.TweetID) {
			return apperror.InvalidReference("parent reply does not exist or does not belong to this tweet")
		}
		if err != nil {
			return fmt.Errorf("sqlite: checking parent reply %d: %w", *reply.ParentReplyID, err)
		}
	}

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tweets WHERE tweet_id = ?`, reply.TweetID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqlite: checking tweet %d: %w", reply.TweetID, err)
	}
	if exists == 0 {
		return apperror.NotFound("tweet", reply.TweetID)
	}

	now := time.Now().UTC()
	reply.CreatedAt = now
	reply.UpdatedAt = now

	res, err := tx.ExecContext(ctx,
		`INSERT INTO replies (user_id, tweet_id, parent_reply_id, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		reply.UserID,
		reply.TweetID,
		nullInt64(reply.ParentReplyID),
		reply.Content,
		reply.CreatedAt,
		reply.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting reply: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading reply insert id: %w", err)
	}
	reply.ReplyID = id

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing reply insert: %w", err)
	}
	return nil
}

// DeleteReply removes a reply if requesterID owns it. Same merged
// absent-or-not-owner contract as tweet deletion. The descendant subtree
// goes with it: the self-referential ON DELETE CASCADE walks the tree
// inside SQLite, so an untrusted tree depth never touches the Go stack.
func (db *DB) DeleteReply(ctx context.Context, replyID int64, requesterID string) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM replies WHERE reply_id = ? AND user_id = ?`,
		replyID, requesterID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting reply %d: %w", replyID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return affected > 0, nil
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
