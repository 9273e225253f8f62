package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/hiroyoshii/twitter-clone-api/internal/model"
)

// interactionTable maps a kind to its table. The three relations are
// structurally identical, so one pair of methods covers like, retweet and
// bookmark — the kind only ever selects a table name from this map, never
// reaches the SQL as user input.
var interactionTable = map[model.InteractionKind]string{
	model.KindLike:     "likes",
	model.KindRetweet:  "retweets",
	model.KindBookmark: "bookmarks",
}

// interactionTables lists the table names for migration, in a fixed order.
var interactionTables = []string{"likes", "retweets", "bookmarks"}

// AddInteraction records an interaction, idempotently.
//
// Returns false only when the target tweet doesn't exist. If the row is
// already there, INSERT OR IGNORE lands on the composite primary key and
// does nothing — which is exactly the contract: a duplicate add is a
// success, including the race where two concurrent adds both pass the
// existence check. Check and insert share a transaction so the tweet
// can't vanish between them and leave an orphan row.
func (db *DB) AddInteraction(ctx context.Context, kind model.InteractionKind, tweetID int64, userID string) (bool, error) {
	table, ok := interactionTable[kind]
	if !ok {
		return false, fmt.Errorf("sqlite: unknown interaction kind %q", kind)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("sqlite: beginning tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tweets WHERE tweet_id = ?`, tweetID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking tweet %d: %w", tweetID, err)
	}
	if exists == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT OR IGNORE INTO %s (user_id, tweet_id, created_at) VALUES (?, ?, ?)`, table),
		userID, tweetID, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: adding %s for tweet %d: %w", kind, tweetID, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("sqlite: committing %s add: %w", kind, err)
	}
	return true, nil
}

// RemoveInteraction deletes the (user, tweet) row for the given kind.
// Returns false when there was nothing to remove.
func (db *DB) RemoveInteraction(ctx context.Context, kind model.InteractionKind, tweetID int64, userID string) (bool, error) {
	table, ok := interactionTable[kind]
	if !ok {
		return false, fmt.Errorf("sqlite: unknown interaction kind %q", kind)
	}

	res, err := db.conn.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE user_id = ? AND tweet_id = ?`, table),
		userID, tweetID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: removing %s for tweet %d: %w", kind, tweetID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return affected > 0, nil
}
