package model

// InteractionKind selects one of the three (user, tweet) set-membership
// relations. The three are structurally identical, so repositories and
// services take the kind as a parameter instead of tripling their API.
type InteractionKind string

const (
	KindLike     InteractionKind = "like"
	KindRetweet  InteractionKind = "retweet"
	KindBookmark InteractionKind = "bookmark"
)

// Valid reports whether k is one of the three known kinds. The kind
// reaches the repository as part of a table name, so it must never be
// taken from user input without this check.
func (k InteractionKind) Valid() bool {
	switch k {
	case KindLike, KindRetweet, KindBookmark:
		return true
	}
	return false
}
