package domain

import "time"

// RatedItem is one persisted rating fact: a rater assigned a score to an
// entity. Score is signed and has no fixed range; the scale is whatever the
// surrounding application uses (-1/+1 voting, 1-5 stars, ...).
type RatedItem struct {
	ID      int64     `json:"-"`
	UserID  string    `json:"user_id"`
	Entity  EntityRef `json:"entity"`
	Hashed  string    `json:"-"`
	Score   float64   `json:"score"`
	RatedAt time.Time `json:"rated_at"`
}

// SimilarItem is one row of the precomputed item-item similarity cache:
// Similar is among the top-N entities most similar to Entity. Rows are
// derived data and fully replaceable by a recompute.
type SimilarItem struct {
	Entity  EntityRef `json:"entity"`
	Similar EntityRef `json:"similar"`
	Score   float64   `json:"score"`
}

// RatingScope restricts which rating rows an operation sees. Zero-value
// fields do not filter. The zero scope is the whole ratings table.
type RatingScope struct {
	// UserID restricts to ratings by one rater.
	UserID string

	// TypeTag restricts to ratings of one entity type.
	TypeTag string

	// Hashed restricts to ratings of one entity.
	Hashed string
}

func (s RatingScope) IsUnrestricted() bool {
	return s == RatingScope{}
}

// ForUser returns a copy of the scope further restricted to one rater.
func (s RatingScope) ForUser(userID string) RatingScope {
	s.UserID = userID
	return s
}

// ForType returns a copy of the scope further restricted to one entity type.
func (s RatingScope) ForType(typeTag string) RatingScope {
	s.TypeTag = typeTag
	return s
}

// ForEntity returns a copy of the scope further restricted to one entity.
func (s RatingScope) ForEntity(ref EntityRef) RatingScope {
	s.Hashed = ref.HashedKey()
	return s
}

// ScoreAggregates holds the standard aggregate statistics over a set of
// rating scores. When Count is zero the remaining fields are meaningless;
// callers surface "no ratings" rather than zeros.
type ScoreAggregates struct {
	Count    int64
	Sum      float64
	Average  float64
	StdDev   float64
	Variance float64
}

// Aggregator selects the aggregate used to rank entities by their ratings.
type Aggregator string

const (
	AggregateSum     Aggregator = "sum"
	AggregateAverage Aggregator = "average"
	AggregateCount   Aggregator = "count"
)

// RankOptions controls RankEntitiesByRating.
type RankOptions struct {
	Aggregator Aggregator
	Ascending  bool

	// CandidateIDs, when non-empty, restricts ranking to these entity
	// primary keys.
	CandidateIDs []int64

	// Scope restricts which rating rows contribute to the aggregate.
	Scope RatingScope

	// Limit caps the number of returned entities; zero means no cap.
	Limit int
}

// RankedEntity is one entity with its rating aggregate. Entities without any
// in-scope rating rank with a zero aggregate.
type RankedEntity struct {
	Entity EntityRef `json:"entity"`
	Score  float64   `json:"score"`
}

// Recommendation pairs a candidate entity with its similarity-weighted score.
type Recommendation struct {
	Score  float64   `json:"score"`
	Entity EntityRef `json:"entity"`
}
