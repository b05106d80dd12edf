package ratings

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/mwhitworth/ratemill/internal/datasources"
	"github.com/mwhitworth/ratemill/internal/domain"
)

// memStore is an in-memory datasources.RatingRepository with the same scope
// and join semantics as the MySQL implementation, so engine behavior can be
// exercised without a database.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	items    []domain.RatedItem
	entities map[string][]int64
}

var _ datasources.RatingRepository = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{entities: map[string][]int64{}}
}

func (s *memStore) addEntity(ref domain.EntityRef) {
	s.entities[ref.TypeTag] = append(s.entities[ref.TypeTag], ref.ID)
}

func inScope(item domain.RatedItem, scope domain.RatingScope) bool {
	if scope.UserID != "" && item.UserID != scope.UserID {
		return false
	}
	if scope.TypeTag != "" && item.Entity.TypeTag != scope.TypeTag {
		return false
	}
	if scope.Hashed != "" && item.Hashed != scope.Hashed {
		return false
	}
	return true
}

func (s *memStore) GetRating(_ context.Context, userID, hashed string) (domain.RatedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.UserID == userID && item.Hashed == hashed {
			return item, nil
		}
	}
	return domain.RatedItem{}, domain.ErrNotFound
}

func (s *memStore) ListRatings(_ context.Context, scope domain.RatingScope) ([]domain.RatedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.RatedItem
	for _, item := range s.items {
		if inScope(item, scope) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *memStore) CountRatings(_ context.Context, scope domain.RatingScope) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, item := range s.items {
		if inScope(item, scope) {
			n++
		}
	}
	return n, nil
}

func (s *memStore) AggregateScores(_ context.Context, scope domain.RatingScope) (domain.ScoreAggregates, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var agg domain.ScoreAggregates
	var scores []float64
	for _, item := range s.items {
		if inScope(item, scope) {
			scores = append(scores, item.Score)
			agg.Sum += item.Score
		}
	}
	agg.Count = int64(len(scores))
	if agg.Count == 0 {
		return agg, nil
	}

	agg.Average = agg.Sum / float64(agg.Count)
	for _, score := range scores {
		agg.Variance += (score - agg.Average) * (score - agg.Average)
	}
	agg.Variance /= float64(agg.Count)
	agg.StdDev = math.Sqrt(agg.Variance)
	return agg, nil
}

func (s *memStore) UpsertRating(_ context.Context, item domain.RatedItem) (domain.RatedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.Hashed = item.Entity.HashedKey()
	for i, existing := range s.items {
		if existing.UserID == item.UserID && existing.Hashed == item.Hashed {
			s.items[i].Score = item.Score
			return s.items[i], nil
		}
	}

	s.nextID++
	item.ID = s.nextID
	s.items = append(s.items, item)
	return item, nil
}

func (s *memStore) SaveRating(_ context.Context, item domain.RatedItem) (domain.RatedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.Hashed = item.Entity.HashedKey()
	s.nextID++
	item.ID = s.nextID
	s.items = append(s.items, item)
	return item, nil
}

func (s *memStore) DeleteRating(_ context.Context, userID, hashed string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []domain.RatedItem
	var deleted int64
	for _, item := range s.items {
		if item.UserID == userID && item.Hashed == hashed {
			deleted++
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept
	return deleted, nil
}

func (s *memStore) DeleteRatingByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *memStore) ClearRatings(_ context.Context, hashed string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []domain.RatedItem
	for _, item := range s.items {
		if item.Hashed != hashed {
			kept = append(kept, item)
		}
	}
	s.items = kept
	return nil
}

// factorFilterValue is the column value identifying a factor's own rating
// rows, factorMatchValue the value both sides must share for a pair to match.
func factorFilterValue(item domain.RatedItem, f domain.Factor) string {
	if f.IsRater() {
		return item.UserID
	}
	return item.Hashed
}

func factorMatchValue(item domain.RatedItem, f domain.Factor) string {
	if f.IsRater() {
		return item.Hashed
	}
	return item.UserID
}

func (s *memStore) matchedPairs(
	scope domain.RatingScope, a, b domain.Factor,
) ([][2]float64, error) {
	if a.IsRater() != b.IsRater() {
		return nil, fmt.Errorf("cannot compare rater and entity factors")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var pairs [][2]float64
	for _, r1 := range s.items {
		if factorFilterValue(r1, a) != a.FilterValue() || !inScope(r1, scope) {
			continue
		}
		for _, r2 := range s.items {
			if factorFilterValue(r2, b) != b.FilterValue() {
				continue
			}
			if factorMatchValue(r1, a) == factorMatchValue(r2, b) {
				pairs = append(pairs, [2]float64{r1.Score, r2.Score})
			}
		}
	}
	return pairs, nil
}

func (s *memStore) MatchedScoreDiffs(
	_ context.Context, scope domain.RatingScope, a, b domain.Factor,
) ([]float64, error) {
	pairs, err := s.matchedPairs(scope, a, b)
	if err != nil {
		return nil, err
	}

	diffs := make([]float64, 0, len(pairs))
	for _, p := range pairs {
		diffs = append(diffs, p[0]-p[1])
	}
	return diffs, nil
}

func (s *memStore) MatchedPairStats(
	_ context.Context, scope domain.RatingScope, a, b domain.Factor,
) (domain.PairStats, error) {
	pairs, err := s.matchedPairs(scope, a, b)
	if err != nil {
		return domain.PairStats{}, err
	}

	var stats domain.PairStats
	for _, p := range pairs {
		stats.Sum1 += p[0]
		stats.Sum2 += p[1]
		stats.SquareSum1 += p[0] * p[0]
		stats.SquareSum2 += p[1] * p[1]
		stats.ProductSum += p[0] * p[1]
		stats.SampleSize++
	}
	return stats, nil
}

func (s *memStore) DistinctRatedTypes(
	_ context.Context, scope domain.RatingScope,
) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]bool{}
	for _, item := range s.items {
		if inScope(item, scope) {
			seen[item.Entity.TypeTag] = true
		}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

func (s *memStore) DistinctRatedEntities(
	_ context.Context, scope domain.RatingScope, typeTag string,
) ([]domain.EntityRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[int64]bool{}
	for _, item := range s.items {
		if item.Entity.TypeTag == typeTag && inScope(item, scope) {
			seen[item.Entity.ID] = true
		}
	}

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	refs := make([]domain.EntityRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, domain.EntityRef{TypeTag: typeTag, ID: id})
	}
	return refs, nil
}

func (s *memStore) RankEntitiesByRating(
	_ context.Context, typeTag string, opts domain.RankOptions,
) ([]domain.RankedEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := map[int64]bool{}
	if len(opts.CandidateIDs) > 0 {
		for _, id := range opts.CandidateIDs {
			candidates[id] = true
		}
	}

	var ranked []domain.RankedEntity
	for _, id := range s.entities[typeTag] {
		if len(candidates) > 0 && !candidates[id] {
			continue
		}

		var sum, count float64
		for _, item := range s.items {
			if item.Entity.TypeTag != typeTag || item.Entity.ID != id {
				continue
			}
			if !inScope(item, opts.Scope) {
				continue
			}
			sum += item.Score
			count++
		}

		var score float64
		switch opts.Aggregator {
		case domain.AggregateAverage:
			if count > 0 {
				score = sum / count
			}
		case domain.AggregateCount:
			score = count
		default:
			score = sum
		}

		ranked = append(ranked, domain.RankedEntity{
			Entity: domain.EntityRef{TypeTag: typeTag, ID: id},
			Score:  score,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			if opts.Ascending {
				return ranked[i].Score < ranked[j].Score
			}
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Entity.ID < ranked[j].Entity.ID
	})

	if opts.Limit > 0 && len(ranked) > opts.Limit {
		ranked = ranked[:opts.Limit]
	}
	return ranked, nil
}

// memSimilar is an in-memory datasources.SimilarItemRepository.
type memSimilar struct {
	mu    sync.Mutex
	items []domain.SimilarItem
}

var _ datasources.SimilarItemRepository = (*memSimilar)(nil)

func newMemSimilar() *memSimilar {
	return &memSimilar{}
}

func (s *memSimilar) ListSimilarItems(
	_ context.Context, entity domain.EntityRef,
) ([]domain.SimilarItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.SimilarItem
	for _, item := range s.items {
		if item.Entity == entity {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (s *memSimilar) UpsertSimilarItem(_ context.Context, item domain.SimilarItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.items {
		if existing.Entity == item.Entity && existing.Similar == item.Similar {
			s.items[i].Score = item.Score
			return nil
		}
	}
	s.items = append(s.items, item)
	return nil
}

// Fixture data shared by the engine tests: seven raters scoring six foods,
// with some gaps. Zero means unrated.
var (
	fixtureUsers = []string{"user_a", "user_b", "user_c", "user_d", "user_e", "user_f", "user_g"}

	fixtureScores = map[string][]float64{
		"user_a": {2.5, 3.5, 3.0, 3.5, 2.5, 3.0},
		"user_b": {3.0, 3.5, 1.5, 5.0, 3.5, 3.0},
		"user_c": {2.5, 3.0, 0, 3.5, 0, 4.0},
		"user_d": {0, 3.5, 3.0, 4.0, 2.5, 4.5},
		"user_e": {3.0, 4.0, 2.0, 3.0, 2.0, 3.0},
		"user_f": {3.0, 4.0, 0, 5.0, 3.5, 3.0},
		"user_g": {0, 4.5, 0, 4.0, 1.0, 0},
	}
)

func foodRef(id int64) domain.EntityRef {
	return domain.EntityRef{TypeTag: "food", ID: id}
}

func newFixtureStore() *memStore {
	store := newMemStore()
	ctx := context.Background()

	for id := int64(1); id <= 6; id++ {
		store.addEntity(foodRef(id))
	}

	for _, user := range fixtureUsers {
		for i, score := range fixtureScores[user] {
			if score == 0 {
				continue
			}
			_, err := store.UpsertRating(ctx, domain.RatedItem{
				UserID: user,
				Entity: foodRef(int64(i + 1)),
				Score:  score,
			})
			if err != nil {
				panic(err)
			}
		}
	}
	return store
}

func raterFactors() []domain.Factor {
	factors := make([]domain.Factor, 0, len(fixtureUsers))
	for _, user := range fixtureUsers {
		factors = append(factors, domain.RaterFactor(user))
	}
	return factors
}

func foodFactors() []domain.Factor {
	factors := make([]domain.Factor, 0, 6)
	for id := int64(1); id <= 6; id++ {
		factors = append(factors, domain.EntityFactor(foodRef(id)))
	}
	return factors
}
