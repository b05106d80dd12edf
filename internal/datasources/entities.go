package datasources

import (
	"context"

	"github.com/mwhitworth/ratemill/internal/domain"
)

// EntityChecker verifies that a referenced entity actually exists in its
// owning table. The rated entities themselves are external domain data; this
// is the only question the rating engine ever asks about them directly.
type EntityChecker interface {
	EntityExists(ctx context.Context, ref domain.EntityRef) (bool, error)
}
