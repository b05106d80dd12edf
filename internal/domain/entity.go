package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrNotFound indicates the referenced rating or entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnknownEntityType indicates a type tag with no registered entity type.
	ErrUnknownEntityType = errors.New("unknown entity type")
)

// EntityRef identifies a rated entity as a polymorphic (type tag, primary key)
// pair. The zero value references nothing.
type EntityRef struct {
	TypeTag string `json:"type"`
	ID      int64  `json:"id"`
}

func (r EntityRef) IsZero() bool {
	return r.TypeTag == "" && r.ID == 0
}

func (r EntityRef) String() string {
	return fmt.Sprintf("%s.%d", r.TypeTag, r.ID)
}

// HashedKey returns the stable digest identifying this entity across types.
// It is stored alongside every rating row so that similarity joins can match
// on a single indexed column instead of the (type, id) pair.
func (r EntityRef) HashedKey() string {
	sum := sha1.Sum([]byte(r.String()))
	return hex.EncodeToString(sum[:])
}

// EntityType describes one registered rateable type: how its rows are found
// in the relational store.
type EntityType struct {
	// Tag is the stable identifier used in entity references and URLs.
	Tag string

	// Table is the entity's table in the relational store.
	Table string

	// PKColumn is the primary key column of Table.
	PKColumn string
}

// Registry maps type tags to registered entity types. Rateable types register
// at startup; resolving an unregistered tag is an error, not a panic, since
// tags arrive from the HTTP boundary.
type Registry struct {
	mu    sync.RWMutex
	types map[string]EntityType
}

func NewRegistry() *Registry {
	return &Registry{types: map[string]EntityType{}}
}

// Register adds an entity type. Registering with an empty tag or table is a
// programmer error and panics.
func (g *Registry) Register(t EntityType) {
	if t.Tag == "" || t.Table == "" || t.PKColumn == "" {
		panic(fmt.Sprintf("invalid entity type registration: %+v", t))
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.types[t.Tag] = t
}

func (g *Registry) Lookup(tag string) (EntityType, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	t, ok := g.types[tag]
	if !ok {
		return EntityType{}, fmt.Errorf("%w: %q", ErrUnknownEntityType, tag)
	}
	return t, nil
}

// Tags returns all registered type tags in lexical order.
func (g *Registry) Tags() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	tags := make([]string, 0, len(g.types))
	for tag := range g.types {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
