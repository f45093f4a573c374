package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/domain"
	"github.com/jiyoung145900-png/daisy-vip/pkg/logger"
)

// DefaultSalt seeds the deterministic derivation. Changing it changes every
// future outcome, so it is fixed for the life of the event.
const DefaultSalt = "daisy-secret"

// Resolver computes the two winning items for a round, preferring an
// administrator override over the deterministic derivation.
type Resolver struct {
	overrides domain.OverrideRepository
	catalog   domain.Catalog
	salt      string
}

// NewResolver creates a resolver over the given override store and catalog
func NewResolver(overrides domain.OverrideRepository, catalog domain.Catalog, salt string) *Resolver {
	if salt == "" {
		salt = DefaultSalt
	}
	return &Resolver{overrides: overrides, catalog: catalog, salt: salt}
}

// Resolve returns the round's two winning items in order. For a fixed round
// and fixed override state the result is identical on every call, including
// across process restarts; the caller persists it, not the resolver.
func (r *Resolver) Resolve(ctx context.Context, roundID int64) ([]domain.Item, error) {
	names, err := r.overrides.Get(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up override for round %d: %w", roundID, err)
	}

	picked := make([]domain.Item, 0, 2)
	for _, name := range names {
		if len(picked) == 2 {
			break
		}
		item, ok := r.catalog.Find(name)
		if !ok {
			// Stale override naming an item no longer in the catalog:
			// drop it rather than blocking the round.
			logger.Warn(ctx).
				Int64("round_id", roundID).
				Str("item", name).
				Msg("Override names unknown item, dropping")
			continue
		}
		picked = append(picked, item)
	}

	if len(picked) < 2 {
		for _, item := range r.Derive(roundID) {
			if len(picked) == 2 {
				break
			}
			if containsItem(picked, item.Name) {
				continue
			}
			picked = append(picked, item)
		}
	}

	return picked, nil
}

// Derive ranks the whole catalog by luck score for a round, highest first.
// Ties keep catalog order (the sort is stable).
func (r *Resolver) Derive(roundID int64) []domain.Item {
	ranked := make([]domain.Item, len(r.catalog))
	copy(ranked, r.catalog)

	scores := make(map[string]float64, len(ranked))
	for _, item := range ranked {
		scores[item.Name] = luckScore(roundID, item.Name, r.salt)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i].Name] > scores[ranked[j].Name]
	})
	return ranked
}

// luckScore maps (round, item name, salt) into [0, 100). The hash is the
// 5-shift polynomial rolling hash with int32 wraparound; the sine transform
// smooths it. Historical outcomes depend on this exact arithmetic.
func luckScore(roundID int64, name, salt string) float64 {
	combined := strconv.FormatInt(roundID, 10) + name + salt

	var hash int32
	for _, c := range combined {
		hash = hash<<5 - hash + int32(c)
	}

	return math.Mod(math.Abs(math.Sin(float64(hash)*0.123456+float64(roundID))*10000), 100)
}

func containsItem(items []domain.Item, name string) bool {
	for _, item := range items {
		if item.Name == name {
			return true
		}
	}
	return false
}
