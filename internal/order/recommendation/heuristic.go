// Package recommendation suggests products to add to an order.
package recommendation

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/entity"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/order"
)

const defaultLimit = 3

type slot struct {
	confidence float64
	reason     string
}

// Confidence drops with rank. Ranks beyond the table reuse its last slot.
var slots = []slot{
	{0.85, "Popular with customers who ordered similar items"},
	{0.75, "Frequently added to orders like this one"},
	{0.65, "Pairs well with your current selection"},
}

// Heuristic recommends active products that are not already in the cart, newest first.
type Heuristic struct {
	entities entity.UseCase
}

func NewHeuristic(entities entity.UseCase) *Heuristic {
	return &Heuristic{entities: entities}
}

func (h *Heuristic) Recommend(ctx context.Context, req order.RecommendationRequest) ([]model.Recommendation, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	products, err := h.entities.ListEntities(ctx, req.OrganizationID, model.EntityTypeProduct)
	if err != nil {
		return nil, err
	}

	inCart := make(map[string]struct{}, len(req.CurrentItems))
	for _, id := range req.CurrentItems {
		inCart[id] = struct{}{}
	}

	candidates := make([]model.Entity, 0, limit)
	for _, p := range products {
		if _, ok := inCart[p.ID]; ok {
			continue
		}
		candidates = append(candidates, p)
		if len(candidates) == limit {
			break
		}
	}
	if len(candidates) == 0 {
		return []model.Recommendation{}, nil
	}

	ids := make([]string, 0, len(candidates))
	for _, p := range candidates {
		ids = append(ids, p.ID)
	}
	attrs, err := h.entities.GetAttributesByEntities(ctx, ids)
	if err != nil {
		return nil, err
	}

	recs := make([]model.Recommendation, 0, len(candidates))
	for i, p := range candidates {
		s := slots[min(i, len(slots)-1)]
		recs = append(recs, model.Recommendation{
			ProductID:   p.ID,
			ProductName: p.EntityName,
			Price:       attrs[p.ID].Number(order.AttrBasePrice),
			Confidence:  s.confidence,
			Reason:      s.reason,
		})
	}
	return recs, nil
}
