package recommendation

import (
	"context"
	"fmt"
	"testing"

	entitydto "github.com/fekuna/omnipos-order-service/internal/entity/dto"
	entityusecase "github.com/fekuna/omnipos-order-service/internal/entity/usecase"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/order"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-order-service/internal/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orgID = "7f1c2a4e-9b7d-4c55-8a11-2f0f4b8c9d01"

func TestRecommend(t *testing.T) {
	ctx := context.Background()
	uc := entityusecase.NewEntityUseCase(storetest.NewEntityRepo(), logger.NewNop())

	var ids []string
	for i := 1; i <= 5; i++ {
		p, err := uc.CreateEntity(ctx, &entitydto.CreateEntityInput{
			OrganizationID: orgID,
			EntityType:     model.EntityTypeProduct,
			EntityName:     fmt.Sprintf("Product %d", i),
			EntityCode:     fmt.Sprintf("P%d", i),
		})
		require.NoError(t, err)
		require.NoError(t, uc.SetAttribute(ctx, orgID, p.ID, entitydto.AttributeInput{
			FieldName: order.AttrBasePrice, Value: model.Number(float64(i)),
		}))
		ids = append(ids, p.ID)
	}

	h := NewHeuristic(uc)

	t.Run("skips cart items and caps the list", func(t *testing.T) {
		// newest first: 5, 4, 3, 2, 1; product 5 is in the cart
		recs, err := h.Recommend(ctx, order.RecommendationRequest{OrganizationID: orgID, CurrentItems: []string{ids[4]}})
		require.NoError(t, err)
		require.Len(t, recs, 3)

		assert.Equal(t, ids[3], recs[0].ProductID)
		assert.Equal(t, 4.0, recs[0].Price)
		assert.Equal(t, []float64{0.85, 0.75, 0.65}, []float64{recs[0].Confidence, recs[1].Confidence, recs[2].Confidence})
		for _, r := range recs {
			assert.NotEmpty(t, r.Reason)
		}
	})

	t.Run("larger limits reuse the last confidence", func(t *testing.T) {
		recs, err := h.Recommend(ctx, order.RecommendationRequest{OrganizationID: orgID, Limit: 5})
		require.NoError(t, err)
		require.Len(t, recs, 5)
		assert.Equal(t, 0.65, recs[4].Confidence)
	})

	t.Run("unknown organization gets nothing", func(t *testing.T) {
		recs, err := h.Recommend(ctx, order.RecommendationRequest{OrganizationID: "11111111-2222-4333-8444-555555555555"})
		require.NoError(t, err)
		assert.Empty(t, recs)
	})
}
