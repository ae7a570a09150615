// Package gateway holds the card processor clients.
package gateway

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/payment"
	"github.com/google/uuid"
)

var successRate = map[model.RiskLevel]float64{
	model.RiskLow:      0.98,
	model.RiskMedium:   0.85,
	model.RiskHigh:     0.70,
	model.RiskCritical: 0.70,
}

// Simulated approves charges at random with odds that fall as risk rises. It stands in
// for a processor client during development and demos.
type Simulated struct {
	mu   sync.Mutex
	draw func() float64
}

// NewSimulated returns a gateway drawing from a generator seeded with seed. A zero seed
// uses the auto-seeded global source.
func NewSimulated(seed uint64) *Simulated {
	if seed == 0 {
		return &Simulated{draw: rand.Float64}
	}
	r := rand.New(rand.NewPCG(seed, seed))
	return &Simulated{draw: r.Float64}
}

// NewSimulatedWith uses draw for every decision. draw must return values in [0, 1).
func NewSimulatedWith(draw func() float64) *Simulated {
	return &Simulated{draw: draw}
}

func (g *Simulated) Charge(ctx context.Context, req payment.ChargeRequest) (*model.GatewayResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	roll := g.draw()
	g.mu.Unlock()

	rate, ok := successRate[req.RiskLevel]
	if !ok {
		rate = successRate[model.RiskHigh]
	}
	if roll >= rate {
		return &model.GatewayResponse{
			Success:   false,
			ErrorCode: "CARD_DECLINED",
			Error:     "the issuer declined the charge",
		}, nil
	}

	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return &model.GatewayResponse{
		Success:              true,
		GatewayTransactionID: "gw_" + id[:16],
		AuthorizationCode:    strings.ToUpper(id[16:22]),
		ProcessingFee:        payment.ProcessingFee(req.Amount),
	}, nil
}
