package handler

import (
	"context"
	"math/big"
	"net/http"
	"time"

	"github.com/JWBcode/lst-arb/internal/domain"
)

// ChainProber reports live chain state. *ethclient.Client satisfies it.
type ChainProber interface {
	BlockNumber(ctx context.Context) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// probeTimeout bounds the RPC round-trip for the health probe so a dead node
// cannot stall the endpoint.
const probeTimeout = 3 * time.Second

// NetworkHandler describes the venues and tokens this instance scans, so a
// dashboard can render the universe without hardcoding it.
type NetworkHandler struct {
	priceSource string
	venues      []string
	tokens      []domain.Token
	prober      ChainProber
}

// NewNetworkHandler creates a NetworkHandler. priceSource names the pricing
// backend ("live" or "simulated"); venues are the venue names in scan order.
func NewNetworkHandler(priceSource string, venues []string, tokens []domain.Token) *NetworkHandler {
	return &NetworkHandler{priceSource: priceSource, venues: venues, tokens: tokens}
}

// WithChainProber enables the live RPC health section of the response.
func (h *NetworkHandler) WithChainProber(p ChainProber) *NetworkHandler {
	h.prober = p
	return h
}

// GetNetwork responds with the configured venue and token universe, plus live
// RPC health when a chain prober is wired.
// GET /api/network
func (h *NetworkHandler) GetNetwork(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"price_source": h.priceSource,
		"venues":       h.venues,
		"tokens":       h.tokens,
	}
	if h.prober != nil {
		body["rpc"] = h.probeRPC(r.Context())
	}
	writeJSON(w, http.StatusOK, body)
}

// probeRPC measures one eth_blockNumber round-trip and, when the node is
// healthy, also reports the suggested gas price.
func (h *NetworkHandler) probeRPC(ctx context.Context) map[string]any {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	block, err := h.prober.BlockNumber(ctx)
	latency := time.Since(start)

	if err != nil {
		return map[string]any{
			"healthy":    false,
			"latency_ms": latency.Milliseconds(),
			"error":      err.Error(),
		}
	}

	out := map[string]any{
		"healthy":      true,
		"latency_ms":   latency.Milliseconds(),
		"block_number": block,
	}
	if gas, err := h.prober.SuggestGasPrice(ctx); err == nil && gas != nil {
		gwei, _ := new(big.Float).Quo(new(big.Float).SetInt(gas), big.NewFloat(1e9)).Float64()
		out["gas_price_gwei"] = gwei
	}
	return out
}
