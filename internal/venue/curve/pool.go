package curve

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/JWBcode/lst-arb/internal/domain"
)

// get_dy(int128 i, int128 j, uint256 dx): the StableSwap exchange preview.
const getDySelector = "5e0d443f"

// Coin indices shared by the ETH/LST StableSwap pools: coin 0 is ETH, coin 1
// is the staked token.
const (
	coinETH   = 0
	coinToken = 1
)

// Client prices trades directly against Curve StableSwap pools via eth_call.
// Each token carries its own pool address; tokens without one are simply not
// listed on this venue.
type Client struct {
	caller ethereum.ContractCaller
}

var _ domain.PriceSource = (*Client)(nil)

// NewClient creates a Curve venue over the given contract caller, typically
// an *ethclient.Client.
func NewClient(caller ethereum.ContractCaller) *Client {
	return &Client{caller: caller}
}

// Name identifies the venue in quotes and logs.
func (c *Client) Name() string { return "Curve" }

// Quote previews a swap of size ETH-equivalent through the token's pool.
// Buying trades ETH into the token (price = size / tokens out); selling
// trades the token back (price = ETH out / size). Both read as ETH per token.
func (c *Client) Quote(ctx context.Context, token domain.Token, size float64, direction domain.Direction) (domain.Quote, error) {
	if size <= 0 {
		return domain.Quote{}, fmt.Errorf("curve: size %v: %w", size, domain.ErrInvalidSize)
	}
	if token.CurvePool == "" {
		return domain.Quote{}, fmt.Errorf("curve: %s has no pool: %w", token.Symbol, domain.ErrNoLiquidity)
	}

	var i, j int64
	switch direction {
	case domain.DirectionBuy:
		i, j = coinETH, coinToken
	case domain.DirectionSell:
		i, j = coinToken, coinETH
	default:
		return domain.Quote{}, fmt.Errorf("curve: direction %q: %w", direction, domain.ErrInvalidSize)
	}

	out, err := c.getDy(ctx, token.CurvePool, i, j, ethToWei(size))
	if err != nil {
		// A cancelled scan is not a dry pool.
		if ctx.Err() != nil {
			return domain.Quote{}, fmt.Errorf("curve: get_dy %s %s: %w", token.Symbol, direction, ctx.Err())
		}
		return domain.Quote{}, fmt.Errorf("curve: get_dy %s %s: %w: %v", token.Symbol, direction, domain.ErrNoLiquidity, err)
	}
	outUnits := weiToEth(out)
	if outUnits <= 0 {
		return domain.Quote{}, fmt.Errorf("curve: zero output for %s: %w", token.Symbol, domain.ErrNoLiquidity)
	}

	price := size / outUnits
	if direction == domain.DirectionSell {
		price = outUnits / size
	}

	return domain.Quote{
		Venue:     c.Name(),
		Token:     token.Symbol,
		Direction: direction,
		Size:      size,
		Price:     price,
		Source:    "curve_pool",
	}, nil
}

// getDy issues the eth_call against the pool and decodes the uint256 result.
func (c *Client) getDy(ctx context.Context, pool string, i, j int64, dx *big.Int) (*big.Int, error) {
	selector, err := hex.DecodeString(getDySelector)
	if err != nil {
		return nil, fmt.Errorf("decode selector: %w", err)
	}

	data := make([]byte, 0, 4+3*32)
	data = append(data, selector...)
	data = append(data, common.LeftPadBytes(big.NewInt(i).Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(big.NewInt(j).Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(dx.Bytes(), 32)...)

	to := common.HexToAddress(pool)
	result, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	if len(result) < 32 {
		return nil, fmt.Errorf("short return: %d bytes", len(result))
	}
	return new(big.Int).SetBytes(result[:32]), nil
}

func ethToWei(amount float64) *big.Int {
	wei, _ := new(big.Float).Mul(big.NewFloat(amount), big.NewFloat(1e18)).Int(nil)
	return wei
}

func weiToEth(wei *big.Int) float64 {
	out, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e18)).Float64()
	return out
}
