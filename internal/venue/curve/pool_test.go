package curve

import (
	"context"
	"encoding/hex"
	"errors"
	"math"
	"math/big"
	"testing"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/JWBcode/lst-arb/internal/domain"
)

var stETH = domain.Token{
	Symbol:    "stETH",
	Address:   "0xae7ab96520DE3A18E5e111B5EaAb095312D7fE84",
	CurvePool: "0xDC24316b9AE028F1497c275EB9192a3Ea0f67022",
}

// fakeCaller scripts eth_call results and records the last call for
// inspection.
type fakeCaller struct {
	result  []byte
	err     error
	lastMsg ethereum.CallMsg
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.lastMsg = msg
	return f.result, f.err
}

func uint256Word(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

func TestQuoteBuyEncodesCalldata(t *testing.T) {
	// 10 ETH in, 9.98 stETH out.
	out := ethToWei(9.98)
	caller := &fakeCaller{result: uint256Word(out)}
	c := NewClient(caller)

	q, err := c.Quote(context.Background(), stETH, 10, domain.DirectionBuy)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}

	data := caller.lastMsg.Data
	if len(data) != 4+3*32 {
		t.Fatalf("calldata length = %d, want %d", len(data), 4+3*32)
	}
	if got := hex.EncodeToString(data[:4]); got != getDySelector {
		t.Errorf("selector = %s, want %s", got, getDySelector)
	}
	i := new(big.Int).SetBytes(data[4:36])
	j := new(big.Int).SetBytes(data[36:68])
	dx := new(big.Int).SetBytes(data[68:100])
	if i.Int64() != coinETH || j.Int64() != coinToken {
		t.Errorf("buy direction encoded i=%v j=%v, want 0 -> 1", i, j)
	}
	if dx.Cmp(ethToWei(10)) != 0 {
		t.Errorf("dx = %v, want 10 ETH in wei", dx)
	}
	if caller.lastMsg.To == nil || *caller.lastMsg.To != common.HexToAddress(stETH.CurvePool) {
		t.Errorf("call target = %v, want pool address", caller.lastMsg.To)
	}

	want := 10.0 / 9.98
	if math.Abs(q.Price-want) > 1e-12 {
		t.Errorf("Price = %v, want %v", q.Price, want)
	}
}

func TestQuoteSellSwapsIndices(t *testing.T) {
	// 10 stETH in, 9.97 ETH out.
	caller := &fakeCaller{result: uint256Word(ethToWei(9.97))}
	c := NewClient(caller)

	q, err := c.Quote(context.Background(), stETH, 10, domain.DirectionSell)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}

	data := caller.lastMsg.Data
	i := new(big.Int).SetBytes(data[4:36])
	j := new(big.Int).SetBytes(data[36:68])
	if i.Int64() != coinToken || j.Int64() != coinETH {
		t.Errorf("sell direction encoded i=%v j=%v, want 1 -> 0", i, j)
	}

	want := 9.97 / 10.0
	if math.Abs(q.Price-want) > 1e-12 {
		t.Errorf("Price = %v, want %v", q.Price, want)
	}
}

func TestQuoteCallFailureIsNoLiquidity(t *testing.T) {
	caller := &fakeCaller{err: errors.New("execution reverted")}
	c := NewClient(caller)

	_, err := c.Quote(context.Background(), stETH, 10, domain.DirectionBuy)
	if !errors.Is(err, domain.ErrNoLiquidity) {
		t.Fatalf("err = %v, want ErrNoLiquidity", err)
	}
}

func TestQuoteCancelledContextPropagates(t *testing.T) {
	caller := &fakeCaller{err: context.Canceled}
	c := NewClient(caller)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Quote(ctx, stETH, 10, domain.DirectionBuy)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if errors.Is(err, domain.ErrNoLiquidity) {
		t.Fatal("shutdown must not be reported as missing liquidity")
	}
}

func TestQuoteZeroOutputIsNoLiquidity(t *testing.T) {
	caller := &fakeCaller{result: uint256Word(big.NewInt(0))}
	c := NewClient(caller)

	_, err := c.Quote(context.Background(), stETH, 10, domain.DirectionBuy)
	if !errors.Is(err, domain.ErrNoLiquidity) {
		t.Fatalf("err = %v, want ErrNoLiquidity", err)
	}
}

func TestQuoteTokenWithoutPool(t *testing.T) {
	c := NewClient(&fakeCaller{})
	noPool := domain.Token{Symbol: "ezETH", Address: "0x1"}

	_, err := c.Quote(context.Background(), noPool, 10, domain.DirectionBuy)
	if !errors.Is(err, domain.ErrNoLiquidity) {
		t.Fatalf("err = %v, want ErrNoLiquidity", err)
	}
}

func TestQuoteRejectsInvalidSize(t *testing.T) {
	c := NewClient(&fakeCaller{})
	_, err := c.Quote(context.Background(), stETH, -1, domain.DirectionBuy)
	if !errors.Is(err, domain.ErrInvalidSize) {
		t.Fatalf("err = %v, want ErrInvalidSize", err)
	}
}
