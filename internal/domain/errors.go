package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrNoLiquidity  = errors.New("no liquidity route")
	ErrRateLimited  = errors.New("rate limited")
	ErrInvalidSize  = errors.New("invalid trade size")
	ErrUnknownToken = errors.New("unknown token")
)
