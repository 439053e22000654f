package domain

// Token identifies one LST/LRT asset under watch. The core treats Address and
// CurvePool as opaque keys; their on-chain meaning belongs to the venue
// clients.
type Token struct {
	Symbol    string `json:"symbol"`
	Address   string `json:"address"`
	CurvePool string `json:"curve_pool,omitempty"` // empty when the token has no dedicated Curve pool
}
