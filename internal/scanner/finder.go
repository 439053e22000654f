package scanner

import (
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/JWBcode/lst-arb/internal/domain"
)

// FinderConfig holds the economics applied to every candidate route.
type FinderConfig struct {
	MinSpreadBps     float64 // minimum buy/sell spread before a pair is considered
	FlatCost         float64 // fixed cost per trade in ETH (gas estimate)
	FlashLoanFeeRate float64 // proportional fee on borrowed principal
}

// Finder enumerates ordered venue pairs at every mapped size and prices each
// route as a flash-loan round trip: borrow the principal, buy on one venue,
// sell on the other, repay with fee. Routes below the minimum spread are
// dropped; unprofitable routes above it are kept so the dashboard can show
// near misses.
type Finder struct {
	cfg    FinderConfig
	logger *slog.Logger
}

// NewFinder creates an opportunity finder.
func NewFinder(cfg FinderConfig, logger *slog.Logger) *Finder {
	return &Finder{cfg: cfg, logger: logger.With(slog.String("component", "finder"))}
}

// Find returns every qualifying cross-venue route for the token, unranked.
// For each size it pairs every buy quote with every sell quote from a
// different venue where the sell price exceeds the buy price and the pair
// spread clears the minimum.
func (f *Finder) Find(token string, quotesBySize []SizeQuotes) []domain.Opportunity {
	var opps []domain.Opportunity
	now := time.Now().UTC()

	for _, sq := range quotesBySize {
		for _, buy := range sq.Buys {
			for _, sell := range sq.Sells {
				if buy.Venue == sell.Venue {
					continue
				}
				if sell.Price <= buy.Price {
					continue
				}
				spread := SpreadBps(buy.Price, sell.Price)
				if spread < f.cfg.MinSpreadBps {
					continue
				}

				size := sq.Size
				units := size / buy.Price
				proceeds := units * sell.Price
				gross := proceeds - size - size*f.cfg.FlashLoanFeeRate
				net := gross - f.cfg.FlatCost

				opps = append(opps, domain.Opportunity{
					ID:          uuid.Must(uuid.NewRandom()).String(),
					Token:       token,
					BuyVenue:    buy.Venue,
					SellVenue:   sell.Venue,
					BuyPrice:    buy.Price,
					SellPrice:   sell.Price,
					SpreadBps:   spread,
					TradeSize:   size,
					GrossProfit: gross,
					NetProfit:   net,
					DetectedAt:  now,
				})
			}
		}
	}
	return opps
}

// Rank orders opportunities by net profit, highest first. The sort is stable
// so equally profitable routes keep their discovery order across scans.
func Rank(opps []domain.Opportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].NetProfit > opps[j].NetProfit
	})
}
