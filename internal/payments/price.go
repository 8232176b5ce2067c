package payments

import (
	"fmt"

	"github.com/Eschmerz/Luxury/internal/config"
)

// Price is the canonical chargeable offer for the current operating mode.
// Resolved once at startup; the mode tag travels with it so cached payment
// links from a different mode are never reused.
type Price struct {
	ID         string
	ProductID  string
	Mode       string
	Name       string
	Currency   string
	UnitAmount int64
}

// ResolvePrice resolves the mode-scoped price from configuration. Only the
// price ID matching the current mode is consulted; a generic STRIPE_PRICE_ID
// is rejected outright rather than risk mixing live and test objects.
func ResolvePrice(cfg *config.Config) (Price, error) {
	mode := cfg.StripeMode()

	var priceID, productID, envVar string
	switch mode {
	case config.ModeTest:
		priceID, productID, envVar = cfg.StripeTestPriceID, cfg.StripeTestProductID, "STRIPE_TEST_PRICE_ID"
	default:
		priceID, productID, envVar = cfg.StripeLivePriceID, cfg.StripeLiveProductID, "STRIPE_LIVE_PRICE_ID"
	}

	if priceID == "" {
		if cfg.StripePriceID != "" {
			return Price{}, fmt.Errorf("mode-scoped price IDs are required: set %s; the generic STRIPE_PRICE_ID is ignored to avoid mixing %s and other-mode objects", envVar, mode)
		}
		return Price{}, fmt.Errorf("no %s price configured: set %s", mode, envVar)
	}

	return Price{
		ID:         priceID,
		ProductID:  productID,
		Mode:       mode,
		Name:       cfg.StripeProductName,
		Currency:   cfg.StripeCurrency,
		UnitAmount: cfg.StripeUnitAmount,
	}, nil
}
