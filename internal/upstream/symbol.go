package upstream

import "strings"

// Trading pairs are written BASE/QUOTE externally and BASE-QUOTE on the
// wire. Conversion is a straight character substitution in each direction;
// malformed symbols pass through untouched beyond the substitution.

// ToWireSymbol converts BTC/USDT to BTC-USDT.
func ToWireSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "-")
}

// FromWireSymbol converts BTC-USDT back to BTC/USDT.
func FromWireSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "-", "/")
}
