package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"tickerscope/internal/domain"
	"tickerscope/internal/upstream"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const exchangesResourceURI = "market://exchanges"

func registerResources(server *mcp.Server, market MarketReader) {
	server.AddResource(&mcp.Resource{
		URI:         exchangesResourceURI,
		Name:        "exchanges",
		Description: "Exchanges known to the pricing API; falls back to a static list when upstream is unreachable",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		exchanges := domain.FallbackExchanges
		if market != nil {
			if live, err := market.GetExchanges(ctx); err == nil && len(live) > 0 {
				exchanges = live
			}
		}
		return jsonResource(req.Params.URI, map[string]any{"exchanges": exchanges})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "market://ticker/{exchange}/{symbol}",
		Name:        "ticker",
		Description: "Current ticker for one trading pair; symbol uses the dash form (e.g. BTC-USDT)",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		exchange, wireSymbol, ok := parseTickerURI(req.Params.URI)
		if !ok {
			// Malformed URIs get an explanatory body, not a protocol error.
			return textResource(req.Params.URI, fmt.Sprintf("Unknown resource: %s. Expected market://ticker/{exchange}/{symbol} with a dash-separated symbol.", req.Params.URI))
		}
		symbol := upstream.FromWireSymbol(wireSymbol)
		if market == nil {
			return textResource(req.Params.URI, "Market data is not configured.")
		}

		ticker, err := market.GetTicker(ctx, exchange, symbol)
		if err != nil {
			return textResource(req.Params.URI, fmt.Sprintf("Ticker for %s on %s is unavailable: %v", symbol, exchange, err))
		}
		if ticker == nil {
			return textResource(req.Params.URI, fmt.Sprintf("No ticker found for %s on %s.", symbol, exchange))
		}
		return jsonResource(req.Params.URI, ticker)
	})
}

// parseTickerURI splits market://ticker/{exchange}/{symbol} into its parts.
func parseTickerURI(raw string) (exchange, symbol string, ok bool) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", "", false
	}
	if parsed.Scheme != "market" || parsed.Host != "ticker" {
		return "", "", false
	}
	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], strings.ToUpper(parts[1]), true
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}

func textResource(uri, text string) (*mcp.ReadResourceResult, error) {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     text,
		}},
	}, nil
}
