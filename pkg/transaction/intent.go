package transaction

import (
	"encoding/json"
	"fmt"

	"github.com/Bulk-trade/bulk-keychain/pkg/crypto"
)

// Intent is the user-facing camelCase shape accepted by the high-level API:
//
//	{ type:"order", symbol, isBuy, price, size, reduceOnly?, orderType?, clientId? }
//	{ type:"cancel", symbol, orderId }
//	{ type:"cancelAll", symbols? }
//
// It is distinct from the short-key wire JSON; both are projected onto the
// action model before the codec runs.
type Intent struct {
	Type       string           `json:"type"`
	Symbol     string           `json:"symbol,omitempty"`
	IsBuy      *bool            `json:"isBuy,omitempty"`
	Price      *float64         `json:"price,omitempty"`
	Size       *float64         `json:"size,omitempty"`
	ReduceOnly bool             `json:"reduceOnly,omitempty"`
	OrderType  *OrderTypeIntent `json:"orderType,omitempty"`
	ClientID   string           `json:"clientId,omitempty"`
	OrderID    string           `json:"orderId,omitempty"`
	Symbols    []string         `json:"symbols,omitempty"`
}

// OrderTypeIntent selects limit vs trigger in the high-level API.
// type "market" is shorthand for an immediate trigger.
type OrderTypeIntent struct {
	Type      string   `json:"type"`
	Tif       string   `json:"tif,omitempty"`
	IsMarket  *bool    `json:"isMarket,omitempty"`
	TriggerPx *float64 `json:"triggerPx,omitempty"`
}

// ParseIntent projects a camelCase intent onto the order-item model,
// supplying defaults (reduceOnly false, limit GTC) and rejecting unknown
// tags and missing required fields with ErrInvalidIntent.
func ParseIntent(in Intent) (OrderItem, error) {
	switch in.Type {
	case "order":
		if in.IsBuy == nil {
			return nil, fmt.Errorf("%w: order.isBuy is required", ErrInvalidIntent)
		}
		if in.Price == nil {
			return nil, fmt.Errorf("%w: order.price is required", ErrInvalidIntent)
		}
		if in.Size == nil {
			return nil, fmt.Errorf("%w: order.size is required", ErrInvalidIntent)
		}

		orderType, err := parseOrderType(in.OrderType)
		if err != nil {
			return nil, err
		}

		order := Order{
			Symbol:     in.Symbol,
			IsBuy:      *in.IsBuy,
			Price:      *in.Price,
			Size:       *in.Size,
			ReduceOnly: in.ReduceOnly,
			OrderType:  orderType,
		}
		if in.ClientID != "" {
			cid, err := crypto.HashFromBase58(in.ClientID)
			if err != nil {
				return nil, fmt.Errorf("invalid clientId: %w", err)
			}
			order.ClientID = &cid
		}
		return order, nil

	case "cancel":
		if in.Symbol == "" {
			return nil, fmt.Errorf("%w: cancel.symbol is required", ErrInvalidIntent)
		}
		if in.OrderID == "" {
			return nil, fmt.Errorf("%w: cancel.orderId is required", ErrInvalidIntent)
		}
		oid, err := crypto.HashFromBase58(in.OrderID)
		if err != nil {
			return nil, fmt.Errorf("invalid orderId: %w", err)
		}
		return Cancel{Symbol: in.Symbol, OrderID: oid}, nil

	case "cancelAll":
		return CancelAll{Symbols: in.Symbols}, nil

	default:
		return nil, fmt.Errorf("%w: item type %q", ErrInvalidIntent, in.Type)
	}
}

func parseOrderType(in *OrderTypeIntent) (OrderType, error) {
	if in == nil {
		return Limit{Tif: Gtc}, nil
	}
	switch in.Type {
	case "limit":
		tif := Gtc
		if in.Tif != "" {
			var err error
			if tif, err = TimeInForceFromString(in.Tif); err != nil {
				return nil, err
			}
		}
		return Limit{Tif: tif}, nil

	case "trigger", "market":
		t := Trigger{IsMarket: true}
		if in.IsMarket != nil {
			t.IsMarket = *in.IsMarket
		}
		if in.TriggerPx != nil {
			t.TriggerPx = *in.TriggerPx
		}
		return t, nil

	default:
		return nil, fmt.Errorf("%w: orderType %q", ErrInvalidIntent, in.Type)
	}
}

// ParseIntentJSON parses a raw JSON intent and projects it onto the model.
func ParseIntentJSON(data []byte) (OrderItem, error) {
	var in Intent
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIntent, err)
	}
	return ParseIntent(in)
}

// ParseIntents projects a slice of intents, failing on the first invalid one.
func ParseIntents(ins []Intent) ([]OrderItem, error) {
	items := make([]OrderItem, 0, len(ins))
	for i, in := range ins {
		item, err := ParseIntent(in)
		if err != nil {
			return nil, fmt.Errorf("intent %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}
