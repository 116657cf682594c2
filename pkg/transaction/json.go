package transaction

import (
	"encoding/json"
	"fmt"

	"github.com/Bulk-trade/bulk-keychain/pkg/crypto"
)

// Signed is the envelope submitted to the exchange: the action's wire JSON
// (which carries its own nonce), the trading account, the key that signed,
// and the detached signature, all base58 at this boundary.
//
// OrderIDs carries the pre-computed content-addressed id for each place item,
// index-aligned with the action's place items. The server ignores it; callers
// use it to track orders optimistically before the response arrives.
type Signed struct {
	Action    json.RawMessage `json:"action"`
	Account   string          `json:"account"`
	Signer    string          `json:"signer"`
	Signature string          `json:"signature"`
	OrderIDs  []string        `json:"orderIds,omitempty"`
}

// Serialize renders the envelope as request-ready JSON.
func (s *Signed) Serialize() ([]byte, error) {
	return json.Marshal(s)
}

// DeserializeSigned parses an envelope from JSON.
func DeserializeSigned(data []byte) (*Signed, error) {
	var s Signed
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("transaction: unmarshal envelope: %w", err)
	}
	return &s, nil
}

// Wire JSON shapes. Place items use the server's short keys
// (c/b/px/sz/r/t/cloid); cancels use c/oid; cancel-all uses c.

type placeWire struct {
	Symbol     string        `json:"c"`
	IsBuy      bool          `json:"b"`
	Price      float64       `json:"px"`
	Size       float64       `json:"sz"`
	ReduceOnly bool          `json:"r"`
	OrderType  orderTypeWire `json:"t"`
	ClientID   *crypto.Hash  `json:"cloid,omitempty"`
}

type orderTypeWire struct {
	Limit   *limitWire   `json:"limit,omitempty"`
	Trigger *triggerWire `json:"trigger,omitempty"`
}

type limitWire struct {
	Tif string `json:"tif"`
}

type triggerWire struct {
	IsMarket  bool    `json:"is_market"`
	TriggerPx float64 `json:"triggerPx"`
}

type cancelWire struct {
	Symbol  string      `json:"c"`
	OrderID crypto.Hash `json:"oid"`
}

type cancelAllWire struct {
	Symbols []string `json:"c"`
}

type orderItemWire struct {
	Order     *placeWire     `json:"order,omitempty"`
	Cancel    *cancelWire    `json:"cancel,omitempty"`
	CancelAll *cancelAllWire `json:"cancelAll,omitempty"`
}

type orderActionWire struct {
	Type   string          `json:"type"`
	Orders []orderItemWire `json:"orders"`
	Nonce  uint64          `json:"nonce"`
}

type faucetWire struct {
	User   crypto.Pubkey `json:"u"`
	Amount *float64      `json:"amount,omitempty"`
}

type faucetActionWire struct {
	Type   string     `json:"type"`
	Faucet faucetWire `json:"faucet"`
	Nonce  uint64     `json:"nonce"`
}

type oracleActionWire struct {
	Type   string        `json:"type"`
	Oracle []OraclePrice `json:"oracle"`
	Nonce  uint64        `json:"nonce"`
}

type userSettingsWire struct {
	MaxLeverage []leveragePair `json:"maxLeverage"`
}

type userSettingsActionWire struct {
	Type         string           `json:"type"`
	UserSettings userSettingsWire `json:"updateUserSettings"`
	Nonce        uint64           `json:"nonce"`
}

// leveragePair marshals as the two-element array [symbol, leverage].
type leveragePair LeverageSetting

func (p leveragePair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Symbol, p.Leverage})
}

func (p *leveragePair) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("leverage setting must be [symbol, leverage], got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Symbol); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &p.Leverage)
}

type agentWalletWire struct {
	Agent  crypto.Pubkey `json:"agent"`
	Delete bool          `json:"delete"`
}

type agentWalletActionWire struct {
	Type        string          `json:"type"`
	AgentWallet agentWalletWire `json:"agentWalletCreation"`
	Nonce       uint64          `json:"nonce"`
}

type whitelistFaucetWire struct {
	Account   crypto.Pubkey `json:"account"`
	Whitelist bool          `json:"whitelist"`
}

type adminActionItemWire struct {
	WhitelistFaucet *whitelistFaucetWire `json:"whitelistFaucet,omitempty"`
}

type testnetAdminActionWire struct {
	Type         string                `json:"type"`
	TestnetAdmin []adminActionItemWire `json:"testnetAdmin"`
	Nonce        uint64                `json:"nonce"`
}

// ActionJSON renders an action and its nonce in the server's camelCase wire
// shape. The action embedded in a Signed envelope is exactly this form.
func ActionJSON(a Action, nonce uint64) (json.RawMessage, error) {
	switch v := a.(type) {
	case OrderBatch:
		items := make([]orderItemWire, 0, len(v))
		for _, item := range v {
			w, err := itemToWire(item)
			if err != nil {
				return nil, err
			}
			items = append(items, w)
		}
		return json.Marshal(orderActionWire{Type: "order", Orders: items, Nonce: nonce})

	case Oracle:
		prices := v
		if prices == nil {
			prices = Oracle{}
		}
		return json.Marshal(oracleActionWire{Type: "oracle", Oracle: prices, Nonce: nonce})

	case Faucet:
		return json.Marshal(faucetActionWire{
			Type:   "faucet",
			Faucet: faucetWire{User: v.User, Amount: v.Amount},
			Nonce:  nonce,
		})

	case UserSettings:
		pairs := make([]leveragePair, 0, len(v))
		for _, s := range v {
			pairs = append(pairs, leveragePair(s))
		}
		return json.Marshal(userSettingsActionWire{
			Type:         "updateUserSettings",
			UserSettings: userSettingsWire{MaxLeverage: pairs},
			Nonce:        nonce,
		})

	case AgentWallet:
		return json.Marshal(agentWalletActionWire{
			Type:        "agentWalletCreation",
			AgentWallet: agentWalletWire{Agent: v.Agent, Delete: v.Delete},
			Nonce:       nonce,
		})

	case TestnetAdmin:
		items := make([]adminActionItemWire, 0, len(v))
		for _, sub := range v {
			switch s := sub.(type) {
			case WhitelistFaucet:
				items = append(items, adminActionItemWire{
					WhitelistFaucet: &whitelistFaucetWire{Account: s.Account, Whitelist: s.Whitelist},
				})
			default:
				return nil, fmt.Errorf("%w: admin sub-action %T", ErrInvalidIntent, sub)
			}
		}
		return json.Marshal(testnetAdminActionWire{Type: "testnetAdmin", TestnetAdmin: items, Nonce: nonce})

	default:
		return nil, fmt.Errorf("%w: action %T", ErrInvalidIntent, a)
	}
}

func itemToWire(item OrderItem) (orderItemWire, error) {
	switch v := item.(type) {
	case Order:
		p := placeWire{
			Symbol:     v.Symbol,
			IsBuy:      v.IsBuy,
			Price:      v.Price,
			Size:       v.Size,
			ReduceOnly: v.ReduceOnly,
			ClientID:   v.ClientID,
		}
		ot := v.OrderType
		if ot == nil {
			ot = Limit{Tif: Gtc}
		}
		switch t := ot.(type) {
		case Limit:
			p.OrderType.Limit = &limitWire{Tif: t.Tif.String()}
		case Trigger:
			p.OrderType.Trigger = &triggerWire{IsMarket: t.IsMarket, TriggerPx: t.TriggerPx}
		default:
			return orderItemWire{}, fmt.Errorf("%w: order type %T", ErrInvalidIntent, ot)
		}
		return orderItemWire{Order: &p}, nil

	case Cancel:
		return orderItemWire{Cancel: &cancelWire{Symbol: v.Symbol, OrderID: v.OrderID}}, nil

	case CancelAll:
		symbols := v.Symbols
		if symbols == nil {
			symbols = []string{}
		}
		return orderItemWire{CancelAll: &cancelAllWire{Symbols: symbols}}, nil

	default:
		return orderItemWire{}, fmt.Errorf("%w: order item %T", ErrInvalidIntent, item)
	}
}

// ParseActionJSON is the inverse of ActionJSON: it parses the server wire
// shape back into the action model and nonce. The verifier uses it to rebuild
// the signed pre-image from an envelope.
func ParseActionJSON(data []byte) (Action, uint64, error) {
	var head struct {
		Type  string `json:"type"`
		Nonce uint64 `json:"nonce"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, 0, fmt.Errorf("transaction: parse action: %w", err)
	}

	switch head.Type {
	case "order":
		var w orderActionWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, 0, fmt.Errorf("transaction: parse order action: %w", err)
		}
		batch := make(OrderBatch, 0, len(w.Orders))
		for i, item := range w.Orders {
			parsed, err := itemFromWire(item)
			if err != nil {
				return nil, 0, fmt.Errorf("transaction: item %d: %w", i, err)
			}
			batch = append(batch, parsed)
		}
		return batch, head.Nonce, nil

	case "oracle":
		var w oracleActionWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, 0, fmt.Errorf("transaction: parse oracle action: %w", err)
		}
		return Oracle(w.Oracle), head.Nonce, nil

	case "faucet":
		var w faucetActionWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, 0, fmt.Errorf("transaction: parse faucet action: %w", err)
		}
		return Faucet{User: w.Faucet.User, Amount: w.Faucet.Amount}, head.Nonce, nil

	case "updateUserSettings":
		var w userSettingsActionWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, 0, fmt.Errorf("transaction: parse settings action: %w", err)
		}
		settings := make(UserSettings, 0, len(w.UserSettings.MaxLeverage))
		for _, p := range w.UserSettings.MaxLeverage {
			settings = append(settings, LeverageSetting(p))
		}
		return settings, head.Nonce, nil

	case "agentWalletCreation":
		var w agentWalletActionWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, 0, fmt.Errorf("transaction: parse agent wallet action: %w", err)
		}
		return AgentWallet{Agent: w.AgentWallet.Agent, Delete: w.AgentWallet.Delete}, head.Nonce, nil

	case "testnetAdmin":
		var w testnetAdminActionWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, 0, fmt.Errorf("transaction: parse admin action: %w", err)
		}
		admin := make(TestnetAdmin, 0, len(w.TestnetAdmin))
		for i, item := range w.TestnetAdmin {
			if item.WhitelistFaucet == nil {
				return nil, 0, fmt.Errorf("%w: admin sub-action %d", ErrInvalidDiscriminant, i)
			}
			admin = append(admin, WhitelistFaucet{
				Account:   item.WhitelistFaucet.Account,
				Whitelist: item.WhitelistFaucet.Whitelist,
			})
		}
		return admin, head.Nonce, nil

	default:
		return nil, 0, fmt.Errorf("%w: action type %q", ErrInvalidDiscriminant, head.Type)
	}
}

func itemFromWire(w orderItemWire) (OrderItem, error) {
	switch {
	case w.Order != nil:
		o := Order{
			Symbol:     w.Order.Symbol,
			IsBuy:      w.Order.IsBuy,
			Price:      w.Order.Price,
			Size:       w.Order.Size,
			ReduceOnly: w.Order.ReduceOnly,
			ClientID:   w.Order.ClientID,
		}
		switch {
		case w.Order.OrderType.Limit != nil:
			tif, err := TimeInForceFromString(w.Order.OrderType.Limit.Tif)
			if err != nil {
				return nil, err
			}
			o.OrderType = Limit{Tif: tif}
		case w.Order.OrderType.Trigger != nil:
			o.OrderType = Trigger{
				IsMarket:  w.Order.OrderType.Trigger.IsMarket,
				TriggerPx: w.Order.OrderType.Trigger.TriggerPx,
			}
		default:
			return nil, fmt.Errorf("%w: order type missing", ErrInvalidDiscriminant)
		}
		return o, nil

	case w.Cancel != nil:
		return Cancel{Symbol: w.Cancel.Symbol, OrderID: w.Cancel.OrderID}, nil

	case w.CancelAll != nil:
		return CancelAll{Symbols: w.CancelAll.Symbols}, nil

	default:
		return nil, fmt.Errorf("%w: empty order item", ErrInvalidDiscriminant)
	}
}
