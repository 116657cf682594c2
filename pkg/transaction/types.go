// Package transaction models BULK's server-recognized actions (order
// batches, oracle updates, faucet requests, user settings, agent-wallet
// authorization, testnet admin) and owns their two serialized forms: the
// canonical wincode bytes the exchange signs and the camelCase JSON shape it
// accepts over the API.
//
// The binary form is the authentication substrate. Field order, widths, and
// discriminant values are a contract with the server's verifier, not an
// implementation choice.
package transaction

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Bulk-trade/bulk-keychain/pkg/crypto"
	"github.com/Bulk-trade/bulk-keychain/pkg/wincode"
)

var (
	// ErrInvalidIntent is returned for intents the library can reject
	// locally: unknown type tags, missing required fields, or (when the
	// caller opts in) NaN prices and sizes.
	ErrInvalidIntent = errors.New("transaction: invalid intent")

	// ErrInvalidDiscriminant is returned on the decode/verify path for an
	// unknown variant tag.
	ErrInvalidDiscriminant = errors.New("transaction: invalid discriminant")
)

// ActionKind is the u32 discriminant of an action variant. The set is closed;
// values are fixed by the exchange.
type ActionKind uint32

const (
	KindOrder              ActionKind = 0
	KindOracle             ActionKind = 1
	KindFaucet             ActionKind = 2
	KindUpdateUserSettings ActionKind = 3
	KindAgentWallet        ActionKind = 4
	KindTestnetAdmin       ActionKind = 5
)

// Action is a server-recognized operation. Implementations are the closed set
// of variants above; the unexported encode method keeps the set sealed.
type Action interface {
	Kind() ActionKind
	encodePayload(w *wincode.Writer)
}

// ItemKind is the u32 discriminant of an order-batch item.
type ItemKind uint32

const (
	ItemOrder     ItemKind = 0
	ItemCancel    ItemKind = 1
	ItemCancelAll ItemKind = 2
)

// OrderItem is one entry of an order batch: place, cancel, or cancel-all.
type OrderItem interface {
	ItemKind() ItemKind
	encodeItem(w *wincode.Writer)
}

// TimeInForce is the u32 discriminant of a resting-order policy.
type TimeInForce uint32

const (
	Gtc TimeInForce = 0 // good till cancel
	Ioc TimeInForce = 1 // immediate or cancel
	Alo TimeInForce = 2 // add liquidity only (post-only)
)

// String returns the wire-JSON spelling.
func (t TimeInForce) String() string {
	switch t {
	case Gtc:
		return "Gtc"
	case Ioc:
		return "Ioc"
	case Alo:
		return "Alo"
	default:
		return fmt.Sprintf("TimeInForce(%d)", uint32(t))
	}
}

// TimeInForceFromString parses GTC/IOC/ALO case-insensitively.
func TimeInForceFromString(s string) (TimeInForce, error) {
	switch {
	case strings.EqualFold(s, "gtc"):
		return Gtc, nil
	case strings.EqualFold(s, "ioc"):
		return Ioc, nil
	case strings.EqualFold(s, "alo"):
		return Alo, nil
	}
	return 0, fmt.Errorf("%w: unknown tif %q", ErrInvalidIntent, s)
}

// OrderTypeKind is the u32 discriminant of the order-type sum.
type OrderTypeKind uint32

const (
	OrderTypeLimit   OrderTypeKind = 0
	OrderTypeTrigger OrderTypeKind = 1
)

// OrderType is the order-type sum: a resting limit order or a trigger
// (stop/market) order. The codec's discriminant mapping is defined only on
// this closed set.
type OrderType interface {
	OrderTypeKind() OrderTypeKind
	encodeOrderType(w *wincode.Writer)
}

// Limit is a resting order with a time-in-force policy.
type Limit struct {
	Tif TimeInForce
}

func (Limit) OrderTypeKind() OrderTypeKind { return OrderTypeLimit }

func (l Limit) encodeOrderType(w *wincode.Writer) {
	w.WriteU32(uint32(l.Tif))
}

// Trigger is a stop or market order, armed at TriggerPx.
type Trigger struct {
	IsMarket  bool
	TriggerPx float64
}

func (Trigger) OrderTypeKind() OrderTypeKind { return OrderTypeTrigger }

func (t Trigger) encodeOrderType(w *wincode.Writer) {
	w.WriteBool(t.IsMarket)
	w.WriteF64(t.TriggerPx)
}

// Order is a place item. Price and size are signed exactly as supplied; the
// library performs no rounding or canonicalization.
type Order struct {
	Symbol     string
	IsBuy      bool
	Price      float64
	Size       float64
	ReduceOnly bool
	OrderType  OrderType
	ClientID   *crypto.Hash
}

// NewLimitOrder builds a resting order.
func NewLimitOrder(symbol string, isBuy bool, price, size float64, tif TimeInForce) Order {
	return Order{
		Symbol:    symbol,
		IsBuy:     isBuy,
		Price:     price,
		Size:      size,
		OrderType: Limit{Tif: tif},
	}
}

// NewMarketOrder builds an immediate trigger order with no arm price.
func NewMarketOrder(symbol string, isBuy bool, size float64) Order {
	return Order{
		Symbol:    symbol,
		IsBuy:     isBuy,
		Size:      size,
		OrderType: Trigger{IsMarket: true},
	}
}

func (Order) ItemKind() ItemKind { return ItemOrder }

func (o Order) encodeItem(w *wincode.Writer) {
	w.WriteString(o.Symbol)
	w.WriteBool(o.IsBuy)
	w.WriteF64(o.Price)
	w.WriteF64(o.Size)
	w.WriteBool(o.ReduceOnly)
	ot := o.OrderType
	if ot == nil {
		ot = Limit{Tif: Gtc}
	}
	w.WriteU32(uint32(ot.OrderTypeKind()))
	ot.encodeOrderType(w)
	if o.ClientID != nil {
		w.WriteOption(true)
		w.WriteFixed(o.ClientID.Bytes())
	} else {
		w.WriteOption(false)
	}
}

// Cancel removes one resting order by its content-addressed id.
type Cancel struct {
	Symbol  string
	OrderID crypto.Hash
}

// NewCancel builds a cancel item.
func NewCancel(symbol string, orderID crypto.Hash) Cancel {
	return Cancel{Symbol: symbol, OrderID: orderID}
}

func (Cancel) ItemKind() ItemKind { return ItemCancel }

func (c Cancel) encodeItem(w *wincode.Writer) {
	w.WriteString(c.Symbol)
	w.WriteFixed(c.OrderID.Bytes())
}

// CancelAll removes every resting order on the listed symbols; an empty list
// means all symbols.
type CancelAll struct {
	Symbols []string
}

// CancelAllFor builds a cancel-all item scoped to symbols.
func CancelAllFor(symbols []string) CancelAll {
	return CancelAll{Symbols: symbols}
}

func (CancelAll) ItemKind() ItemKind { return ItemCancelAll }

func (c CancelAll) encodeItem(w *wincode.Writer) {
	w.WriteSeqLen(len(c.Symbols))
	for _, s := range c.Symbols {
		w.WriteString(s)
	}
}

// OrderBatch is the order action: an ordered, heterogeneous sequence of
// place/cancel/cancel-all items. Item order is semantically significant and
// preserved verbatim on the wire.
type OrderBatch []OrderItem

func (OrderBatch) Kind() ActionKind { return KindOrder }

func (b OrderBatch) encodePayload(w *wincode.Writer) {
	w.WriteSeqLen(len(b))
	for _, item := range b {
		w.WriteU32(uint32(item.ItemKind()))
		item.encodeItem(w)
	}
}

// OraclePrice is one oracle observation.
type OraclePrice struct {
	Timestamp uint64  `json:"timestamp"`
	Asset     string  `json:"asset"`
	Price     float64 `json:"price"`
}

// Oracle is the oracle-update action.
type Oracle []OraclePrice

func (Oracle) Kind() ActionKind { return KindOracle }

func (o Oracle) encodePayload(w *wincode.Writer) {
	w.WriteSeqLen(len(o))
	for _, p := range o {
		w.WriteU64(p.Timestamp)
		w.WriteString(p.Asset)
		w.WriteF64(p.Price)
	}
}

// Faucet requests testnet funds for User. Amount nil means the server
// default.
type Faucet struct {
	User   crypto.Pubkey
	Amount *float64
}

func (Faucet) Kind() ActionKind { return KindFaucet }

func (f Faucet) encodePayload(w *wincode.Writer) {
	w.WriteFixed(f.User.Bytes())
	if f.Amount != nil {
		w.WriteOption(true)
		w.WriteF64(*f.Amount)
	} else {
		w.WriteOption(false)
	}
}

// LeverageSetting is one (symbol, max leverage) pair.
type LeverageSetting struct {
	Symbol   string
	Leverage float64
}

// UserSettings is the updateUserSettings action: an ordered list of leverage
// settings.
type UserSettings []LeverageSetting

func (UserSettings) Kind() ActionKind { return KindUpdateUserSettings }

func (u UserSettings) encodePayload(w *wincode.Writer) {
	w.WriteSeqLen(len(u))
	for _, s := range u {
		w.WriteString(s.Symbol)
		w.WriteF64(s.Leverage)
	}
}

// AgentWallet authorizes (or, with Delete, revokes) a secondary key to sign
// on the account's behalf.
type AgentWallet struct {
	Agent  crypto.Pubkey
	Delete bool
}

func (AgentWallet) Kind() ActionKind { return KindAgentWallet }

func (a AgentWallet) encodePayload(w *wincode.Writer) {
	w.WriteFixed(a.Agent.Bytes())
	w.WriteBool(a.Delete)
}

// AdminKind is the u32 discriminant of a testnet-admin sub-action. The set is
// open-ended server side; new discriminants extend it without renumbering.
type AdminKind uint32

const (
	AdminWhitelistFaucet AdminKind = 0
)

// AdminAction is one testnet-admin sub-action.
type AdminAction interface {
	AdminKind() AdminKind
	encodeAdmin(w *wincode.Writer)
}

// WhitelistFaucet toggles an account's faucet allowance.
type WhitelistFaucet struct {
	Account   crypto.Pubkey
	Whitelist bool
}

func (WhitelistFaucet) AdminKind() AdminKind { return AdminWhitelistFaucet }

func (a WhitelistFaucet) encodeAdmin(w *wincode.Writer) {
	w.WriteFixed(a.Account.Bytes())
	w.WriteBool(a.Whitelist)
}

// TestnetAdmin is the testnet-admin action: a sequence of sub-actions.
type TestnetAdmin []AdminAction

func (TestnetAdmin) Kind() ActionKind { return KindTestnetAdmin }

func (t TestnetAdmin) encodePayload(w *wincode.Writer) {
	w.WriteSeqLen(len(t))
	for _, a := range t {
		w.WriteU32(uint32(a.AdminKind()))
		a.encodeAdmin(w)
	}
}
