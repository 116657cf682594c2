package transaction

import (
	"fmt"

	"github.com/Bulk-trade/bulk-keychain/pkg/crypto"
	"github.com/Bulk-trade/bulk-keychain/pkg/wincode"
)

// DecodePayload parses the canonical binary form back into an action and its
// nonce. It is the verify-path inverse of EncodePayload and rejects unknown
// discriminants, malformed tags, and trailing bytes.
func DecodePayload(b []byte) (Action, uint64, error) {
	r := wincode.NewReader(b)

	kind, err := r.ReadU32()
	if err != nil {
		return nil, 0, fmt.Errorf("transaction: action discriminant: %w", err)
	}

	var action Action
	switch ActionKind(kind) {
	case KindOrder:
		action, err = decodeOrderBatch(r)
	case KindOracle:
		action, err = decodeOracle(r)
	case KindFaucet:
		action, err = decodeFaucet(r)
	case KindUpdateUserSettings:
		action, err = decodeUserSettings(r)
	case KindAgentWallet:
		action, err = decodeAgentWallet(r)
	case KindTestnetAdmin:
		action, err = decodeTestnetAdmin(r)
	default:
		return nil, 0, fmt.Errorf("%w: action %d", ErrInvalidDiscriminant, kind)
	}
	if err != nil {
		return nil, 0, err
	}

	nonce, err := r.ReadU64()
	if err != nil {
		return nil, 0, fmt.Errorf("transaction: nonce: %w", err)
	}
	if err := r.Finish(); err != nil {
		return nil, 0, fmt.Errorf("transaction: %w", err)
	}
	return action, nonce, nil
}

func decodeOrderBatch(r *wincode.Reader) (Action, error) {
	n, err := r.ReadSeqLen()
	if err != nil {
		return nil, fmt.Errorf("transaction: order count: %w", err)
	}
	batch := make(OrderBatch, 0, n)
	for i := 0; i < n; i++ {
		kind, err := r.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("transaction: item %d discriminant: %w", i, err)
		}
		var item OrderItem
		switch ItemKind(kind) {
		case ItemOrder:
			item, err = decodeOrder(r)
		case ItemCancel:
			item, err = decodeCancel(r)
		case ItemCancelAll:
			item, err = decodeCancelAll(r)
		default:
			return nil, fmt.Errorf("%w: order item %d", ErrInvalidDiscriminant, kind)
		}
		if err != nil {
			return nil, fmt.Errorf("transaction: item %d: %w", i, err)
		}
		batch = append(batch, item)
	}
	return batch, nil
}

func decodeOrder(r *wincode.Reader) (OrderItem, error) {
	var o Order
	var err error
	if o.Symbol, err = r.ReadString(); err != nil {
		return nil, err
	}
	if o.IsBuy, err = r.ReadBool(); err != nil {
		return nil, err
	}
	if o.Price, err = r.ReadF64(); err != nil {
		return nil, err
	}
	if o.Size, err = r.ReadF64(); err != nil {
		return nil, err
	}
	if o.ReduceOnly, err = r.ReadBool(); err != nil {
		return nil, err
	}

	otKind, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	switch OrderTypeKind(otKind) {
	case OrderTypeLimit:
		tif, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		if tif > uint32(Alo) {
			return nil, fmt.Errorf("%w: tif %d", ErrInvalidDiscriminant, tif)
		}
		o.OrderType = Limit{Tif: TimeInForce(tif)}
	case OrderTypeTrigger:
		var t Trigger
		if t.IsMarket, err = r.ReadBool(); err != nil {
			return nil, err
		}
		if t.TriggerPx, err = r.ReadF64(); err != nil {
			return nil, err
		}
		o.OrderType = t
	default:
		return nil, fmt.Errorf("%w: order type %d", ErrInvalidDiscriminant, otKind)
	}

	present, err := r.ReadOption()
	if err != nil {
		return nil, err
	}
	if present {
		b, err := r.ReadFixed(crypto.HashSize)
		if err != nil {
			return nil, err
		}
		cid, err := crypto.HashFromBytes(b)
		if err != nil {
			return nil, err
		}
		o.ClientID = &cid
	}
	return o, nil
}

func decodeCancel(r *wincode.Reader) (OrderItem, error) {
	var c Cancel
	var err error
	if c.Symbol, err = r.ReadString(); err != nil {
		return nil, err
	}
	b, err := r.ReadFixed(crypto.HashSize)
	if err != nil {
		return nil, err
	}
	if c.OrderID, err = crypto.HashFromBytes(b); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeCancelAll(r *wincode.Reader) (OrderItem, error) {
	n, err := r.ReadSeqLen()
	if err != nil {
		return nil, err
	}
	var c CancelAll
	for i := 0; i < n; i++ {
		s, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		c.Symbols = append(c.Symbols, s)
	}
	return c, nil
}

func decodeOracle(r *wincode.Reader) (Action, error) {
	n, err := r.ReadSeqLen()
	if err != nil {
		return nil, err
	}
	oracle := make(Oracle, 0, n)
	for i := 0; i < n; i++ {
		var p OraclePrice
		if p.Timestamp, err = r.ReadU64(); err != nil {
			return nil, err
		}
		if p.Asset, err = r.ReadString(); err != nil {
			return nil, err
		}
		if p.Price, err = r.ReadF64(); err != nil {
			return nil, err
		}
		oracle = append(oracle, p)
	}
	return oracle, nil
}

func decodeFaucet(r *wincode.Reader) (Action, error) {
	var f Faucet
	b, err := r.ReadFixed(crypto.PubkeySize)
	if err != nil {
		return nil, err
	}
	if f.User, err = crypto.PubkeyFromBytes(b); err != nil {
		return nil, err
	}
	present, err := r.ReadOption()
	if err != nil {
		return nil, err
	}
	if present {
		amount, err := r.ReadF64()
		if err != nil {
			return nil, err
		}
		f.Amount = &amount
	}
	return f, nil
}

func decodeUserSettings(r *wincode.Reader) (Action, error) {
	n, err := r.ReadSeqLen()
	if err != nil {
		return nil, err
	}
	settings := make(UserSettings, 0, n)
	for i := 0; i < n; i++ {
		var s LeverageSetting
		if s.Symbol, err = r.ReadString(); err != nil {
			return nil, err
		}
		if s.Leverage, err = r.ReadF64(); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, nil
}

func decodeAgentWallet(r *wincode.Reader) (Action, error) {
	var a AgentWallet
	b, err := r.ReadFixed(crypto.PubkeySize)
	if err != nil {
		return nil, err
	}
	if a.Agent, err = crypto.PubkeyFromBytes(b); err != nil {
		return nil, err
	}
	if a.Delete, err = r.ReadBool(); err != nil {
		return nil, err
	}
	return a, nil
}

func decodeTestnetAdmin(r *wincode.Reader) (Action, error) {
	n, err := r.ReadSeqLen()
	if err != nil {
		return nil, err
	}
	admin := make(TestnetAdmin, 0, n)
	for i := 0; i < n; i++ {
		kind, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		switch AdminKind(kind) {
		case AdminWhitelistFaucet:
			var a WhitelistFaucet
			b, err := r.ReadFixed(crypto.PubkeySize)
			if err != nil {
				return nil, err
			}
			if a.Account, err = crypto.PubkeyFromBytes(b); err != nil {
				return nil, err
			}
			if a.Whitelist, err = r.ReadBool(); err != nil {
				return nil, err
			}
			admin = append(admin, a)
		default:
			return nil, fmt.Errorf("%w: admin sub-action %d", ErrInvalidDiscriminant, kind)
		}
	}
	return admin, nil
}
