package transaction

import (
	"errors"
	"testing"

	"github.com/Bulk-trade/bulk-keychain/pkg/crypto"
)

func boolPtr(b bool) *bool      { return &b }
func f64Ptr(f float64) *float64 { return &f }

func TestParseOrderIntentDefaults(t *testing.T) {
	item, err := ParseIntent(Intent{
		Type:   "order",
		Symbol: "BTC-USD",
		IsBuy:  boolPtr(true),
		Price:  f64Ptr(100000),
		Size:   f64Ptr(0.1),
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	order, ok := item.(Order)
	if !ok {
		t.Fatalf("item = %T, want Order", item)
	}
	if order.ReduceOnly {
		t.Error("reduceOnly defaulted to true")
	}
	limit, ok := order.OrderType.(Limit)
	if !ok {
		t.Fatalf("order type = %T, want Limit", order.OrderType)
	}
	if limit.Tif != Gtc {
		t.Errorf("tif = %v, want GTC", limit.Tif)
	}
}

func TestParseOrderIntentTifCaseInsensitive(t *testing.T) {
	for _, tif := range []string{"ioc", "IOC", "Ioc"} {
		item, err := ParseIntent(Intent{
			Type:      "order",
			Symbol:    "BTC-USD",
			IsBuy:     boolPtr(false),
			Price:     f64Ptr(1),
			Size:      f64Ptr(1),
			OrderType: &OrderTypeIntent{Type: "limit", Tif: tif},
		})
		if err != nil {
			t.Fatalf("parse tif %q: %v", tif, err)
		}
		if item.(Order).OrderType.(Limit).Tif != Ioc {
			t.Errorf("tif %q parsed to %v, want IOC", tif, item.(Order).OrderType)
		}
	}
}

func TestParseMarketIntent(t *testing.T) {
	item, err := ParseIntent(Intent{
		Type:      "order",
		Symbol:    "ETH-USD",
		IsBuy:     boolPtr(true),
		Price:     f64Ptr(0),
		Size:      f64Ptr(2),
		OrderType: &OrderTypeIntent{Type: "market"},
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	trigger, ok := item.(Order).OrderType.(Trigger)
	if !ok {
		t.Fatalf("order type = %T, want Trigger", item.(Order).OrderType)
	}
	if !trigger.IsMarket || trigger.TriggerPx != 0 {
		t.Errorf("trigger = %+v, want market with zero arm price", trigger)
	}
}

func TestParseIntentMissingFields(t *testing.T) {
	cases := []Intent{
		{Type: "order", Symbol: "BTC-USD"},                                          // no isBuy
		{Type: "order", Symbol: "BTC-USD", IsBuy: boolPtr(true)},                    // no price
		{Type: "order", Symbol: "BTC-USD", IsBuy: boolPtr(true), Price: f64Ptr(1)},  // no size
		{Type: "cancel", Symbol: "BTC-USD"},                                         // no orderId
		{Type: "cancel", OrderID: "x"},                                              // no symbol
		{Type: "marginCall"},                                                        // unknown type
	}
	for _, in := range cases {
		if _, err := ParseIntent(in); !errors.Is(err, ErrInvalidIntent) {
			t.Errorf("ParseIntent(%+v) err = %v, want ErrInvalidIntent", in, err)
		}
	}
}

func TestParseIntentBadTif(t *testing.T) {
	_, err := ParseIntent(Intent{
		Type:      "order",
		Symbol:    "BTC-USD",
		IsBuy:     boolPtr(true),
		Price:     f64Ptr(1),
		Size:      f64Ptr(1),
		OrderType: &OrderTypeIntent{Type: "limit", Tif: "FOK"},
	})
	if !errors.Is(err, ErrInvalidIntent) {
		t.Errorf("err = %v, want ErrInvalidIntent", err)
	}
}

func TestParseCancelIntent(t *testing.T) {
	oid, _ := crypto.RandomHash()
	item, err := ParseIntent(Intent{Type: "cancel", Symbol: "BTC-USD", OrderID: oid.String()})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cancel := item.(Cancel)
	if cancel.OrderID != oid {
		t.Errorf("orderId = %s, want %s", cancel.OrderID, oid)
	}
}

func TestParseCancelIntentBadHash(t *testing.T) {
	_, err := ParseIntent(Intent{Type: "cancel", Symbol: "BTC-USD", OrderID: "tooShort"})
	if !errors.Is(err, crypto.ErrInvalidHash) {
		t.Errorf("err = %v, want ErrInvalidHash", err)
	}
}

func TestParseCancelAllIntent(t *testing.T) {
	item, err := ParseIntent(Intent{Type: "cancelAll"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(item.(CancelAll).Symbols) != 0 {
		t.Errorf("symbols = %v, want empty", item.(CancelAll).Symbols)
	}
}

func TestParseIntentJSON(t *testing.T) {
	item, err := ParseIntentJSON([]byte(`{
		"type": "order",
		"symbol": "BTC-USD",
		"isBuy": true,
		"price": 100000,
		"size": 0.1,
		"orderType": {"type": "limit", "tif": "ALO"}
	}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if item.(Order).OrderType.(Limit).Tif != Alo {
		t.Errorf("tif = %v, want ALO", item.(Order).OrderType)
	}
}
