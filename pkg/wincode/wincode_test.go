package wincode

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math"
	"testing"
)

func TestWriterPrimitives(t *testing.T) {
	w := NewWriter()
	w.WriteBool(true)
	w.WriteBool(false)
	w.WriteU32(0x01020304)
	w.WriteU64(0x1122334455667788)

	want, _ := hex.DecodeString("0100" + "04030201" + "8877665544332211")
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("encoded = %x, want %x", w.Bytes(), want)
	}
}

func TestWriterF64(t *testing.T) {
	cases := []struct {
		v    float64
		want string
	}{
		{100000.0, "00000000006af840"},
		{0.1, "9a9999999999b93f"},
		{0.0, "0000000000000000"},
	}

	for _, c := range cases {
		w := NewWriter()
		w.WriteF64(c.v)
		want, _ := hex.DecodeString(c.want)
		if !bytes.Equal(w.Bytes(), want) {
			t.Errorf("f64(%v) = %x, want %x", c.v, w.Bytes(), want)
		}
	}
}

func TestWriterF64NegativeZero(t *testing.T) {
	w := NewWriter()
	w.WriteF64(math.Copysign(0, -1))
	want, _ := hex.DecodeString("0000000000000080")
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("f64(-0) = %x, want %x", w.Bytes(), want)
	}
}

func TestWriterF64NaNBitsPreserved(t *testing.T) {
	nan := math.Float64frombits(0x7ff8000000000001)
	w := NewWriter()
	w.WriteF64(nan)

	r := NewReader(w.Bytes())
	got, err := r.ReadF64()
	if err != nil {
		t.Fatalf("read f64: %v", err)
	}
	if math.Float64bits(got) != 0x7ff8000000000001 {
		t.Errorf("NaN bits = %x, want 7ff8000000000001", math.Float64bits(got))
	}
}

func TestWriterString(t *testing.T) {
	w := NewWriter()
	w.WriteString("BTC-USD")
	want, _ := hex.DecodeString("0700000000000000" + "4254432d555344")
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("string = %x, want %x", w.Bytes(), want)
	}
}

func TestWriterEmptyString(t *testing.T) {
	w := NewWriter()
	w.WriteString("")
	want := make([]byte, 8)
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("empty string = %x, want %x", w.Bytes(), want)
	}
}

func TestWriterEmptySequence(t *testing.T) {
	w := NewWriter()
	w.WriteSeqLen(0)
	if len(w.Bytes()) != 8 {
		t.Errorf("empty sequence length = %d bytes, want 8", len(w.Bytes()))
	}
}

func TestWriterOptionAbsent(t *testing.T) {
	w := NewWriter()
	w.WriteOption(false)
	if !bytes.Equal(w.Bytes(), []byte{0}) {
		t.Errorf("absent option = %x, want 00", w.Bytes())
	}
}

func TestReaderRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteU32(7)
	w.WriteString("ETH-USD")
	w.WriteBool(true)
	w.WriteF64(-1.5)
	w.WriteOption(true)
	w.WriteU64(42)
	w.WriteSeqLen(2)
	w.WriteU64(10)
	w.WriteU64(20)

	r := NewReader(w.Bytes())
	if v, _ := r.ReadU32(); v != 7 {
		t.Errorf("u32 = %d, want 7", v)
	}
	if s, _ := r.ReadString(); s != "ETH-USD" {
		t.Errorf("string = %q, want ETH-USD", s)
	}
	if b, _ := r.ReadBool(); !b {
		t.Error("bool = false, want true")
	}
	if f, _ := r.ReadF64(); f != -1.5 {
		t.Errorf("f64 = %v, want -1.5", f)
	}
	if ok, _ := r.ReadOption(); !ok {
		t.Error("option = absent, want present")
	}
	if v, _ := r.ReadU64(); v != 42 {
		t.Errorf("u64 = %d, want 42", v)
	}
	n, err := r.ReadSeqLen()
	if err != nil {
		t.Fatalf("seq len: %v", err)
	}
	if n != 2 {
		t.Errorf("seq len = %d, want 2", n)
	}
	for i, want := range []uint64{10, 20} {
		if v, _ := r.ReadU64(); v != want {
			t.Errorf("element %d = %d, want %d", i, v, want)
		}
	}
	if err := r.Finish(); err != nil {
		t.Errorf("finish: %v", err)
	}
}

func TestReaderShortBuffer(t *testing.T) {
	r := NewReader([]byte{1, 2})
	if _, err := r.ReadU32(); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("err = %v, want ErrShortBuffer", err)
	}
}

func TestReaderInvalidBoolTag(t *testing.T) {
	r := NewReader([]byte{7})
	if _, err := r.ReadBool(); !errors.Is(err, ErrInvalidTag) {
		t.Errorf("err = %v, want ErrInvalidTag", err)
	}
}

func TestReaderStringLengthOverrun(t *testing.T) {
	w := NewWriter()
	w.WriteU64(100) // claims 100 bytes, none follow
	r := NewReader(w.Bytes())
	if _, err := r.ReadString(); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("err = %v, want ErrShortBuffer", err)
	}
}

func TestReaderTrailingBytes(t *testing.T) {
	r := NewReader([]byte{0, 1, 2})
	if _, err := r.ReadBool(); err != nil {
		t.Fatalf("read bool: %v", err)
	}
	if err := r.Finish(); !errors.Is(err, ErrTrailingBytes) {
		t.Errorf("err = %v, want ErrTrailingBytes", err)
	}
}

func TestDecodeBase58StrictLength(t *testing.T) {
	b := make([]byte, 32)
	b[0] = 1
	s := EncodeBase58(b)

	got, err := DecodeBase58(s, 32)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(got, b) {
		t.Errorf("round trip = %x, want %x", got, b)
	}

	if _, err := DecodeBase58(s, 64); !errors.Is(err, ErrWrongLength) {
		t.Errorf("err = %v, want ErrWrongLength", err)
	}
}

func TestDecodeBase58Invalid(t *testing.T) {
	if _, err := DecodeBase58("not!base58", 32); err == nil {
		t.Error("expected error for invalid base58 input")
	}
}
