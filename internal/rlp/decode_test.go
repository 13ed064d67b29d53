package rlp

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		t.Fatalf("bad hex fixture %q: %v", s, err)
	}
	return b
}

func TestDecode_ByteStrings(t *testing.T) {
	t.Run("single byte below 0x80 is itself", func(t *testing.T) {
		item, err := Decode([]byte{0x00})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.IsList() {
			t.Fatalf("expected byte string")
		}
		if !bytes.Equal(item.AsBytes(), []byte{0x00}) {
			t.Errorf("got %x", item.AsBytes())
		}
		if item.EncodedLen() != 1 {
			t.Errorf("expected encoded len 1, got %d", item.EncodedLen())
		}
	})

	t.Run("empty string", func(t *testing.T) {
		item, err := Decode(mustHex(t, "0x80"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(item.AsBytes()) != 0 {
			t.Errorf("expected empty payload, got %x", item.AsBytes())
		}
	})

	t.Run("short string", func(t *testing.T) {
		// "dog"
		item, err := Decode(mustHex(t, "0x83646f67"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(item.AsBytes()) != "dog" {
			t.Errorf("got %q", item.AsBytes())
		}
	})

	t.Run("long string", func(t *testing.T) {
		payload := strings.Repeat("a", 56)
		encoded := append([]byte{0xb8, 0x38}, []byte(payload)...)
		item, err := Decode(encoded)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(item.AsBytes()) != payload {
			t.Errorf("got %d bytes, want %d", len(item.AsBytes()), len(payload))
		}
		if item.EncodedLen() != len(encoded) {
			t.Errorf("encoded len = %d, want %d", item.EncodedLen(), len(encoded))
		}
	})
}

func TestDecode_Lists(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		item, err := Decode(mustHex(t, "0xc0"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		items, err := item.AsList()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected empty list, got %d items", len(items))
		}
	})

	t.Run("list of strings", func(t *testing.T) {
		// ["cat", "dog"]
		item, err := Decode(mustHex(t, "0xc88363617483646f67"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		items, err := item.AsList()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
		if string(items[0].AsBytes()) != "cat" || string(items[1].AsBytes()) != "dog" {
			t.Errorf("got %q, %q", items[0].AsBytes(), items[1].AsBytes())
		}
	})

	t.Run("nested list", func(t *testing.T) {
		// [ [], [[]], [ [], [[]] ] ]  (the canonical "set theoretical representation of 3")
		item, err := Decode(mustHex(t, "0xc7c0c1c0c3c0c1c0"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		items, err := item.AsList()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 3 {
			t.Fatalf("expected 3 items, got %d", len(items))
		}
		inner, err := items[2].AsList()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(inner) != 2 {
			t.Errorf("expected 2 inner items, got %d", len(inner))
		}
	})

	t.Run("asBytes on a list item returns its own RLP encoding", func(t *testing.T) {
		raw := mustHex(t, "0xc88363617483646f67")
		item, err := Decode(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(item.AsBytes(), raw) {
			t.Errorf("AsBytes() on list = %x, want original encoding %x", item.AsBytes(), raw)
		}
	})
}

func TestDecode_Errors(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"empty input", []byte{}},
		{"truncated short string", mustHexNoT([]byte{0x83, 0x64, 0x6f})},
		{"truncated long string length", []byte{0xb8}},
		{"truncated short list", []byte{0xc3, 0x80, 0x80}},
		{"trailing bytes", []byte{0x80, 0x80}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Decode(c.data)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, ErrInvalidRLP) {
				t.Errorf("expected ErrInvalidRLP, got %v", err)
			}
		})
	}
}

func mustHexNoT(b []byte) []byte {
	return b
}

func TestItem_AsList_OnByteStringFails(t *testing.T) {
	item, err := Decode(mustHex(t, "0x83646f67"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := item.AsList(); !errors.Is(err, ErrNotAList) {
		t.Errorf("expected ErrNotAList, got %v", err)
	}
}

func TestItem_AsUint(t *testing.T) {
	t.Run("accepts leading zero bytes", func(t *testing.T) {
		item, err := Decode(mustHex(t, "0x8200ff"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		v, err := item.AsUint()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v.Uint64() != 0xff {
			t.Errorf("got %s", v.String())
		}
	})

	t.Run("fails on list item", func(t *testing.T) {
		item, err := Decode(mustHex(t, "0xc0"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := item.AsUint(); !errors.Is(err, ErrNotBytes) {
			t.Errorf("expected ErrNotBytes, got %v", err)
		}
	})
}
