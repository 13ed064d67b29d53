package rlp

import "fmt"

// Decode parses data as a single RLP-encoded item (a byte string or a
// list) and fails if any bytes remain afterward. Malformed length
// headers, truncated inputs, or inconsistent nesting fail with
// ErrInvalidRLP.
func Decode(data []byte) (Item, error) {
	item, n, err := decodeAt(data)
	if err != nil {
		return Item{}, err
	}
	if n != len(data) {
		return Item{}, fmt.Errorf("%w: %d trailing byte(s)", ErrInvalidRLP, len(data)-n)
	}
	return item, nil
}

// decodeAt decodes a single item starting at data[0] and returns it
// together with the number of bytes it consumed.
func decodeAt(data []byte) (Item, int, error) {
	if len(data) == 0 {
		return Item{}, 0, fmt.Errorf("%w: empty input", ErrInvalidRLP)
	}

	b0 := data[0]
	switch {
	case b0 < 0x80:
		return Item{payload: data[0:1], raw: data[0:1]}, 1, nil

	case b0 < 0xb8:
		length := int(b0 - 0x80)
		end := 1 + length
		if end > len(data) {
			return Item{}, 0, fmt.Errorf("%w: truncated short string", ErrInvalidRLP)
		}
		return Item{payload: data[1:end], raw: data[0:end]}, end, nil

	case b0 < 0xc0:
		lenOfLen := int(b0 - 0xb7)
		if 1+lenOfLen > len(data) {
			return Item{}, 0, fmt.Errorf("%w: truncated long string length", ErrInvalidRLP)
		}
		length, err := decodeLength(data[1 : 1+lenOfLen])
		if err != nil {
			return Item{}, 0, err
		}
		start := 1 + lenOfLen
		end := start + length
		if end > len(data) || end < start {
			return Item{}, 0, fmt.Errorf("%w: truncated long string", ErrInvalidRLP)
		}
		return Item{payload: data[start:end], raw: data[0:end]}, end, nil

	case b0 < 0xf8:
		length := int(b0 - 0xc0)
		end := 1 + length
		if end > len(data) {
			return Item{}, 0, fmt.Errorf("%w: truncated short list", ErrInvalidRLP)
		}
		items, err := decodeItems(data[1:end])
		if err != nil {
			return Item{}, 0, err
		}
		return Item{isList: true, items: items, raw: data[0:end]}, end, nil

	default:
		lenOfLen := int(b0 - 0xf7)
		if 1+lenOfLen > len(data) {
			return Item{}, 0, fmt.Errorf("%w: truncated long list length", ErrInvalidRLP)
		}
		length, err := decodeLength(data[1 : 1+lenOfLen])
		if err != nil {
			return Item{}, 0, err
		}
		start := 1 + lenOfLen
		end := start + length
		if end > len(data) || end < start {
			return Item{}, 0, fmt.Errorf("%w: truncated long list", ErrInvalidRLP)
		}
		items, err := decodeItems(data[start:end])
		if err != nil {
			return Item{}, 0, err
		}
		return Item{isList: true, items: items, raw: data[0:end]}, end, nil
	}
}

// decodeItems decodes a packed sequence of items that must exactly
// fill the given buffer.
func decodeItems(data []byte) ([]Item, error) {
	var items []Item
	for len(data) > 0 {
		item, n, err := decodeAt(data)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		data = data[n:]
	}
	return items, nil
}

func decodeLength(b []byte) (int, error) {
	if len(b) == 0 || b[0] == 0 {
		// A canonical long-form header never has a leading zero or a
		// zero-length length field; reject it as malformed rather than
		// silently accepting an ambiguous encoding.
		return 0, fmt.Errorf("%w: malformed length header", ErrInvalidRLP)
	}
	if len(b) > 8 {
		return 0, fmt.Errorf("%w: length header too wide", ErrInvalidRLP)
	}
	var n uint64
	for _, c := range b {
		n = n<<8 | uint64(c)
	}
	if n > (1<<31 - 1) {
		return 0, fmt.Errorf("%w: length %d too large", ErrInvalidRLP, n)
	}
	return int(n), nil
}
