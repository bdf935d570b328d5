package bencode

import (
	"bytes"
	"strconv"
)

// MaxDepth is the deepest nesting of lists and dictionaries Decode accepts.
const MaxDepth = 1024

// Decode parses one bencoded value from data. Bytes following the first
// complete value are ignored; use DecodePrefix to learn where it ended.
func Decode(data []byte) (Value, error) {
	v, _, err := DecodePrefix(data)
	return v, err
}

// DecodePrefix parses one bencoded value from the start of data and returns
// it together with the number of bytes it occupied.
func DecodePrefix(data []byte) (Value, int, error) {
	d := decoder{data: data}
	v, err := d.decode()
	if err != nil {
		return nil, 0, err
	}
	return v, d.pos, nil
}

// DecodeWithInfo parses bencoded data assumed to be a torrent root dict.
// It returns the decoded value and the raw bencoded bytes of the "info" dict value, for computing info hash.
// If the root is not a dict or has no "info" key, infoRaw is nil.
func DecodeWithInfo(data []byte) (value Value, infoRaw []byte, err error) {
	d := decoder{data: data, captureInfo: true}
	value, err = d.decode()
	if err != nil {
		return nil, nil, err
	}
	return value, d.infoRaw, nil
}

type decoder struct {
	data        []byte
	pos         int
	captureInfo bool
	infoRaw     []byte
	depth       int
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (d *decoder) decode() (Value, error) {
	if d.pos >= len(d.data) {
		return nil, syntaxError(d.pos, ErrUnexpectedEnd)
	}
	switch c := d.data[d.pos]; {
	case c == 'i':
		return d.decodeInt()
	case c == 'l':
		return d.decodeList()
	case c == 'd':
		return d.decodeDict()
	case isDigit(c):
		return d.decodeString()
	default:
		return nil, syntaxError(d.pos, ErrInvalidType)
	}
}

func (d *decoder) decodeInt() (Value, error) {
	d.pos++ // consume 'i'
	end := bytes.IndexByte(d.data[d.pos:], 'e')
	if end < 0 {
		return nil, syntaxError(len(d.data), ErrUnterminatedInteger)
	}
	raw := d.data[d.pos : d.pos+end]
	digits, off := raw, d.pos
	neg := len(digits) > 0 && digits[0] == '-'
	if neg {
		digits = digits[1:]
		off++
	}
	if len(digits) == 0 {
		return nil, syntaxError(off, ErrEmptyInteger)
	}
	for i, c := range digits {
		if !isDigit(c) {
			return nil, syntaxError(off+i, ErrNonDigitInInteger)
		}
	}
	// "0" is the only integer allowed to start with a zero; "-0" is not.
	if digits[0] == '0' && (len(digits) > 1 || neg) {
		return nil, syntaxError(off, ErrLeadingZeroInteger)
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return nil, syntaxError(d.pos, ErrIntegerOverflow)
	}
	d.pos += end + 1 // digits and 'e'
	return Int(n), nil
}

func (d *decoder) decodeString() (String, error) {
	start := d.pos
	for d.pos < len(d.data) && isDigit(d.data[d.pos]) {
		d.pos++
	}
	if d.data[start] == '0' && d.pos-start > 1 {
		return nil, syntaxError(start, ErrLeadingZeroLength)
	}
	if d.pos >= len(d.data) || d.data[d.pos] != ':' {
		return nil, syntaxError(d.pos, ErrMissingColon)
	}
	length, err := strconv.Atoi(string(d.data[start:d.pos]))
	d.pos++ // consume ':'
	if err != nil || length > len(d.data)-d.pos {
		return nil, syntaxError(start, ErrLengthExceedsInput)
	}
	buf := make([]byte, length)
	copy(buf, d.data[d.pos:d.pos+length])
	d.pos += length
	return String(buf), nil
}

// enter tracks one more level of nesting, failing past MaxDepth.
func (d *decoder) enter() error {
	if d.depth >= MaxDepth {
		return syntaxError(d.pos, ErrNestingTooDeep)
	}
	d.depth++
	return nil
}

func (d *decoder) decodeList() (Value, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()
	d.pos++ // consume 'l'
	list := List{}
	for {
		if d.pos >= len(d.data) {
			return nil, syntaxError(d.pos, ErrUnterminatedList)
		}
		if d.data[d.pos] == 'e' {
			d.pos++
			return list, nil
		}
		v, err := d.decode()
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
}

func (d *decoder) decodeDict() (Value, error) {
	topLevel := d.depth == 0
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()
	d.pos++ // consume 'd'
	dict := Dict{}

	var prev string
	for {
		if d.pos >= len(d.data) {
			return nil, syntaxError(d.pos, ErrUnterminatedDict)
		}
		c := d.data[d.pos]
		if c == 'e' {
			d.pos++
			return dict, nil
		}
		if !isDigit(c) {
			return nil, syntaxError(d.pos, ErrInvalidDictKey)
		}
		keyStart := d.pos
		key, err := d.decodeString()
		if err != nil {
			return nil, err
		}
		k := string(key)
		if _, dup := dict[k]; dup {
			return nil, syntaxError(keyStart, ErrDuplicateKey)
		}
		if len(dict) > 0 && k < prev {
			return nil, syntaxError(keyStart, ErrMissortedKey)
		}
		if d.pos >= len(d.data) {
			return nil, syntaxError(d.pos, ErrUnterminatedDict)
		}
		valueStart := d.pos
		v, err := d.decode()
		if err != nil {
			return nil, err
		}
		if d.captureInfo && topLevel && k == "info" {
			d.infoRaw = make([]byte, d.pos-valueStart)
			copy(d.infoRaw, d.data[valueStart:d.pos])
		}
		dict[k] = v
		prev = k
	}
}
