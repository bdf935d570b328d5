package bencode

import "strconv"

// Encode returns the canonical encoding of v. Dictionary keys are written
// in ascending byte order. Nil list elements and nil dictionary values are
// skipped, and a nil v encodes to no bytes.
func Encode(v Value) []byte {
	return Append(nil, v)
}

// Append appends the canonical encoding of v to dst and returns the
// extended buffer.
func Append(dst []byte, v Value) []byte {
	switch v := v.(type) {
	case Int:
		dst = append(dst, 'i')
		dst = strconv.AppendInt(dst, int64(v), 10)
		return append(dst, 'e')
	case String:
		return appendString(dst, v)
	case List:
		dst = append(dst, 'l')
		for _, elem := range v {
			if elem != nil {
				dst = Append(dst, elem)
			}
		}
		return append(dst, 'e')
	case Dict:
		dst = append(dst, 'd')
		for _, k := range v.Keys() {
			if v[k] == nil {
				continue
			}
			dst = appendString(dst, []byte(k))
			dst = Append(dst, v[k])
		}
		return append(dst, 'e')
	}
	return dst
}

func appendString(dst, s []byte) []byte {
	dst = strconv.AppendInt(dst, int64(len(s)), 10)
	dst = append(dst, ':')
	return append(dst, s...)
}
