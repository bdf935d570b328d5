// Package bencode implements the strict, canonical bencode encoding used by
// BitTorrent metainfo files.
package bencode

import "sort"

// Value is a decoded bencode value. It is implemented by exactly four
// types: Int, String, List and Dict.
type Value interface {
	bencode()
}

// Int is a bencode integer.
type Int int64

// String is a bencode byte string. It holds raw bytes and need not be
// valid UTF-8.
type String []byte

// List is an ordered bencode list.
type List []Value

// Dict is a bencode dictionary. Keys are raw byte strings; Encode emits
// them in ascending byte order regardless of how the map was built.
type Dict map[string]Value

func (Int) bencode()    {}
func (String) bencode() {}
func (List) bencode()   {}
func (Dict) bencode()   {}

// Keys returns the dictionary keys in canonical order.
func (d Dict) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Str is a convenience constructor for a String holding s.
func Str(s string) String {
	return String(s)
}

// Strings builds a List of byte strings.
func Strings(ss ...string) List {
	l := make(List, len(ss))
	for i, s := range ss {
		l[i] = String(s)
	}
	return l
}
