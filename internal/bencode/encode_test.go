package bencode

import (
	"bytes"
	"reflect"
	"testing"

	jackpal "github.com/jackpal/bencode-go"
)

func encodeAndAssert(t *testing.T, expected string, input Value) {
	t.Helper()
	if got := string(Encode(input)); got != expected {
		t.Errorf("Encode(%#v) = %q, want %q", input, got, expected)
	}
}

func TestEncodeInteger(t *testing.T) {
	encodeAndAssert(t, "i123e", Int(123))
	encodeAndAssert(t, "i-123e", Int(-123))
	encodeAndAssert(t, "i0e", Int(0))
}

func TestEncodeString(t *testing.T) {
	encodeAndAssert(t, "5:hello", Str("hello"))
	encodeAndAssert(t, "0:", Str(""))
	encodeAndAssert(t, "2:\x00\xff", String{0x00, 0xff})
}

func TestEncodeList(t *testing.T) {
	encodeAndAssert(t, "li1ei2ei3ee", List{Int(1), Int(2), Int(3)})
	encodeAndAssert(t, "le", List{})
	encodeAndAssert(t, "lli1eel9:test testelee", List{List{Int(1)}, List{Str("test test")}, List{}})
	encodeAndAssert(t, "li1ee", List{nil, Int(1), nil})
}

func TestEncodeDictionary(t *testing.T) {
	encodeAndAssert(t, "d3:key5:valuee", Dict{"key": Str("value")})
	encodeAndAssert(t, "d4:dictd9:space keyi4eee", Dict{"dict": Dict{"space key": Int(4)}})
	encodeAndAssert(t, "de", Dict{})
	encodeAndAssert(t, "d1:ai1ee", Dict{"a": Int(1), "b": nil})
}

func TestEncodeSortsKeys(t *testing.T) {
	d := Dict{}
	d["b"] = Int(2)
	d["a"] = Int(1)
	encodeAndAssert(t, "d1:ai1e1:bi2ee", d)

	// raw byte order, not text order
	encodeAndAssert(t, "d1:Ai1e1:ai2e1:\xffi3ee", Dict{"\xff": Int(3), "a": Int(2), "A": Int(1)})
	encodeAndAssert(t, "d1:ai1e2:aai2ee", Dict{"aa": Int(2), "a": Int(1)})
}

func TestEncodeNil(t *testing.T) {
	if got := Encode(nil); len(got) != 0 {
		t.Errorf("Encode(nil) = %q, want empty", got)
	}
}

func TestRoundTrip(t *testing.T) {
	values := []Value{
		Int(0),
		Int(-1),
		Str(""),
		String{0, 1, 2, 'e', ':'},
		List{},
		Dict{},
		List{Int(1), Str("two"), List{Int(3)}, Dict{"four": Int(4)}},
		Dict{
			"announce": Str("http://tracker.example.com/announce"),
			"info": Dict{
				"name":         Str("root"),
				"piece length": Int(32768),
				"pieces":       String(bytes.Repeat([]byte{0xab}, 40)),
				"files": List{
					Dict{"length": Int(300), "path": Strings("a", "x.txt")},
					Dict{"length": Int(500), "path": Strings("b", "z.txt")},
				},
			},
		},
	}
	for _, v := range values {
		enc := Encode(v)
		got, err := Decode(enc)
		if err != nil {
			t.Errorf("Decode(Encode(%#v)): %v", v, err)
			continue
		}
		if !reflect.DeepEqual(got, v) {
			t.Errorf("round trip of %q = %#v, want %#v", enc, got, v)
		}
	}
}

func TestEncodeCanonicalizes(t *testing.T) {
	// unsorted input is rejected by Decode, so build the value by hand and
	// check that the canonical bytes decode back to the same structure.
	v := Dict{"zz": Int(1), "a": List{Str("x")}, "m": Dict{"2": Int(2), "1": Int(1)}}
	enc := Encode(v)
	want := "d1:al1:xe1:md1:1i1e1:2i2ee2:zzi1ee"
	if string(enc) != want {
		t.Fatalf("Encode = %q, want %q", enc, want)
	}
	if !bytes.Equal(Encode(mustDecode(t, enc)), enc) {
		t.Error("re-encoding canonical bytes changed them")
	}
}

// Encoded output must be readable by other bencode implementations.
func TestEncodeInterop(t *testing.T) {
	v := Dict{
		"comment":       Str("hello"),
		"creation date": Int(1700000000),
		"info": Dict{
			"length":       Int(800),
			"name":         Str("file.bin"),
			"piece length": Int(400),
			"pieces":       String(bytes.Repeat([]byte("p"), 40)),
		},
		"url-list": Strings("http://a/", "http://b/"),
	}
	other, err := jackpal.Decode(bytes.NewReader(Encode(v)))
	if err != nil {
		t.Fatalf("jackpal.Decode: %v", err)
	}
	root, ok := other.(map[string]interface{})
	if !ok {
		t.Fatalf("root = %T", other)
	}
	if root["comment"] != "hello" || root["creation date"] != int64(1700000000) {
		t.Errorf("root = %v", root)
	}
	info := root["info"].(map[string]interface{})
	if info["length"] != int64(800) || info["name"] != "file.bin" || len(info["pieces"].(string)) != 40 {
		t.Errorf("info = %v", info)
	}
	urls := root["url-list"].([]interface{})
	if len(urls) != 2 || urls[1] != "http://b/" {
		t.Errorf("url-list = %v", urls)
	}

	// and what they produce must decode strictly here
	var buf bytes.Buffer
	if err := jackpal.Marshal(&buf, other); err != nil {
		t.Fatalf("jackpal.Marshal: %v", err)
	}
	got, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode(jackpal output): %v", err)
	}
	if !reflect.DeepEqual(got, v) {
		t.Errorf("Decode(jackpal output) = %#v, want %#v", got, v)
	}
}

func mustDecode(t *testing.T, data []byte) Value {
	t.Helper()
	v, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode(%q): %v", data, err)
	}
	return v
}
