package torrent

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/harioms1522/bitmeta/internal/bencode"
	"github.com/harioms1522/bitmeta/internal/piece"
)

// ErrInvalidTorrent is wrapped by every structural error Parse reports.
var ErrInvalidTorrent = errors.New("invalid torrent")

// Meta holds a whole metainfo file.
type Meta struct {
	Announce     string     // primary tracker URL
	AnnounceList [][]string // tiers of backup trackers (optional)
	Comment      string
	CreatedBy    string
	CreationDate time.Time // zero when absent
	Encoding     string
	URLList      []string // web seeds
	HTTPSeeds    []string
	Info         Info
	InfoHash     [20]byte // SHA-1 of bencoded info dict

	// Extra keeps unrecognized top-level keys, and recognized keys whose
	// value has an unexpected type, exactly as decoded.
	Extra map[string]bencode.Value
}

// Info is the "info" dictionary.
type Info struct {
	Name        string
	PieceLength int64
	Pieces      []byte // concatenated 20-byte SHA-1 hashes
	Length      int64  // single-file: total file size
	Files       []File // multi-file: list of path + length
	Private     bool
	Source      string

	Extra map[string]bencode.Value
}

// File is one entry in info.files (multi-file torrent).
type File struct {
	Path   []string // path components below Info.Name
	Length int64
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTorrent, fmt.Sprintf(format, args...))
}

// Parse decodes a .torrent file. The info hash is computed over the info
// dictionary's bytes as they appear in data.
func Parse(data []byte) (*Meta, error) {
	root, infoRaw, err := bencode.DecodeWithInfo(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTorrent, err)
	}
	dict, ok := root.(bencode.Dict)
	if !ok {
		return nil, invalid("root is not a dictionary")
	}
	if infoRaw == nil {
		return nil, invalid("missing info dictionary")
	}
	infoDict, ok := dict["info"].(bencode.Dict)
	if !ok {
		return nil, invalid("info is not a dictionary")
	}

	meta := &Meta{InfoHash: sha1.Sum(infoRaw)}
	meta.Info, err = parseInfo(infoDict)
	if err != nil {
		return nil, err
	}
	for k, v := range dict {
		if k == "info" || meta.setField(k, v) {
			continue
		}
		if meta.Extra == nil {
			meta.Extra = make(map[string]bencode.Value)
		}
		meta.Extra[k] = v
	}
	return meta, nil
}

// ParseFile is Parse under the name older callers use.
func ParseFile(data []byte) (*Meta, error) {
	return Parse(data)
}

func (m *Meta) setField(key string, v bencode.Value) bool {
	switch key {
	case "announce":
		return setString(&m.Announce, v)
	case "announce-list":
		// an empty or partly mistyped list stays verbatim in Extra
		list, ok := v.(bencode.List)
		if !ok || len(list) == 0 {
			return false
		}
		tiers := make([][]string, 0, len(list))
		for _, tier := range list {
			urls, ok := stringList(tier)
			if !ok {
				return false
			}
			tiers = append(tiers, urls)
		}
		m.AnnounceList = tiers
		return true
	case "comment":
		return setString(&m.Comment, v)
	case "created by":
		return setString(&m.CreatedBy, v)
	case "creation date":
		n, ok := v.(bencode.Int)
		if ok {
			m.CreationDate = time.Unix(int64(n), 0).UTC()
		}
		return ok
	case "encoding":
		return setString(&m.Encoding, v)
	case "url-list":
		// a single web seed may be given as a plain string
		if s, ok := v.(bencode.String); ok {
			m.URLList = []string{string(s)}
			return true
		}
		urls, ok := stringList(v)
		m.URLList = urls
		return ok
	case "httpseeds":
		urls, ok := stringList(v)
		m.HTTPSeeds = urls
		return ok
	}
	return false
}

func parseInfo(d bencode.Dict) (Info, error) {
	var info Info
	name, ok := d["name"].(bencode.String)
	if !ok {
		return info, invalid("info.name missing or not a string")
	}
	info.Name = string(name)

	pl, ok := d["piece length"].(bencode.Int)
	if !ok || pl <= 0 {
		return info, invalid("info.piece length missing or not positive")
	}
	info.PieceLength = int64(pl)

	pieces, ok := d["pieces"].(bencode.String)
	if !ok || len(pieces)%piece.HashSize != 0 {
		return info, invalid("info.pieces missing or not a multiple of %d bytes", piece.HashSize)
	}
	info.Pieces = []byte(pieces)

	lv, hasLength := d["length"]
	fv, hasFiles := d["files"]
	switch {
	case hasLength && hasFiles:
		return info, invalid("info has both length and files")
	case hasLength:
		n, ok := lv.(bencode.Int)
		if !ok || n < 0 {
			return info, invalid("info.length is not a non-negative integer")
		}
		info.Length = int64(n)
	case hasFiles:
		list, ok := fv.(bencode.List)
		if !ok || len(list) == 0 {
			return info, invalid("info.files is not a non-empty list")
		}
		for i, entry := range list {
			f, err := parseFile(entry)
			if err != nil {
				return info, fmt.Errorf("info.files[%d]: %w", i, err)
			}
			info.Files = append(info.Files, f)
		}
	default:
		return info, invalid("info has neither length nor files")
	}

	for k, v := range d {
		switch k {
		case "name", "piece length", "pieces", "length", "files":
			continue
		case "private":
			if n, ok := v.(bencode.Int); ok && (n == 0 || n == 1) {
				info.Private = n == 1
				if n == 1 {
					continue
				}
			}
		case "source":
			if setString(&info.Source, v) {
				continue
			}
		}
		if info.Extra == nil {
			info.Extra = make(map[string]bencode.Value)
		}
		info.Extra[k] = v
	}
	return info, nil
}

func parseFile(v bencode.Value) (File, error) {
	var f File
	d, ok := v.(bencode.Dict)
	if !ok {
		return f, invalid("not a dictionary")
	}
	n, ok := d["length"].(bencode.Int)
	if !ok || n < 0 {
		return f, invalid("length is not a non-negative integer")
	}
	f.Length = int64(n)
	path, ok := stringList(d["path"])
	if !ok || len(path) == 0 {
		return f, invalid("path is not a non-empty list of strings")
	}
	f.Path = path
	return f, nil
}

func setString(dst *string, v bencode.Value) bool {
	s, ok := v.(bencode.String)
	if ok {
		*dst = string(s)
	}
	return ok
}

func stringList(v bencode.Value) ([]string, bool) {
	list, ok := v.(bencode.List)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		s, ok := e.(bencode.String)
		if !ok {
			return nil, false
		}
		out = append(out, string(s))
	}
	return out, true
}

// InfoHashHex returns the info hash as a 40-character hex string.
func (m *Meta) InfoHashHex() string {
	return hex.EncodeToString(m.InfoHash[:])
}

// PieceCount returns the number of pieces (length of pieces / 20).
func (m *Meta) PieceCount() int {
	return m.Info.PieceCount()
}

// TotalSize returns total content length (single-file: info.length; multi-file: sum of file lengths).
func (m *Meta) TotalSize() int64 {
	return m.Info.TotalSize()
}

// FileCount returns 1 for single-file, len(info.files) for multi-file.
func (m *Meta) FileCount() int {
	if len(m.Info.Files) == 0 {
		return 1
	}
	return len(m.Info.Files)
}

// TrackerURLs returns the primary tracker followed by every tier's URLs,
// without duplicates or empty entries.
func (m *Meta) TrackerURLs() []string {
	seen := map[string]bool{"": true}
	var out []string
	add := func(u string) {
		if seen[u] {
			return
		}
		seen[u] = true
		out = append(out, u)
	}
	add(m.Announce)
	for _, tier := range m.AnnounceList {
		for _, u := range tier {
			add(u)
		}
	}
	return out
}

// PieceCount returns len(Pieces) / 20.
func (i *Info) PieceCount() int {
	return len(i.Pieces) / piece.HashSize
}

// TotalSize returns Length for single-file torrents and the sum of the
// file lengths otherwise.
func (i *Info) TotalSize() int64 {
	if len(i.Files) == 0 {
		return i.Length
	}
	var total int64
	for _, f := range i.Files {
		total += f.Length
	}
	return total
}

// Validate checks that Pieces holds exactly one hash per piece of content.
func (i *Info) Validate() error {
	if i.PieceLength <= 0 {
		return invalid("piece length %d is not positive", i.PieceLength)
	}
	total := i.TotalSize()
	want := (total + i.PieceLength - 1) / i.PieceLength
	if got := int64(i.PieceCount()); got != want || len(i.Pieces)%piece.HashSize != 0 {
		return invalid("%d bytes of content need %d pieces, have %d bytes of hashes", total, want, len(i.Pieces))
	}
	for n, f := range i.Files {
		if len(f.Path) == 0 {
			return invalid("info.files[%d] has an empty path", n)
		}
	}
	return nil
}
