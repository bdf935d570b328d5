package torrent

import (
	"crypto/sha1"
	"path"

	"github.com/harioms1522/bitmeta/internal/bencode"
)

func withExtra(extra map[string]bencode.Value) bencode.Dict {
	d := make(bencode.Dict, len(extra)+8)
	for k, v := range extra {
		d[k] = v
	}
	return d
}

// Value returns the info dictionary.
func (i *Info) Value() bencode.Dict {
	d := withExtra(i.Extra)
	d["name"] = bencode.Str(i.Name)
	d["piece length"] = bencode.Int(i.PieceLength)
	d["pieces"] = bencode.String(i.Pieces)
	if len(i.Files) == 0 {
		d["length"] = bencode.Int(i.Length)
	} else {
		files := make(bencode.List, len(i.Files))
		for n, f := range i.Files {
			files[n] = bencode.Dict{
				"length": bencode.Int(f.Length),
				"path":   bencode.Strings(f.Path...),
			}
		}
		d["files"] = files
	}
	if i.Private {
		d["private"] = bencode.Int(1)
	}
	if i.Source != "" {
		d["source"] = bencode.Str(i.Source)
	}
	return d
}

// Hash returns the SHA-1 of the canonical info dictionary.
func (i *Info) Hash() [20]byte {
	return sha1.Sum(bencode.Encode(i.Value()))
}

// Value returns the whole metainfo dictionary.
func (m *Meta) Value() bencode.Dict {
	d := withExtra(m.Extra)
	if m.Announce != "" {
		d["announce"] = bencode.Str(m.Announce)
	}
	if len(m.AnnounceList) > 0 {
		tiers := make(bencode.List, len(m.AnnounceList))
		for n, tier := range m.AnnounceList {
			tiers[n] = bencode.Strings(tier...)
		}
		d["announce-list"] = tiers
	}
	if m.Comment != "" {
		d["comment"] = bencode.Str(m.Comment)
	}
	if m.CreatedBy != "" {
		d["created by"] = bencode.Str(m.CreatedBy)
	}
	if !m.CreationDate.IsZero() {
		d["creation date"] = bencode.Int(m.CreationDate.Unix())
	}
	if m.Encoding != "" {
		d["encoding"] = bencode.Str(m.Encoding)
	}
	if len(m.URLList) > 0 {
		d["url-list"] = bencode.Strings(m.URLList...)
	}
	if len(m.HTTPSeeds) > 0 {
		d["httpseeds"] = bencode.Strings(m.HTTPSeeds...)
	}
	d["info"] = m.Info.Value()
	return d
}

// Encode returns the canonical bencoding of m.
func (m *Meta) Encode() []byte {
	return bencode.Encode(m.Value())
}

// FileOffset locates one file in the piece stream.
type FileOffset struct {
	Path       string // Info.Name joined with the file's path
	Start      int64  // stream offset of the file's first byte
	StartPiece int64  // piece holding that byte
	Offset     int64  // position of that byte within StartPiece
	End        int64  // stream offset just past the file
	EndPiece   int64  // End / PieceLength
}

// Offsets returns where each file starts and ends in the piece stream.
func (i *Info) Offsets() []FileOffset {
	if i.PieceLength <= 0 {
		return nil
	}
	if len(i.Files) == 0 {
		return []FileOffset{{
			Path:     i.Name,
			End:      i.Length,
			EndPiece: i.Length / i.PieceLength,
		}}
	}
	out := make([]FileOffset, len(i.Files))
	var pos int64
	for n, f := range i.Files {
		out[n] = FileOffset{
			Path:       path.Join(append([]string{i.Name}, f.Path...)...),
			Start:      pos,
			StartPiece: pos / i.PieceLength,
			Offset:     pos % i.PieceLength,
		}
		pos += f.Length
		out[n].End = pos
		out[n].EndPiece = pos / i.PieceLength
	}
	return out
}
