// Package piece computes BitTorrent piece hashes over a virtual byte stream
// made of one or more sources laid end to end.
package piece

import (
	"crypto/sha1"
	"errors"
	"io"
)

// HashSize is the length of one piece digest.
const HashSize = sha1.Size

// ErrFinished is returned when data is written after Sum.
var ErrFinished = errors.New("piece: hasher already finished")

// Hasher cuts everything written to it into fixed-length windows and
// hashes each one. The partially filled window carries over from one Write
// or ReadFrom to the next, so a piece may straddle two sources.
//
// A Hasher belongs to a single build; it is not safe for concurrent use.
type Hasher struct {
	length   int
	window   []byte
	pieces   []byte
	total    int64
	finished bool

	// state of the latest checkpoint; its window prefix is copied to saved
	// only once the window is flushed over it
	seq    int
	mark   int
	saved  []byte
	stored bool
}

// NewHasher returns a Hasher producing one digest per length bytes.
// It panics if length is not positive.
func NewHasher(length int) *Hasher {
	if length <= 0 {
		panic("piece: non-positive piece length")
	}
	return &Hasher{
		length: length,
		window: make([]byte, 0, length),
	}
}

// PieceLength returns the window size.
func (h *Hasher) PieceLength() int { return h.length }

// Len returns the number of bytes consumed so far.
func (h *Hasher) Len() int64 { return h.total }

// Count returns the number of digests emitted so far.
func (h *Hasher) Count() int { return len(h.pieces) / HashSize }

// Write implements io.Writer.
func (h *Hasher) Write(p []byte) (int, error) {
	if h.finished {
		return 0, ErrFinished
	}
	n := len(p)
	for len(p) > 0 {
		if len(h.window) == 0 && len(p) >= h.length {
			// whole piece available, hash it in place
			h.emit(p[:h.length])
			p = p[h.length:]
			continue
		}
		k := copy(h.window[len(h.window):h.length], p)
		h.window = h.window[:len(h.window)+k]
		p = p[k:]
		if len(h.window) == h.length {
			h.flush()
		}
	}
	h.total += int64(n)
	return n, nil
}

// ReadFrom streams r into the hasher until EOF. Bytes read before a failing
// read remain in the stream; callers that want to drop them use Checkpoint
// and Rewind.
func (h *Hasher) ReadFrom(r io.Reader) (int64, error) {
	if h.finished {
		return 0, ErrFinished
	}
	buf := make([]byte, readSize(h.length))
	var n int64
	for {
		m, err := r.Read(buf)
		if m > 0 {
			h.Write(buf[:m])
			n += int64(m)
		}
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
	}
}

func readSize(length int) int {
	const max = 1 << 20
	if length > max {
		return max
	}
	return length
}

func (h *Hasher) emit(p []byte) {
	sum := sha1.Sum(p)
	h.pieces = append(h.pieces, sum[:]...)
}

// flush hashes the window and empties it.
func (h *Hasher) flush() {
	if h.seq > 0 && !h.stored {
		h.saved = append(h.saved[:0], h.window[:h.mark]...)
		h.stored = true
	}
	h.emit(h.window)
	h.window = h.window[:0]
}

// Sum hashes the trailing partial window, if any, and returns the
// concatenated digests. An empty stream yields no digests. Sum may be
// called more than once; the hasher accepts no more data after the first.
func (h *Hasher) Sum() []byte {
	if !h.finished {
		if len(h.window) > 0 {
			h.flush()
		}
		h.finished = true
	}
	out := make([]byte, len(h.pieces))
	copy(out, h.pieces)
	return out
}

// Checkpoint records the hasher state so a later Rewind can undo
// everything written after it.
type Checkpoint struct {
	seq    int
	pieces int
	total  int64
}

// Checkpoint returns the current state. Taking a checkpoint invalidates
// earlier ones.
func (h *Hasher) Checkpoint() Checkpoint {
	h.seq++
	h.mark = len(h.window)
	h.stored = false
	return Checkpoint{seq: h.seq, pieces: len(h.pieces), total: h.total}
}

// Rewind restores the state captured by c, which must be the latest
// checkpoint taken on this hasher.
func (h *Hasher) Rewind(c Checkpoint) {
	if c.seq == 0 || c.seq != h.seq {
		panic("piece: rewind to a stale checkpoint")
	}
	h.pieces = h.pieces[:c.pieces]
	if h.stored {
		h.window = append(h.window[:0], h.saved...)
		h.stored = false
	} else {
		h.window = h.window[:h.mark]
	}
	h.total = c.total
	h.finished = false
}
