package torrent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harioms1522/bitmeta/internal/fileset"
	"github.com/harioms1522/bitmeta/internal/piece"
	"github.com/harioms1522/bitmeta/internal/source"
	"github.com/sirupsen/logrus"
)

// Piece length bounds and defaults. Config.PieceLengthKiB must lie within
// [MinPieceLengthKiB, MaxPieceLengthKiB].
const (
	MinPieceLengthKiB     = 32
	MaxPieceLengthKiB     = 4096
	DefaultPieceLengthKiB = 256
	DefaultTimeout        = source.DefaultTimeout
)

// Build errors. Source failures come wrapped in a *SourceError.
var (
	ErrInvalidPieceLength = fmt.Errorf("piece length must be between %d and %d KiB", MinPieceLengthKiB, MaxPieceLengthKiB)
	ErrOpenFailed         = errors.New("open failed")
	ErrReadFailed         = errors.New("read failed")
	ErrNotAFile           = errors.New("not a regular file")
	ErrNoFiles            = errors.New("no files to build from")
	ErrNoName             = errors.New("files share no root directory to name the torrent after")
)

// SourceError reports a source that could not be opened or read.
// It matches ErrOpenFailed or ErrReadFailed, and its cause, with errors.Is.
type SourceError struct {
	Source string
	Op     error // ErrOpenFailed or ErrReadFailed
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.Op, e.Source, e.Err)
}

func (e *SourceError) Unwrap() []error {
	return []error{e.Op, e.Err}
}

// Config controls a Builder.
type Config struct {
	PieceLengthKiB int           // 0 means DefaultPieceLengthKiB
	Name           string        // overrides the derived torrent name
	Strict         bool          // any failing file aborts a multi-file build
	Timeout        time.Duration // for remote sources; 0 means DefaultTimeout
}

// Option customizes a Builder.
type Option func(*Builder)

// WithSource sets where sources are read from. The default reads local
// files and HTTP(S) URLs.
func WithSource(src source.Source) Option {
	return func(b *Builder) { b.src = src }
}

// WithLister sets how directories are enumerated. By default the source is
// used if it implements source.Lister.
func WithLister(l source.Lister) Option {
	return func(b *Builder) { b.lister = l }
}

// WithLogger sets the logger. The default is logrus.StandardLogger().
func WithLogger(l logrus.FieldLogger) Option {
	return func(b *Builder) { b.log = l }
}

// Builder creates info dictionaries from content. Each build call keeps its
// own hashing state, so one Builder may serve concurrent builds if its
// source does.
type Builder struct {
	cfg         Config
	pieceLength int
	src         source.Source
	lister      source.Lister
	log         logrus.FieldLogger
}

// NewBuilder validates cfg and returns a Builder. No I/O happens here.
func NewBuilder(cfg Config, opts ...Option) (*Builder, error) {
	if cfg.PieceLengthKiB == 0 {
		cfg.PieceLengthKiB = DefaultPieceLengthKiB
	}
	if cfg.PieceLengthKiB < MinPieceLengthKiB || cfg.PieceLengthKiB > MaxPieceLengthKiB {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPieceLength, cfg.PieceLengthKiB)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	b := &Builder{
		cfg:         cfg,
		pieceLength: cfg.PieceLengthKiB * 1024,
		src:         source.Default(cfg.Timeout),
		log:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.lister == nil {
		b.lister, _ = b.src.(source.Lister)
	}
	return b, nil
}

// Result is the outcome of a build.
type Result struct {
	Info    Info
	URLList []string       // web seeds implied by URL sources
	Skipped []*SourceError // files left out of a multi-file build
}

// Build picks the mode from its inputs: a single file, a single directory,
// or a list of files.
func (b *Builder) Build(ctx context.Context, inputs ...string) (*Result, error) {
	switch len(inputs) {
	case 0:
		return nil, ErrNoFiles
	case 1:
		st, err := b.stat(ctx, inputs[0])
		if err != nil {
			return nil, err
		}
		if st.Dir {
			return b.BuildDir(ctx, inputs[0])
		}
		return b.buildFile(ctx, inputs[0], st)
	default:
		return b.BuildFiles(ctx, inputs)
	}
}

// BuildFile hashes a single file or URL. Any failure is fatal.
func (b *Builder) BuildFile(ctx context.Context, name string) (*Result, error) {
	st, err := b.stat(ctx, name)
	if err != nil {
		return nil, err
	}
	return b.buildFile(ctx, name, st)
}

func (b *Builder) buildFile(ctx context.Context, name string, st source.Info) (*Result, error) {
	if st.Dir {
		return nil, &SourceError{Source: name, Op: ErrOpenFailed, Err: ErrNotAFile}
	}
	h := piece.NewHasher(b.pieceLength)
	n, err := b.hashSource(ctx, h, name, st)
	if err != nil {
		return nil, err
	}
	segs := fileset.Split(name)
	res := &Result{
		Info: Info{
			Name:        segs[len(segs)-1],
			PieceLength: int64(b.pieceLength),
			Pieces:      h.Sum(),
			Length:      n,
		},
	}
	if b.cfg.Name != "" {
		res.Info.Name = b.cfg.Name
	}
	if res.Info.Name == "" {
		return nil, ErrNoName
	}
	if source.IsURL(name) {
		res.URLList = []string{name}
	}
	return res, nil
}

// BuildFiles hashes a list of files as one multi-file torrent named after
// their common root directory. Files are hashed shallowest first. A file
// that cannot be opened or read is left out and reported in
// Result.Skipped, unless Config.Strict is set.
func (b *Builder) BuildFiles(ctx context.Context, names []string) (*Result, error) {
	if len(names) == 0 {
		return nil, ErrNoFiles
	}
	res := &Result{}
	paths := make([]string, 0, len(names))
	stats := make(map[string]source.Info, len(names))
	for _, name := range names {
		st, err := b.stat(ctx, name)
		if err != nil {
			if err := b.skip(res, err); err != nil {
				return nil, err
			}
			continue
		}
		if st.Dir {
			return nil, fmt.Errorf("%s: %w", name, ErrNotAFile)
		}
		p := b.abs(name)
		paths = append(paths, p)
		stats[p] = st
	}
	if len(paths) == 0 {
		return nil, b.noFiles(res)
	}

	layout, err := fileset.Reconcile(paths)
	if err != nil {
		return nil, err
	}
	name := b.cfg.Name
	if name == "" {
		name = layout.Name
	}
	if name == "" {
		return nil, ErrNoName
	}
	if first := layout.Files[0].Source; source.IsURL(first) {
		res.URLList = []string{first[:strings.LastIndex(first, "/")+1]}
	}

	h := piece.NewHasher(b.pieceLength)
	var files []File
	for _, f := range layout.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cp := h.Checkpoint()
		n, err := b.hashSource(ctx, h, f.Source, stats[f.Source])
		if err != nil {
			h.Rewind(cp)
			if err := b.skip(res, err); err != nil {
				return nil, err
			}
			continue
		}
		files = append(files, File{Path: f.Path, Length: n})
	}
	if len(files) == 0 {
		return nil, b.noFiles(res)
	}

	res.Info = Info{
		Name:        name,
		PieceLength: int64(b.pieceLength),
		Pieces:      h.Sum(),
		Files:       files,
	}
	b.log.WithFields(logrus.Fields{
		"name":    name,
		"files":   len(files),
		"skipped": len(res.Skipped),
		"pieces":  res.Info.PieceCount(),
	}).Info("built multi-file torrent")
	return res, nil
}

// BuildDir builds a multi-file torrent from every regular file below dir.
func (b *Builder) BuildDir(ctx context.Context, dir string) (*Result, error) {
	if b.lister == nil {
		return nil, fmt.Errorf("%s: %w", dir, errors.ErrUnsupported)
	}
	files, err := b.lister.ListFiles(ctx, dir)
	if err != nil {
		return nil, &SourceError{Source: dir, Op: ErrOpenFailed, Err: err}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoFiles)
	}
	b.log.WithFields(logrus.Fields{"dir": dir, "files": len(files)}).Debug("listed directory")
	return b.BuildFiles(ctx, files)
}

func (b *Builder) stat(ctx context.Context, name string) (source.Info, error) {
	st, err := b.src.Stat(ctx, name)
	if err != nil {
		return st, &SourceError{Source: name, Op: ErrOpenFailed, Err: err}
	}
	return st, nil
}

// hashSource streams one source, already described by st, into h and
// returns its length.
func (b *Builder) hashSource(ctx context.Context, h *piece.Hasher, name string, st source.Info) (int64, error) {
	rc, err := b.src.Open(ctx, name)
	if err != nil {
		return 0, &SourceError{Source: name, Op: ErrOpenFailed, Err: err}
	}
	defer rc.Close()

	n, err := h.ReadFrom(rc)
	if err != nil {
		return 0, &SourceError{Source: name, Op: ErrReadFailed, Err: err}
	}
	if st.Size >= 0 && n != st.Size {
		return 0, &SourceError{Source: name, Op: ErrReadFailed, Err: fmt.Errorf("read %d bytes, size is %d", n, st.Size)}
	}
	b.log.WithFields(logrus.Fields{"source": name, "bytes": n}).Debug("hashed source")
	return n, nil
}

// skip records a failed file, or returns the error when builds are strict.
func (b *Builder) skip(res *Result, err error) error {
	var se *SourceError
	if b.cfg.Strict || !errors.As(err, &se) {
		return err
	}
	b.log.WithFields(logrus.Fields{
		"source": se.Source,
		"op":     se.Op.Error(),
	}).WithError(se.Err).Warn("skipping file")
	res.Skipped = append(res.Skipped, se)
	return nil
}

func (b *Builder) noFiles(res *Result) error {
	errs := []error{ErrNoFiles}
	for _, se := range res.Skipped {
		errs = append(errs, se)
	}
	return errors.Join(errs...)
}

func (b *Builder) abs(name string) string {
	r, ok := b.src.(source.Resolver)
	if !ok {
		return name
	}
	abs, err := r.Abs(name)
	if err != nil {
		return name
	}
	return abs
}

// MetaOptions carries the top-level fields of a new metainfo file.
type MetaOptions struct {
	Announce     []string // first is the primary tracker; each becomes its own tier when there are several
	Comment      string
	CreatedBy    string
	CreationDate time.Time // zero means now
	Private      bool
	Source       string
}

// Meta wraps the built info dictionary into a complete metainfo file.
func (r *Result) Meta(opts MetaOptions) *Meta {
	m := &Meta{
		Comment:      opts.Comment,
		CreatedBy:    opts.CreatedBy,
		CreationDate: opts.CreationDate,
		URLList:      r.URLList,
		Info:         r.Info,
	}
	if m.CreationDate.IsZero() {
		m.CreationDate = time.Now()
	}
	m.CreationDate = m.CreationDate.Truncate(time.Second).UTC()
	if len(opts.Announce) > 0 {
		m.Announce = opts.Announce[0]
	}
	if len(opts.Announce) > 1 {
		for _, u := range opts.Announce {
			m.AnnounceList = append(m.AnnounceList, []string{u})
		}
	}
	m.Info.Private = opts.Private
	m.Info.Source = opts.Source
	m.InfoHash = m.Info.Hash()
	return m
}
