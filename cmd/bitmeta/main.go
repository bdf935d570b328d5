package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/harioms1522/bitmeta/internal/torrent"
	log "github.com/sirupsen/logrus"
)

const createdBy = "bitmeta"

func usage() {
	fmt.Fprintf(os.Stderr, "usage: bitmeta create [flags] PATH...\n       bitmeta info FILE\n")
}

func main() {
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "create":
		err = create(ctx, os.Args[2:])
	case "info":
		err = info(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "bitmeta: %v\n", err)
		os.Exit(1)
	}
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	var announce stringList
	fs.Var(&announce, "announce", "tracker URL (repeatable)")
	pieceLength := fs.Int("piece-length", torrent.DefaultPieceLengthKiB, "piece length in KiB (32-4096)")
	name := fs.String("name", "", "torrent name (default: derived from the input)")
	comment := fs.String("comment", "", "comment")
	private := fs.Bool("private", false, "mark the torrent private")
	src := fs.String("source", "", "info source tag")
	strict := fs.Bool("strict", false, "fail if any file cannot be read")
	timeout := fs.Duration("timeout", torrent.DefaultTimeout, "timeout for URL sources")
	out := fs.String("o", "", "output file (default: NAME.torrent)")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Parse(args)
	if fs.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	// Config treats 0 as "use the default"; on the command line it is a mistake
	if *pieceLength == 0 {
		return fmt.Errorf("%w: got 0", torrent.ErrInvalidPieceLength)
	}

	b, err := torrent.NewBuilder(torrent.Config{
		PieceLengthKiB: *pieceLength,
		Name:           *name,
		Strict:         *strict,
		Timeout:        *timeout,
	})
	if err != nil {
		return err
	}
	res, err := b.Build(ctx, fs.Args()...)
	if err != nil {
		return err
	}
	for _, se := range res.Skipped {
		fmt.Fprintf(os.Stderr, "bitmeta: skipped %s\n", se)
	}
	meta := res.Meta(torrent.MetaOptions{
		Announce:     announce,
		Comment:      *comment,
		CreatedBy:    createdBy,
		CreationDate: time.Now(),
		Private:      *private,
		Source:       *src,
	})

	path := *out
	if path == "" {
		path = meta.Info.Name + ".torrent"
	}
	if err := os.WriteFile(path, meta.Encode(), 0o644); err != nil {
		return err
	}
	log.WithFields(log.Fields{"file": path, "hash": meta.InfoHashHex()}).Info("wrote torrent")
	return nil
}

func info(args []string) error {
	if len(args) != 1 {
		usage()
		os.Exit(2)
	}
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("file not found: %s", path)
		}
		return err
	}
	meta, err := torrent.Parse(data)
	if err != nil {
		return err
	}
	if err := meta.Info.Validate(); err != nil {
		log.WithError(err).Warn("inconsistent info dictionary")
	}
	printSummary(meta)
	return nil
}

func printSummary(meta *torrent.Meta) {
	fmt.Println("Name:", meta.Info.Name)
	fmt.Println("Info hash:", meta.InfoHashHex())
	fmt.Println("Piece count:", meta.PieceCount())
	fmt.Println("Piece length:", meta.Info.PieceLength)
	fmt.Println("File count:", meta.FileCount())
	fmt.Println("Total size:", meta.TotalSize())
	if !meta.CreationDate.IsZero() {
		fmt.Println("Created:", meta.CreationDate.Format(time.RFC3339))
	}
	if meta.Comment != "" {
		fmt.Println("Comment:", meta.Comment)
	}
	for _, u := range meta.TrackerURLs() {
		fmt.Println("Tracker:", u)
	}
	for _, off := range meta.Info.Offsets() {
		fmt.Printf("  %s (%d bytes, pieces %d-%d)\n", off.Path, off.End-off.Start, off.StartPiece, off.EndPiece)
	}
}
