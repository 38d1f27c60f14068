// Command posstore reads, writes, and shuffles flat files of fixed-size
// training-position records (see internal/storage for the record
// layouts), and dumps the positions held in a running engine's badger
// store to such a file.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/hailam/chessplay/internal/storage"
)

// Exit codes, one per distinguishable failure class.
const (
	exitOK = iota
	exitUsage
	exitInputOpen
	exitRead
	exitCompress
	exitWrite
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		usage()
		return exitUsage
	}

	switch args[0] {
	case "shuffle":
		return cmdShuffle(args[1:])
	case "dump":
		return cmdDump(args[1:])
	default:
		usage()
		return exitUsage
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: posstore shuffle -in FILE -out FILE [-selfplay] [-z]")
	fmt.Fprintln(os.Stderr, "       posstore dump -out FILE [-z]")
}

func recordSize(selfplay bool) int {
	if selfplay {
		return storage.SelfplayPositionSize
	}
	return storage.LabeledPositionSize
}

// cmdShuffle reads a flat file of fixed-size records, shuffles them in
// place, and writes the result back out.
func cmdShuffle(args []string) int {
	fs := flag.NewFlagSet("shuffle", flag.ContinueOnError)
	in := fs.String("in", "", "input record file")
	out := fs.String("out", "", "output record file")
	selfplay := fs.Bool("selfplay", false, "records are SelfplayPosition (38 bytes) instead of LabeledPosition (28 bytes)")
	compressed := fs.Bool("z", false, "input/output is zstd-compressed")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *in == "" || *out == "" {
		usage()
		return exitUsage
	}

	data, code := readAll(*in, *compressed)
	if code != exitOK {
		return code
	}

	size := recordSize(*selfplay)
	if len(data)%size != 0 {
		fmt.Fprintf(os.Stderr, "posstore: input length %d is not a multiple of record size %d\n", len(data), size)
		return exitRead
	}

	n := len(data) / size
	records := make([][]byte, n)
	for i := 0; i < n; i++ {
		records[i] = data[i*size : (i+1)*size]
	}
	rand.Shuffle(n, func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})

	shuffled := make([]byte, 0, len(data))
	for _, r := range records {
		shuffled = append(shuffled, r...)
	}

	return writeAll(*out, shuffled, *compressed)
}

// cmdDump exports every position stored in the local training database to
// a flat file of LabeledPosition records.
func cmdDump(args []string) int {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	out := fs.String("out", "", "output record file")
	compressed := fs.Bool("z", false, "compress output with zstd")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *out == "" {
		usage()
		return exitUsage
	}

	s, err := storage.NewStorage()
	if err != nil {
		fmt.Fprintf(os.Stderr, "posstore: opening store: %v\n", err)
		return exitInputOpen
	}
	defer s.Close()

	var buf []byte
	var iterErr error
	err = s.EachLabeled(func(hash uint64, lp storage.LabeledPosition) bool {
		rec := lp.Marshal()
		buf = append(buf, rec...)
		return true
	})
	if err != nil {
		iterErr = err
	}
	if iterErr != nil {
		fmt.Fprintf(os.Stderr, "posstore: reading store: %v\n", iterErr)
		return exitRead
	}

	return writeAll(*out, buf, *compressed)
}

func readAll(path string, compressed bool) ([]byte, int) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "posstore: opening %s: %v\n", path, err)
		return nil, exitInputOpen
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if compressed {
		zr, err := zstd.NewReader(r)
		if err != nil {
			fmt.Fprintf(os.Stderr, "posstore: zstd reader: %v\n", err)
			return nil, exitCompress
		}
		defer zr.Close()
		r = zr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		if compressed {
			fmt.Fprintf(os.Stderr, "posstore: decompressing %s: %v\n", path, err)
			return nil, exitCompress
		}
		fmt.Fprintf(os.Stderr, "posstore: reading %s: %v\n", path, err)
		return nil, exitRead
	}
	return data, exitOK
}

func writeAll(path string, data []byte, compressed bool) int {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "posstore: creating %s: %v\n", path, err)
		return exitWrite
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if compressed {
		zw, err := zstd.NewWriter(w)
		if err != nil {
			fmt.Fprintf(os.Stderr, "posstore: zstd writer: %v\n", err)
			return exitCompress
		}
		if _, err := zw.Write(data); err != nil {
			fmt.Fprintf(os.Stderr, "posstore: compressing %s: %v\n", path, err)
			return exitCompress
		}
		if err := zw.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "posstore: closing compressor: %v\n", err)
			return exitCompress
		}
	} else if _, err := w.Write(data); err != nil {
		fmt.Fprintf(os.Stderr, "posstore: writing %s: %v\n", path, err)
		return exitWrite
	}

	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "posstore: flushing %s: %v\n", path, err)
		return exitWrite
	}
	return exitOK
}
