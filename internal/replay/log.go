package replay

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/xid"
)

// Log format: line-oriented text.
//
// - Blank lines ignored.
// - Lines starting with '#' ignored (the writer puts the session id there).
// - Line "START" resets the origin (next record time is relative to 0 again).
// - Data lines are: <t_ns>,<dir>,<hex>
//   where t_ns is nanoseconds since START, dir is "rx" (host to receiver) or
//   "tx" (receiver to host), and hex is the raw bytes.
//   A line with only <t_ns>,<hex> is read as rx.

type Direction uint8

const (
	DirRx Direction = iota
	DirTx
)

func (d Direction) String() string {
	if d == DirTx {
		return "tx"
	}
	return "rx"
}

func parseDirection(s string) (Direction, error) {
	switch s {
	case "rx":
		return DirRx, nil
	case "tx":
		return DirTx, nil
	}
	return 0, fmt.Errorf("invalid direction %q", s)
}

// Record is one logged chunk of bytes. A nil Data marks START.
type Record struct {
	At   time.Duration
	Dir  Direction
	Data []byte
}

func (r Record) IsStart() bool {
	return r.Data == nil
}

type Reader struct {
	r io.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadFile reads every record of the session log at path.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewReader(f).ReadAll()
}

func (rr *Reader) ReadAll() ([]Record, error) {
	s := bufio.NewScanner(rr.r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	recs := make([]Record, 0, 1024)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "START" {
			recs = append(recs, Record{})
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("invalid session line (want 2 or 3 fields): %q", line)
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
			if fields[i] == "" {
				return nil, fmt.Errorf("invalid session line (empty field): %q", line)
			}
		}

		tsNs, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid session timestamp %q: %w", fields[0], err)
		}
		if tsNs < 0 {
			return nil, fmt.Errorf("invalid session timestamp (negative): %d", tsNs)
		}

		dir := DirRx
		hexStr := fields[1]
		if len(fields) == 3 {
			if dir, err = parseDirection(fields[1]); err != nil {
				return nil, err
			}
			hexStr = fields[2]
		}
		b, err := hex.DecodeString(strings.ReplaceAll(hexStr, " ", ""))
		if err != nil {
			return nil, fmt.Errorf("invalid session hex payload: %w", err)
		}
		if len(b) == 0 {
			return nil, errors.New("invalid session payload (empty)")
		}

		recs = append(recs, Record{At: time.Duration(tsNs), Dir: dir, Data: b})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

type Writer struct {
	f       io.WriteCloser
	w       *bufio.Writer
	start   time.Time
	session string
	closed  bool
}

// CreateWriter starts a new session log at path, tagged with a fresh session
// id.
func CreateWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := newWriter(f, xid.New().String(), time.Now())
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

func newWriter(f io.WriteCloser, session string, start time.Time) (*Writer, error) {
	bw := bufio.NewWriterSize(f, 64*1024)
	if _, err := fmt.Fprintf(bw, "# session %s\nSTART\n", session); err != nil {
		return nil, err
	}
	return &Writer{f: f, w: bw, start: start, session: session}, nil
}

func (ww *Writer) Session() string {
	return ww.session
}

func (ww *Writer) WriteRecord(now time.Time, dir Direction, data []byte) error {
	if ww.closed {
		return errors.New("session writer is closed")
	}
	if len(data) == 0 {
		return errors.New("record is empty")
	}
	d := now.Sub(ww.start)
	if d < 0 {
		d = 0
	}
	_, err := fmt.Fprintf(ww.w, "%d,%s,%s\n", d.Nanoseconds(), dir, hex.EncodeToString(data))
	return err
}

func (ww *Writer) Flush() error {
	if ww.closed {
		return nil
	}
	return ww.w.Flush()
}

func (ww *Writer) Close() error {
	if ww.closed {
		return nil
	}
	ww.closed = true
	if err := ww.w.Flush(); err != nil {
		_ = ww.f.Close()
		return err
	}
	return ww.f.Close()
}
