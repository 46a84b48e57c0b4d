package ledger

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"
)

// Separator joins the fields of a ledger line
const Separator = " || "

// Entry records that a card was placed on a page by an earlier run
type Entry struct {
	Number int
	Page   int
	Title  string
}

func (e Entry) String() string {
	return strconv.Itoa(e.Number) + Separator + strconv.Itoa(e.Page) + Separator + e.Title
}

// Ledger is an ordered set of entries keyed by card number
type Ledger struct {
	entries map[int]Entry
}

// New returns an empty ledger
func New() *Ledger {
	return &Ledger{entries: make(map[int]Entry)}
}

// Load reads a ledger file. A missing file is an empty ledger.
func Load(path string, log *zap.Logger) (*Ledger, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		log.Debug("No ledger yet", zap.String("path", path))
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("error opening ledger: %w", err)
	}
	defer f.Close()

	l, err := Parse(f, log)
	if err != nil {
		return nil, fmt.Errorf("error reading ledger %s: %w", path, err)
	}
	return l, nil
}

// Parse reads entries from r. Lines whose number or page is not an integer are
// dropped; when a number appears twice the first line wins.
func Parse(r io.Reader, log *zap.Logger) (*Ledger, error) {
	l := New()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		e, err := ParseLine(line)
		if err != nil {
			log.Warn("Dropping ledger line", zap.Int("line", lineNo), zap.String("text", line), zap.Error(err))
			continue
		}
		if _, dup := l.entries[e.Number]; dup {
			log.Debug("Duplicate ledger entry ignored", zap.Int("line", lineNo), zap.Int("number", e.Number))
			continue
		}
		l.entries[e.Number] = e
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return l, nil
}

// ParseLine parses "number || page || title"
func ParseLine(line string) (Entry, error) {
	fields := strings.SplitN(line, strings.TrimSpace(Separator), 3)

	number, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return Entry{}, fmt.Errorf("invalid card number %q", strings.TrimSpace(fields[0]))
	}

	e := Entry{Number: number}
	if len(fields) > 1 {
		if e.Page, err = strconv.Atoi(strings.TrimSpace(fields[1])); err != nil {
			return Entry{}, fmt.Errorf("invalid page number %q", strings.TrimSpace(fields[1]))
		}
	}
	if len(fields) > 2 {
		e.Title = strings.TrimSpace(fields[2])
	}
	return e, nil
}

// Contains reports whether a card number was already rendered
func (l *Ledger) Contains(number int) bool {
	_, ok := l.entries[number]
	return ok
}

// Get returns the entry of a card number
func (l *Ledger) Get(number int) (Entry, bool) {
	e, ok := l.entries[number]
	return e, ok
}

// Len returns the number of entries
func (l *Ledger) Len() int {
	return len(l.entries)
}

// MaxPage returns the highest page number recorded, 0 for an empty ledger
func (l *Ledger) MaxPage() int {
	highest := 0
	for _, e := range l.entries {
		if e.Page > highest {
			highest = e.Page
		}
	}
	return highest
}

// Merge adds fresh entries. They take priority over what the ledger already
// holds, and among themselves the first occurrence of a number wins.
func (l *Ledger) Merge(fresh []Entry) {
	seen := make(map[int]bool, len(fresh))
	for _, e := range fresh {
		if seen[e.Number] {
			continue
		}
		seen[e.Number] = true
		l.entries[e.Number] = e
	}
}

// Entries returns every entry sorted by page then card number
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		return out[i].Number < out[j].Number
	})
	return out
}

// Page returns the entries placed on one page, sorted by card number
func (l *Ledger) Page(page int) []Entry {
	var out []Entry
	for _, e := range l.Entries() {
		if e.Page == page {
			out = append(out, e)
		}
	}
	return out
}

// WriteTo writes the sorted entries, one per line
func (l *Ledger) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, e := range l.Entries() {
		n, err := io.WriteString(w, e.String()+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Save replaces the ledger file with the current entries
func (l *Ledger) Save(path string) error {
	buf := new(bytes.Buffer)
	if _, err := l.WriteTo(buf); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, buf); err != nil {
		return fmt.Errorf("error writing ledger: %w", err)
	}
	return nil
}
