package photo

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/zap"
)

// Supported image extensions (lowercase, with leading dot).
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

var (
	numbered = regexp.MustCompile(`^(\d+)\.`)
	prefix   = regexp.MustCompile(`^\d+\.?`)
)

// Index maps a card number to the absolute path of its photo
type Index struct {
	paths map[int]string
}

// NewIndex builds an index from an explicit mapping
func NewIndex(paths map[int]string) Index {
	ix := Index{paths: make(map[int]string, len(paths))}
	for n, p := range paths {
		ix.paths[n] = p
	}
	return ix
}

// Scan lists dir and indexes every numbered image file. Names are visited in
// natural order so that, when two files share a number, the last one wins
// regardless of how the platform lists the directory. Image files without a
// number are skipped with a warning.
func Scan(dir string, log *zap.Logger) (Index, error) {
	return scan(dir, false, log)
}

// ScanAll indexes numbered image files like Scan, then gives every image file
// without a number the next free number after the highest one, in natural order.
func ScanAll(dir string, log *zap.Logger) (Index, error) {
	return scan(dir, true, log)
}

func scan(dir string, numberRest bool, log *zap.Logger) (Index, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Index{}, fmt.Errorf("error resolving image directory: %w", err)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return Index{}, fmt.Errorf("error reading image directory: %w", err)
	}

	var names, rest []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !imageExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		if numbered.MatchString(name) {
			names = append(names, name)
		} else {
			rest = append(rest, name)
		}
	}
	sort.Sort(natural.StringSlice(names))
	sort.Sort(natural.StringSlice(rest))

	ix := Index{paths: make(map[int]string, len(names)+len(rest))}
	last := 0
	for _, name := range names {
		n, ok := Number(name)
		if !ok {
			continue
		}
		path := filepath.Join(abs, name)
		if prev, dup := ix.paths[n]; dup {
			log.Warn("Several photos share a number, keeping the last one",
				zap.Int("number", n), zap.String("ignored", prev), zap.String("kept", path))
		}
		ix.paths[n] = path
		last = max(last, n)
	}

	for _, name := range rest {
		path := filepath.Join(abs, name)
		if !numberRest {
			log.Warn("Photo has no card number, skipping", zap.String("path", path))
			continue
		}
		last++
		ix.paths[last] = path
		log.Debug("Photo numbered by position", zap.Int("number", last), zap.String("path", path))
	}

	log.Debug("Photos indexed", zap.String("dir", abs), zap.Int("count", len(ix.paths)))
	return ix, nil
}

// Number extracts the leading card number of a file name (e.g., "5. photo.jpg" -> 5)
func Number(name string) (int, bool) {
	m := numbered.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Caption returns what follows the number in a file name, without extension
// (e.g., "12. Jean Dupont.jpg" -> "Jean Dupont")
func Caption(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSpace(prefix.ReplaceAllString(base, ""))
}

// Lookup returns the photo path of a card number
func (ix Index) Lookup(number int) (string, bool) {
	p, ok := ix.paths[number]
	return p, ok
}

// Numbers returns the indexed card numbers in ascending order
func (ix Index) Numbers() []int {
	numbers := make([]int, 0, len(ix.paths))
	for n := range ix.paths {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

// Len returns the number of indexed photos
func (ix Index) Len() int {
	return len(ix.paths)
}
