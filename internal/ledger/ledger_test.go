package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestParse(t *testing.T) {
	input := strings.Join([]string{
		"5 || 1 || Manger Un Bonbon",
		"",
		"abc || 1 || Pas Un Numero",
		"7 || deux || Page Invalide",
		"3 || 2 || Chanter",
		"5 || 9 || Doublon",
		"12||1||Sans Espaces",
	}, "\n")

	core, logs := observer.New(zapcore.WarnLevel)
	l, err := Parse(strings.NewReader(input), zap.New(core))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := []Entry{
		{Number: 5, Page: 1, Title: "Manger Un Bonbon"},
		{Number: 12, Page: 1, Title: "Sans Espaces"},
		{Number: 3, Page: 2, Title: "Chanter"},
	}
	if got := l.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("Entries() = %+v, want %+v", got, want)
	}
	if got := logs.FilterMessage("Dropping ledger line").Len(); got != 2 {
		t.Errorf("logged %d dropped lines, want 2", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	l, err := Load(filepath.Join(t.TempDir(), "already.txt"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l.Len() != 0 || l.MaxPage() != 0 {
		t.Errorf("missing ledger should be empty, got %d entries", l.Len())
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "already.txt")

	l := New()
	l.Merge([]Entry{
		{Number: 40, Page: 3, Title: "Danser"},
		{Number: 2, Page: 3, Title: "Chanter"},
		{Number: 17, Page: 1, Title: "Sauter"},
		{Number: 1, Page: 2, Title: "Courir"},
	})
	if err := l.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	wantText := "17 || 1 || Sauter\n1 || 2 || Courir\n2 || 3 || Chanter\n40 || 3 || Danser\n"
	if string(data) != wantText {
		t.Errorf("file content:\n%s\nwant:\n%s", data, wantText)
	}

	reloaded, err := Load(path, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(reloaded.Entries(), l.Entries()) {
		t.Errorf("round trip mismatch: %+v vs %+v", reloaded.Entries(), l.Entries())
	}
}

func TestMergeFreshEntriesWin(t *testing.T) {
	l := New()
	l.Merge([]Entry{{Number: 5, Page: 1, Title: "Ancien"}, {Number: 6, Page: 1, Title: "Garde"}})

	l.Merge([]Entry{
		{Number: 5, Page: 2, Title: "Nouveau"},
		{Number: 5, Page: 3, Title: "Ignore"},
		{Number: 9, Page: 2, Title: "Ajoute"},
	})

	want := []Entry{
		{Number: 6, Page: 1, Title: "Garde"},
		{Number: 5, Page: 2, Title: "Nouveau"},
		{Number: 9, Page: 2, Title: "Ajoute"},
	}
	if got := l.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("Entries() = %+v, want %+v", got, want)
	}
	if l.MaxPage() != 2 {
		t.Errorf("MaxPage() = %d, want 2", l.MaxPage())
	}
	if !l.Contains(9) || l.Contains(7) {
		t.Error("Contains is wrong")
	}
	if got := l.Page(2); len(got) != 2 || got[0].Number != 5 {
		t.Errorf("Page(2) = %+v", got)
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		want    Entry
		wantErr bool
	}{
		{"5 || 1 || Titre", Entry{5, 1, "Titre"}, false},
		{" 8 ||  4 ||  Avec  Espaces ", Entry{8, 4, "Avec  Espaces"}, false},
		{"9", Entry{9, 0, ""}, false},
		{"x || 1 || Titre", Entry{}, true},
		{"5 || y || Titre", Entry{}, true},
	}
	for _, tt := range tests {
		got, err := ParseLine(tt.line)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLine(%q) error = %v", tt.line, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLine(%q) = %+v, want %+v", tt.line, got, tt.want)
		}
	}
}

func TestLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "already.txt")

	unlock, err := Lock(path)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	if _, err := Lock(path); !errors.Is(err, ErrLocked) {
		t.Errorf("second Lock() error = %v, want ErrLocked", err)
	}

	if err := unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}

	unlock, err = Lock(path)
	if err != nil {
		t.Fatalf("Lock after unlock: %v", err)
	}
	_ = unlock()
}
