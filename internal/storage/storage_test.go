package storage

import (
	"os"
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

func TestLabeledPositionRoundTrip(t *testing.T) {
	pos := board.NewPosition()
	lp := NewLabeledPosition(pos, 37, OutcomeWin)

	buf := lp.Marshal()
	if len(buf) != LabeledPositionSize {
		t.Fatalf("expected %d bytes, got %d", LabeledPositionSize, len(buf))
	}

	decoded, err := UnmarshalLabeledPosition(buf)
	if err != nil {
		t.Fatalf("UnmarshalLabeledPosition: %v", err)
	}
	if decoded.Score != 37 {
		t.Errorf("Score: expected 37, got %d", decoded.Score)
	}
	if decoded.Outcome != OutcomeWin {
		t.Errorf("Outcome: expected %v, got %v", OutcomeWin, decoded.Outcome)
	}
	if decoded.BlackToMove {
		t.Errorf("BlackToMove: expected false for the start position")
	}
	if decoded.Occupancy != uint64(pos.AllOccupied) {
		t.Errorf("Occupancy mismatch: expected %x, got %x", uint64(pos.AllOccupied), decoded.Occupancy)
	}
	if decoded.Pieces != lp.Pieces {
		t.Errorf("Pieces mismatch: expected %v, got %v", lp.Pieces, decoded.Pieces)
	}
}

func TestUnmarshalLabeledPositionRejectsWrongSize(t *testing.T) {
	if _, err := UnmarshalLabeledPosition(make([]byte, 10)); err == nil {
		t.Error("expected an error for a short buffer")
	}
}

func TestSelfplayPositionRoundTrip(t *testing.T) {
	pos := board.NewPosition()
	sp := NewSelfplayPosition(pos, 12, 1, true)

	buf := sp.Marshal()
	if len(buf) != SelfplayPositionSize {
		t.Fatalf("expected %d bytes, got %d", SelfplayPositionSize, len(buf))
	}

	decoded, err := UnmarshalSelfplayPosition(buf)
	if err != nil {
		t.Fatalf("UnmarshalSelfplayPosition: %v", err)
	}
	if decoded.Label != 12 {
		t.Errorf("Label: expected 12, got %d", decoded.Label)
	}
	if decoded.Outcome != 1 {
		t.Errorf("Outcome: expected 1, got %d", decoded.Outcome)
	}
	if decoded.Flags&1 == 0 {
		t.Errorf("Flags: expected black-to-move bit set")
	}
	if decoded.Pieces != sp.Pieces {
		t.Errorf("Pieces mismatch: expected %v, got %v", sp.Pieces, decoded.Pieces)
	}
}

func TestSelfplayPositionEmptySquaresUseReservedNibble(t *testing.T) {
	pos := board.NewPosition()
	sp := NewSelfplayPosition(pos, 0, 0, false)

	// e4 (square 28) is empty on the start position.
	nib := sp.Pieces[28/2]
	if 28%2 != 0 {
		t.Fatal("test assumption broken: square 28 should occupy the low nibble")
	}
	if nib&0x0F != emptyNibble {
		t.Errorf("expected empty nibble at e4, got %x", nib&0x0F)
	}
}

func TestStoragePutGetLabeled(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "chessplay-storage-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(tmpDir)
	t.Setenv("XDG_DATA_HOME", tmpDir)

	s, err := NewStorage()
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	defer s.Close()

	pos := board.NewPosition()
	lp := NewLabeledPosition(pos, -15, OutcomeDraw)

	if err := s.PutLabeled(pos.Hash, lp); err != nil {
		t.Fatalf("PutLabeled: %v", err)
	}

	got, found, err := s.GetLabeled(pos.Hash)
	if err != nil {
		t.Fatalf("GetLabeled: %v", err)
	}
	if !found {
		t.Fatal("expected record to be found")
	}
	if got.Score != -15 || got.Outcome != OutcomeDraw {
		t.Errorf("unexpected record: %+v", got)
	}

	if _, found, err := s.GetLabeled(pos.Hash ^ 0xFF); err != nil {
		t.Fatalf("GetLabeled (miss): %v", err)
	} else if found {
		t.Error("expected no record for an unrelated hash")
	}
}

func TestStorageEachLabeled(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "chessplay-storage-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(tmpDir)
	t.Setenv("XDG_DATA_HOME", tmpDir)

	s, err := NewStorage()
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	defer s.Close()

	pos := board.NewPosition()
	for i := 0; i < 3; i++ {
		hash := pos.Hash + uint64(i)
		lp := NewLabeledPosition(pos, i*10, OutcomeWin)
		if err := s.PutLabeled(hash, lp); err != nil {
			t.Fatalf("PutLabeled: %v", err)
		}
	}

	count := 0
	if err := s.EachLabeled(func(hash uint64, lp LabeledPosition) bool {
		count++
		return true
	}); err != nil {
		t.Fatalf("EachLabeled: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 records, got %d", count)
	}
}

func TestDataPaths(t *testing.T) {
	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}

	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}
}
