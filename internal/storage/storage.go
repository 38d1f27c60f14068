// Package storage persists labeled training positions and selfplay game
// records for offline network training, keyed by Zobrist hash, on the
// same badger-backed database the engine already uses for local state.
package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/chessplay/internal/board"
)

// Outcome is the game result from White's perspective.
type Outcome int8

const (
	OutcomeLoss Outcome = 0
	OutcomeDraw Outcome = 1
	OutcomeWin  Outcome = 2
)

// emptyNibble marks a vacant square in a SelfplayPosition's full-board
// encoding. Real pieces only ever produce (color<<3)|type, i.e. 0-5 or
// 8-13, so 15 is never ambiguous with an occupied square.
const emptyNibble = 0x0F

// LabeledPositionSize is the fixed record length for LabeledPosition.
const LabeledPositionSize = 28

// SelfplayPositionSize is the fixed record length for SelfplayPosition.
const SelfplayPositionSize = 38

// LabeledPosition is one scored, outcome-tagged training example: a
// position's occupied squares plus the piece on each, in bitboard-LSB
// order over Occupancy.
type LabeledPosition struct {
	Score       int16
	Outcome     Outcome
	BlackToMove bool
	Occupancy   uint64
	Pieces      [16]byte // nibble-packed, lower nibble first
}

// NewLabeledPosition builds a record from a live position.
func NewLabeledPosition(pos *board.Position, score int, outcome Outcome) LabeledPosition {
	lp := LabeledPosition{
		Score:       int16(score),
		Outcome:     outcome,
		BlackToMove: pos.SideToMove == board.Black,
		Occupancy:   uint64(pos.AllOccupied),
	}
	occ := pos.AllOccupied
	i := 0
	for occ != 0 {
		sq := occ.PopLSB()
		nib := pieceNibble(pos.PieceAt(sq))
		if i%2 == 0 {
			lp.Pieces[i/2] = nib
		} else {
			lp.Pieces[i/2] |= nib << 4
		}
		i++
	}
	return lp
}

func pieceNibble(p board.Piece) byte {
	if p == board.NoPiece {
		return emptyNibble
	}
	return byte(p.Color())<<3 | byte(p.Type())
}

// Marshal encodes the record to its 28-byte wire form.
func (lp *LabeledPosition) Marshal() []byte {
	buf := make([]byte, LabeledPositionSize)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(lp.Score))
	buf[2] = byte(lp.Outcome)
	if lp.BlackToMove {
		buf[3] = 1
	}
	binary.LittleEndian.PutUint64(buf[4:12], lp.Occupancy)
	copy(buf[12:28], lp.Pieces[:])
	return buf
}

// UnmarshalLabeledPosition decodes a 28-byte record.
func UnmarshalLabeledPosition(buf []byte) (LabeledPosition, error) {
	if len(buf) != LabeledPositionSize {
		return LabeledPosition{}, fmt.Errorf("labeled position record must be %d bytes, got %d", LabeledPositionSize, len(buf))
	}
	var lp LabeledPosition
	lp.Score = int16(binary.LittleEndian.Uint16(buf[0:2]))
	lp.Outcome = Outcome(int8(buf[2]))
	lp.BlackToMove = buf[3]&1 != 0
	lp.Occupancy = binary.LittleEndian.Uint64(buf[4:12])
	copy(lp.Pieces[:], buf[12:28])
	return lp, nil
}

// SelfplayPosition is a selfplay game snapshot: a full 64-square board
// encoding (unlike LabeledPosition, empty squares are recorded explicitly
// rather than implied by an occupancy bitmap) plus a search label and
// outcome pair used as separate training targets.
type SelfplayPosition struct {
	Label   int16
	Outcome int16
	Flags   int16
	Pieces  [32]byte // nibble-packed, lower nibble first, squares a1..h8
}

// NewSelfplayPosition builds a record from a live position.
func NewSelfplayPosition(pos *board.Position, label int, outcome int, blackToMove bool) SelfplayPosition {
	sp := SelfplayPosition{
		Label:   int16(label),
		Outcome: int16(outcome),
	}
	if blackToMove {
		sp.Flags = 1
	}
	for sq := board.Square(0); sq < 64; sq++ {
		nib := pieceNibble(pos.PieceAt(sq))
		if sq%2 == 0 {
			sp.Pieces[sq/2] = nib
		} else {
			sp.Pieces[sq/2] |= nib << 4
		}
	}
	return sp
}

// Marshal encodes the record to its 38-byte wire form.
func (sp *SelfplayPosition) Marshal() []byte {
	buf := make([]byte, SelfplayPositionSize)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(sp.Label))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(sp.Outcome))
	binary.LittleEndian.PutUint16(buf[4:6], uint16(sp.Flags))
	copy(buf[6:38], sp.Pieces[:])
	return buf
}

// UnmarshalSelfplayPosition decodes a 38-byte record.
func UnmarshalSelfplayPosition(buf []byte) (SelfplayPosition, error) {
	if len(buf) != SelfplayPositionSize {
		return SelfplayPosition{}, fmt.Errorf("selfplay position record must be %d bytes, got %d", SelfplayPositionSize, len(buf))
	}
	var sp SelfplayPosition
	sp.Label = int16(binary.LittleEndian.Uint16(buf[0:2]))
	sp.Outcome = int16(binary.LittleEndian.Uint16(buf[2:4]))
	sp.Flags = int16(binary.LittleEndian.Uint16(buf[4:6]))
	copy(sp.Pieces[:], buf[6:38])
	return sp, nil
}

// Storage wraps BadgerDB for persistent training-position storage, keyed
// by Zobrist hash under a record-kind prefix so both formats can share one
// database.
type Storage struct {
	db *badger.DB
}

const (
	prefixLabeled  = "lp:"
	prefixSelfplay = "sp:"
)

// NewStorage opens (creating if absent) the training-position database.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func labeledKey(hash uint64) []byte {
	key := make([]byte, len(prefixLabeled)+8)
	copy(key, prefixLabeled)
	binary.BigEndian.PutUint64(key[len(prefixLabeled):], hash)
	return key
}

func selfplayKey(hash uint64) []byte {
	key := make([]byte, len(prefixSelfplay)+8)
	copy(key, prefixSelfplay)
	binary.BigEndian.PutUint64(key[len(prefixSelfplay):], hash)
	return key
}

// PutLabeled stores a labeled training position under its Zobrist hash,
// overwriting any existing record for that hash.
func (s *Storage) PutLabeled(hash uint64, lp LabeledPosition) error {
	data := lp.Marshal()
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(labeledKey(hash), data)
	})
}

// GetLabeled retrieves a labeled training position by Zobrist hash.
func (s *Storage) GetLabeled(hash uint64) (LabeledPosition, bool, error) {
	var lp LabeledPosition
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(labeledKey(hash))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			decoded, err := UnmarshalLabeledPosition(val)
			if err != nil {
				return err
			}
			lp = decoded
			found = true
			return nil
		})
	})
	return lp, found, err
}

// PutSelfplay stores a selfplay position snapshot under its Zobrist hash.
func (s *Storage) PutSelfplay(hash uint64, sp SelfplayPosition) error {
	data := sp.Marshal()
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(selfplayKey(hash), data)
	})
}

// GetSelfplay retrieves a selfplay position snapshot by Zobrist hash.
func (s *Storage) GetSelfplay(hash uint64) (SelfplayPosition, bool, error) {
	var sp SelfplayPosition
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(selfplayKey(hash))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			decoded, err := UnmarshalSelfplayPosition(val)
			if err != nil {
				return err
			}
			sp = decoded
			found = true
			return nil
		})
	})
	return sp, found, err
}

// EachLabeled iterates every stored labeled position in key order, calling
// fn for each. Iteration stops early if fn returns false.
func (s *Storage) EachLabeled(fn func(hash uint64, lp LabeledPosition) bool) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixLabeled)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			hash := binary.BigEndian.Uint64(item.Key()[len(prefixLabeled):])
			cont := true
			err := item.Value(func(val []byte) error {
				lp, err := UnmarshalLabeledPosition(val)
				if err != nil {
					return err
				}
				cont = fn(hash, lp)
				return nil
			})
			if err != nil {
				return err
			}
			if !cont {
				break
			}
		}
		return nil
	})
}
