package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string and returns a Position.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("invalid FEN: need at least 4 fields, got %d", len(parts))
	}

	pos := &Position{
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
	}
	pos.KingSquare[White] = NoSquare
	pos.KingSquare[Black] = NoSquare

	// Parse piece placement (field 0)
	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	// Parse side to move (field 1)
	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, fmt.Errorf("invalid side to move: %s", parts[1])
	}

	// Parse castling rights (field 2)
	if err := parseCastlingRights(pos, parts[2]); err != nil {
		return nil, err
	}

	// Parse en passant square (field 3)
	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid en passant square: %s", parts[3])
		}
		pos.EnPassant = sq
	}

	// Parse half-move clock (field 4, optional)
	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil {
			return nil, fmt.Errorf("invalid half-move clock: %s", parts[4])
		}
		pos.HalfMoveClock = hmc
	}

	// Parse full-move number (field 5, optional)
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil {
			return nil, fmt.Errorf("invalid full-move number: %s", parts[5])
		}
		pos.FullMoveNumber = fmn
	}

	// Update derived state
	pos.updateOccupied()
	pos.findKings()
	if pos.CastleRookFile == ([2][2]int{}) {
		pos.CastleRookFile[White][0] = 7
		pos.CastleRookFile[White][1] = 0
		pos.CastleRookFile[Black][0] = 7
		pos.CastleRookFile[Black][1] = 0
	}
	pos.Hash = pos.ComputeHash()
	pos.PawnKey = pos.ComputePawnKey()
	pos.computeMaterial()

	return pos, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("invalid piece placement: need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("too many squares in rank %d", rank+1)
			}

			if c >= '1' && c <= '8' {
				// Skip empty squares
				file += int(c - '0')
			} else {
				// Place a piece
				piece := PieceFromChar(byte(c))
				if piece == NoPiece {
					return fmt.Errorf("invalid piece character: %c", c)
				}
				sq := NewSquare(file, rank)
				pos.setPiece(piece, sq)
				file++
			}
		}

		if file != 8 {
			return fmt.Errorf("invalid number of squares in rank %d: got %d", rank+1, file)
		}
	}

	return nil
}

// parseCastlingRights parses the castling rights section of a FEN string.
// Accepts both standard KQkq notation and Shredder-FEN notation (a letter
// A-H or a-h naming the castling rook's file directly), the latter marking
// the position as Chess960/FRC.
func parseCastlingRights(pos *Position, castling string) error {
	kingFileWhite := pos.Pieces[White][King].LSB().File()
	kingFileBlack := pos.Pieces[Black][King].LSB().File()

	if castling == "-" {
		pos.CastlingRights = NoCastling
		return nil
	}

	for _, c := range castling {
		switch c {
		case 'K':
			pos.CastlingRights |= WhiteKingSideCastle
			pos.CastleRookFile[White][0] = 7
		case 'Q':
			pos.CastlingRights |= WhiteQueenSideCastle
			pos.CastleRookFile[White][1] = 0
		case 'k':
			pos.CastlingRights |= BlackKingSideCastle
			pos.CastleRookFile[Black][0] = 7
		case 'q':
			pos.CastlingRights |= BlackQueenSideCastle
			pos.CastleRookFile[Black][1] = 0
		case 'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H':
			file := int(c - 'A')
			pos.FRC = true
			if file > kingFileWhite {
				pos.CastlingRights |= WhiteKingSideCastle
				pos.CastleRookFile[White][0] = file
			} else {
				pos.CastlingRights |= WhiteQueenSideCastle
				pos.CastleRookFile[White][1] = file
			}
		case 'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h':
			file := int(c - 'a')
			pos.FRC = true
			if file > kingFileBlack {
				pos.CastlingRights |= BlackKingSideCastle
				pos.CastleRookFile[Black][0] = file
			} else {
				pos.CastlingRights |= BlackQueenSideCastle
				pos.CastleRookFile[Black][1] = file
			}
		default:
			return fmt.Errorf("invalid castling character: %c", c)
		}
	}

	return nil
}

// ToFEN returns the FEN representation of the position.
func (p *Position) ToFEN() string {
	var sb strings.Builder

	// Piece placement
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			piece := p.PieceAt(sq)
			if piece == NoPiece {
				empty++
			} else {
				if empty > 0 {
					sb.WriteString(strconv.Itoa(empty))
					empty = 0
				}
				sb.WriteString(piece.String())
			}
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	// Side to move
	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	// Castling rights
	sb.WriteByte(' ')
	if p.FRC {
		sb.WriteString(p.shredderCastlingString())
	} else {
		sb.WriteString(p.CastlingRights.String())
	}

	// En passant
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())

	// Half-move clock and full-move number
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))

	return sb.String()
}

// shredderCastlingString renders castling rights using Shredder-FEN rook-
// file letters (upper-case for White, lower-case for Black) instead of
// KQkq, as required for Chess960 positions where the rook's home file
// isn't implied by the side of the board.
func (p *Position) shredderCastlingString() string {
	if p.CastlingRights == NoCastling {
		return "-"
	}
	var sb strings.Builder
	if p.CastlingRights&WhiteKingSideCastle != 0 {
		sb.WriteByte('A' + byte(p.CastleRookFile[White][0]))
	}
	if p.CastlingRights&WhiteQueenSideCastle != 0 {
		sb.WriteByte('A' + byte(p.CastleRookFile[White][1]))
	}
	if p.CastlingRights&BlackKingSideCastle != 0 {
		sb.WriteByte('a' + byte(p.CastleRookFile[Black][0]))
	}
	if p.CastlingRights&BlackQueenSideCastle != 0 {
		sb.WriteByte('a' + byte(p.CastleRookFile[Black][1]))
	}
	return sb.String()
}

// ComputeHash computes the Zobrist hash for the position from scratch.
func (p *Position) ComputeHash() uint64 {
	var hash uint64

	// Hash pieces
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				hash ^= zobristPiece[c][pt][sq]
			}
		}
	}

	// Hash side to move
	if p.SideToMove == Black {
		hash ^= zobristSideToMove
	}

	// Hash castling rights
	hash ^= zobristCastling[p.CastlingRights]

	// Hash en passant
	if p.EnPassant != NoSquare {
		hash ^= zobristEnPassant[p.EnPassant.File()]
	}

	return hash
}

// ComputePawnKey computes the pawn hash key from scratch.
// Only includes pawn positions for pawn structure caching.
func (p *Position) ComputePawnKey() uint64 {
	var key uint64

	for c := White; c <= Black; c++ {
		bb := p.Pieces[c][Pawn]
		for bb != 0 {
			sq := bb.PopLSB()
			key ^= zobristPiece[c][Pawn][sq]
		}
	}

	return key
}
