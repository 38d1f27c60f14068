package board

import "fmt"

// GenerateLegalMoves generates all legal moves for the position.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generateAllMoves(ml)
	return p.filterLegalMoves(ml)
}

// GeneratePseudoLegalMoves generates all pseudo-legal moves (may leave king in check).
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generateAllMoves(ml)
	return ml
}

// GenerateCaptures generates all capture moves.
func (p *Position) GenerateCaptures() *MoveList {
	ml := NewMoveList()
	p.generateCaptures(ml)
	return p.filterLegalMoves(ml)
}

// GenerateQuietChecks generates legal non-capture, non-promotion, non-castling moves that
// give check. Used by quiescence search to extend the horizon with forcing
// quiet moves that a captures-only search would otherwise miss.
func (p *Position) GenerateQuietChecks() *MoveList {
	all := NewMoveList()
	p.generateAllMoves(all)

	result := NewMoveList()
	for i := 0; i < all.Len(); i++ {
		m := all.Get(i)
		if m.IsCapture(p) || m.IsPromotion() || m.IsCastling() {
			continue
		}
		if !p.IsLegal(m) {
			continue
		}
		if p.GivesCheck(m) {
			result.Add(m)
		}
	}
	return result
}

// GivesCheck reports whether playing m would leave the opponent in check.
// It makes and immediately unmakes the move, so it is only cheap enough for
// the small quiet-check candidate lists quiescence search works with.
func (p *Position) GivesCheck(m Move) bool {
	undo := p.MakeMove(m)
	if !undo.Valid {
		return false
	}
	gives := p.InCheck()
	p.UnmakeMove(m, undo)
	return gives
}

// generateAllMoves generates all pseudo-legal moves.
func (p *Position) generateAllMoves(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	occupied := p.AllOccupied
	enemies := p.Occupied[them]

	// Pawn moves
	p.generatePawnMoves(ml, us, enemies, occupied)

	// Knight moves
	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		attacks := KnightAttacks(from) & ^p.Occupied[us]
		for attacks != 0 {
			to := attacks.PopLSB()
			ml.Add(NewMove(from, to))
		}
	}

	// Bishop moves
	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		attacks := BishopAttacks(from, occupied) & ^p.Occupied[us]
		for attacks != 0 {
			to := attacks.PopLSB()
			ml.Add(NewMove(from, to))
		}
	}

	// Rook moves
	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		attacks := RookAttacks(from, occupied) & ^p.Occupied[us]
		for attacks != 0 {
			to := attacks.PopLSB()
			ml.Add(NewMove(from, to))
		}
	}

	// Queen moves
	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		attacks := QueenAttacks(from, occupied) & ^p.Occupied[us]
		for attacks != 0 {
			to := attacks.PopLSB()
			ml.Add(NewMove(from, to))
		}
	}

	// King moves
	p.generateKingMoves(ml, us)

	// Castling
	p.generateCastlingMoves(ml, us)
}

// generatePawnMoves generates all pawn moves.
func (p *Position) generatePawnMoves(ml *MoveList, us Color, enemies, occupied Bitboard) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied

	var push1, push2, attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	// Single pushes (non-promotion)
	nonPromo := push1 & ^promotionRank
	for nonPromo != 0 {
		to := nonPromo.PopLSB()
		from := Square(int(to) - pushDir)
		ml.Add(NewMove(from, to))
	}

	// Double pushes
	for push2 != 0 {
		to := push2.PopLSB()
		from := Square(int(to) - 2*pushDir)
		ml.Add(NewMove(from, to))
	}

	// Captures (non-promotion)
	nonPromoL := attackL & ^promotionRank
	for nonPromoL != 0 {
		to := nonPromoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		ml.Add(NewMove(from, to))
	}

	nonPromoR := attackR & ^promotionRank
	for nonPromoR != 0 {
		to := nonPromoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		ml.Add(NewMove(from, to))
	}

	// Promotions
	promoPush := push1 & promotionRank
	for promoPush != 0 {
		to := promoPush.PopLSB()
		from := Square(int(to) - pushDir)
		addPromotions(ml, from, to)
	}

	promoL := attackL & promotionRank
	for promoL != 0 {
		to := promoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		addPromotions(ml, from, to)
	}

	promoR := attackR & promotionRank
	for promoR != 0 {
		to := promoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		addPromotions(ml, from, to)
	}

	// En passant
	if p.EnPassant != NoSquare {
		epBB := SquareBB(p.EnPassant)
		var epAttackers Bitboard
		if us == White {
			epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
		} else {
			epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
		}
		for epAttackers != 0 {
			from := epAttackers.PopLSB()
			ml.Add(NewEnPassant(from, p.EnPassant))
		}
	}
}

// addPromotions adds all four promotion moves.
func addPromotions(ml *MoveList, from, to Square) {
	ml.Add(NewPromotion(from, to, Queen))
	ml.Add(NewPromotion(from, to, Rook))
	ml.Add(NewPromotion(from, to, Bishop))
	ml.Add(NewPromotion(from, to, Knight))
}

// generateKingMoves generates king moves (non-castling).
func (p *Position) generateKingMoves(ml *MoveList, us Color) {
	from := p.KingSquare[us]
	attacks := KingAttacks(from) & ^p.Occupied[us]

	for attacks != 0 {
		to := attacks.PopLSB()
		ml.Add(NewMove(from, to))
	}
}

// generateCastlingMoves generates castling moves. Under FRC (Chess960)
// the destination squares and the empty/attacked-square checks are
// derived from CastleRookFile rather than assumed to be the g/c files,
// since the rook may start anywhere on the back rank and the king may
// already stand on its destination square (king-takes-rook notation).
func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	them := us.Other()
	rights := [2]CastlingRights{WhiteKingSideCastle, WhiteQueenSideCastle}
	if us == Black {
		rights = [2]CastlingRights{BlackKingSideCastle, BlackQueenSideCastle}
	}

	kingFrom := p.KingSquare[us]
	rank := kingFrom.Rank()

	for side := 0; side < 2; side++ {
		if p.CastlingRights&rights[side] == 0 {
			continue
		}

		rookFile := p.CastleRookFile[us][side]
		rookFrom := NewSquare(rookFile, rank)

		var kingTo, rookTo Square
		if side == 0 { // king-side
			kingTo = NewSquare(6, rank)
			rookTo = NewSquare(5, rank)
		} else { // queen-side
			kingTo = NewSquare(2, rank)
			rookTo = NewSquare(3, rank)
		}

		if !p.castlingPathClear(kingFrom, kingTo, rookFrom, rookTo) {
			continue
		}
		if p.castlingPathAttacked(kingFrom, kingTo, them) {
			continue
		}

		ml.Add(NewCastling(kingFrom, kingTo))
	}
}

// castlingPathClear verifies every square the king or rook travels over
// or lands on is empty, excluding the king's own and rook's own origin
// squares (which are trivially "occupied" by the pieces castling).
func (p *Position) castlingPathClear(kingFrom, kingTo, rookFrom, rookTo Square) bool {
	occupied := p.AllOccupied &^ SquareBB(kingFrom) &^ SquareBB(rookFrom)

	path := Between(kingFrom, kingTo) | SquareBB(kingTo)
	path |= Between(rookFrom, rookTo) | SquareBB(rookTo)
	path &^= SquareBB(kingFrom) | SquareBB(rookFrom)

	return occupied&path == 0
}

// castlingPathAttacked returns true if any square the king passes through
// (including its start and end squares) is attacked by the opponent.
func (p *Position) castlingPathAttacked(kingFrom, kingTo Square, by Color) bool {
	lo, hi := kingFrom, kingTo
	if lo > hi {
		lo, hi = hi, lo
	}
	for sq := lo; sq <= hi; sq++ {
		if p.IsSquareAttacked(sq, by) {
			return true
		}
	}
	return false
}

// generateCaptures generates capture moves only.
func (p *Position) generateCaptures(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	enemies := p.Occupied[them]
	occupied := p.AllOccupied

	// Pawn captures
	pawns := p.Pieces[us][Pawn]
	var attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	// Non-promotion captures
	nonPromoL := attackL & ^promotionRank
	for nonPromoL != 0 {
		to := nonPromoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		ml.Add(NewMove(from, to))
	}

	nonPromoR := attackR & ^promotionRank
	for nonPromoR != 0 {
		to := nonPromoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		ml.Add(NewMove(from, to))
	}

	// Promotion captures
	promoL := attackL & promotionRank
	for promoL != 0 {
		to := promoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		addPromotions(ml, from, to)
	}

	promoR := attackR & promotionRank
	for promoR != 0 {
		to := promoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		addPromotions(ml, from, to)
	}

	// Pawn push promotions (technically not captures but important for quiescence)
	empty := ^occupied
	var push1 Bitboard
	if us == White {
		push1 = pawns.North() & empty & Rank8
	} else {
		push1 = pawns.South() & empty & Rank1
	}
	for push1 != 0 {
		to := push1.PopLSB()
		from := Square(int(to) - pushDir)
		addPromotions(ml, from, to)
	}

	// En passant
	if p.EnPassant != NoSquare {
		epBB := SquareBB(p.EnPassant)
		var epAttackers Bitboard
		if us == White {
			epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
		} else {
			epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
		}
		for epAttackers != 0 {
			from := epAttackers.PopLSB()
			ml.Add(NewEnPassant(from, p.EnPassant))
		}
	}

	// Knight captures
	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		attacks := KnightAttacks(from) & enemies
		for attacks != 0 {
			to := attacks.PopLSB()
			ml.Add(NewMove(from, to))
		}
	}

	// Bishop captures
	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		attacks := BishopAttacks(from, occupied) & enemies
		for attacks != 0 {
			to := attacks.PopLSB()
			ml.Add(NewMove(from, to))
		}
	}

	// Rook captures
	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		attacks := RookAttacks(from, occupied) & enemies
		for attacks != 0 {
			to := attacks.PopLSB()
			ml.Add(NewMove(from, to))
		}
	}

	// Queen captures
	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		attacks := QueenAttacks(from, occupied) & enemies
		for attacks != 0 {
			to := attacks.PopLSB()
			ml.Add(NewMove(from, to))
		}
	}

	// King captures
	from := p.KingSquare[us]
	attacks := KingAttacks(from) & enemies
	for attacks != 0 {
		to := attacks.PopLSB()
		ml.Add(NewMove(from, to))
	}
}

// filterLegalMoves filters out illegal moves (those that leave king in check).
func (p *Position) filterLegalMoves(ml *MoveList) *MoveList {
	result := NewMoveList()

	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if p.IsLegal(m) {
			result.Add(m)
		}
	}

	return result
}

// IsLegal returns true if the move is legal (doesn't leave king in check).
// Uses make/unmake for guaranteed correctness.
func (p *Position) IsLegal(m Move) bool {
	us := p.SideToMove
	them := us.Other()
	from := m.From()
	ksq := p.KingSquare[us]

	// For king moves, check if destination is attacked
	if from == ksq {
		if m.IsCastling() {
			return true // Already validated in generation
		}
		// King moves: temporarily remove king and check destination
		occ := p.AllOccupied &^ SquareBB(from)
		return p.AttackersByColor(m.To(), them, occ) == 0
	}

	// For all other moves: actually make the move and check
	undo := p.MakeMove(m)
	if !undo.Valid {
		return false
	}

	// Check if OUR king is now attacked
	// After MakeMove, SideToMove is flipped, so "them" is now "us"
	attacked := p.IsSquareAttacked(ksq, them)

	// DEBUG: Log rejected moves
	if attacked {
		fmt.Printf("DEBUG: Move %v rejected - king on %v attacked by %v after move\n",
			m, ksq, them)
		// Show what's attacking the king
		attackers := p.AttackersByColor(ksq, them, p.AllOccupied)
		fmt.Printf("DEBUG: Attackers bitboard:\n%s\n", attackers.String())
	}

	p.UnmakeMove(m, undo)

	return !attacked
}

// MakeMove applies a move to the position and returns undo information.
func (p *Position) MakeMove(m Move) UndoInfo {
	undo := UndoInfo{
		CapturedPiece:  NoPiece,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		Hash:           p.Hash,
		PawnKey:        p.PawnKey,
		Checkers:       p.Checkers,
		Valid:          false,
	}

	us := p.SideToMove
	them := us.Other()
	from := m.From()
	to := m.To()
	piece := p.PieceAt(from)

	// Safety check - if no piece at from square, return without modifying position
	if piece == NoPiece {
		return undo
	}

	// Mark as valid since we have a piece and will apply the move
	undo.Valid = true
	pt := piece.Type()

	// Update hash for side to move
	p.Hash ^= zobristSideToMove

	// Update hash for castling rights (will be updated again below if they change)
	p.Hash ^= zobristCastling[p.CastlingRights]

	// Update hash for en passant
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}

	// Clear en passant
	p.EnPassant = NoSquare

	// Handle captures
	if m.IsEnPassant() {
		// En passant capture
		var capturedSq Square
		if us == White {
			capturedSq = to - 8
		} else {
			capturedSq = to + 8
		}
		undo.CapturedPiece = p.removePiece(capturedSq)
		p.Hash ^= zobristPiece[them][Pawn][capturedSq]
	} else if captured := p.PieceAt(to); captured != NoPiece {
		// Normal capture
		undo.CapturedPiece = captured
		p.removePiece(to)
		p.Hash ^= zobristPiece[them][captured.Type()][to]
	}

	if undo.CapturedPiece != NoPiece {
		capType := undo.CapturedPiece.Type()
		sign := int32(1)
		if them == Black {
			sign = -1
		}
		p.DeltaMat[PhaseOpening] -= sign * PhaseValue[PhaseOpening][capType]
		p.DeltaMat[PhaseEndgame] -= sign * PhaseValue[PhaseEndgame][capType]
		if capType != Pawn {
			p.NonPawnMat[them] -= int32(PieceValue[capType])
		}
	}

	// Move the piece. Castling is handled separately below: under FRC the
	// king's destination square can coincide with the rook's origin
	// square, so the generic move-by-lookup helper (which re-derives the
	// piece from the board at the "from" square) cannot be reused once
	// the king has already landed there.
	if !m.IsCastling() {
		p.movePiece(from, to)
		p.Hash ^= zobristPiece[us][pt][from]
		p.Hash ^= zobristPiece[us][pt][to]
	}

	// Handle promotion
	if m.IsPromotion() {
		promoPt := m.Promotion()
		// Remove pawn, add promoted piece
		p.Pieces[us][Pawn] &^= SquareBB(to)
		p.Pieces[us][promoPt] |= SquareBB(to)
		p.Hash ^= zobristPiece[us][Pawn][to]
		p.Hash ^= zobristPiece[us][promoPt][to]

		sign := int32(1)
		if us == Black {
			sign = -1
		}
		p.DeltaMat[PhaseOpening] += sign * (PhaseValue[PhaseOpening][promoPt] - PhaseValue[PhaseOpening][Pawn])
		p.DeltaMat[PhaseEndgame] += sign * (PhaseValue[PhaseEndgame][promoPt] - PhaseValue[PhaseEndgame][Pawn])
		p.NonPawnMat[us] += int32(PieceValue[promoPt])
	}

	// Handle castling: clear both the king and rook from their origin
	// squares first, then place them at their destinations, so that an
	// FRC rook-on-the-king's-destination-file never gets mistaken for
	// the king mid-update.
	if m.IsCastling() {
		side := 0
		if to < from {
			side = 1
		}
		rookFrom := NewSquare(p.CastleRookFile[us][side], from.Rank())

		var kingTo, rookDest Square
		if side == 0 {
			kingTo = NewSquare(6, from.Rank())
			rookDest = NewSquare(5, from.Rank())
		} else {
			kingTo = NewSquare(2, from.Rank())
			rookDest = NewSquare(3, from.Rank())
		}

		p.Pieces[us][King] &^= SquareBB(from)
		p.Pieces[us][Rook] &^= SquareBB(rookFrom)

		p.Pieces[us][King] |= SquareBB(kingTo)
		p.Pieces[us][Rook] |= SquareBB(rookDest)

		p.KingSquare[us] = kingTo
		p.updateOccupied()

		p.Hash ^= zobristPiece[us][King][from]
		p.Hash ^= zobristPiece[us][King][kingTo]
		p.Hash ^= zobristPiece[us][Rook][rookFrom]
		p.Hash ^= zobristPiece[us][Rook][rookDest]
	}

	// Update castling rights
	if pt == King {
		if us == White {
			p.CastlingRights &^= WhiteKingSideCastle | WhiteQueenSideCastle
		} else {
			p.CastlingRights &^= BlackKingSideCastle | BlackQueenSideCastle
		}
	}

	// Rook moves or captures affect castling. The rook's home square is
	// derived from CastleRookFile rather than assumed to be a1/h1/a8/h8,
	// since FRC positions may start their rooks on any file.
	whiteKS := NewSquare(p.CastleRookFile[White][0], 0)
	whiteQS := NewSquare(p.CastleRookFile[White][1], 0)
	blackKS := NewSquare(p.CastleRookFile[Black][0], 7)
	blackQS := NewSquare(p.CastleRookFile[Black][1], 7)

	if from == whiteQS || to == whiteQS {
		p.CastlingRights &^= WhiteQueenSideCastle
	}
	if from == whiteKS || to == whiteKS {
		p.CastlingRights &^= WhiteKingSideCastle
	}
	if from == blackQS || to == blackQS {
		p.CastlingRights &^= BlackQueenSideCastle
	}
	if from == blackKS || to == blackKS {
		p.CastlingRights &^= BlackKingSideCastle
	}

	// Update hash for new castling rights
	p.Hash ^= zobristCastling[p.CastlingRights]

	// Set en passant square for double pawn push
	if pt == Pawn && abs(int(to)-int(from)) == 16 {
		epSquare := Square((int(from) + int(to)) / 2)
		p.EnPassant = epSquare
		p.Hash ^= zobristEnPassant[epSquare.File()]
	}

	// Update half-move clock
	if pt == Pawn || undo.CapturedPiece != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}

	// Update full-move number
	if us == Black {
		p.FullMoveNumber++
	}

	// Pawn-only hash changes only when a pawn moves, promotes or is captured
	if pt == Pawn || (undo.CapturedPiece != NoPiece && undo.CapturedPiece.Type() == Pawn) {
		p.PawnKey = p.ComputePawnKey()
	}

	// Switch side to move
	p.SideToMove = them

	// Update checkers
	p.UpdateCheckers()

	return undo
}

// UnmakeMove undoes a move using the stored undo information.
func (p *Position) UnmakeMove(m Move, undo UndoInfo) {
	them := p.SideToMove
	us := them.Other()
	from := m.From()
	to := m.To()

	// Restore state
	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
	p.PawnKey = undo.PawnKey
	p.Checkers = undo.Checkers
	p.SideToMove = us

	if us == Black {
		p.FullMoveNumber--
	}

	// Handle promotion first (before moving piece back)
	if m.IsPromotion() {
		promoPt := m.Promotion()
		// Remove promoted piece, restore pawn
		p.Pieces[us][promoPt] &^= SquareBB(to)
		p.Pieces[us][Pawn] |= SquareBB(to)

		sign := int32(1)
		if us == Black {
			sign = -1
		}
		p.DeltaMat[PhaseOpening] -= sign * (PhaseValue[PhaseOpening][promoPt] - PhaseValue[PhaseOpening][Pawn])
		p.DeltaMat[PhaseEndgame] -= sign * (PhaseValue[PhaseEndgame][promoPt] - PhaseValue[PhaseEndgame][Pawn])
		p.NonPawnMat[us] -= int32(PieceValue[promoPt])
	}

	if undo.CapturedPiece != NoPiece {
		capType := undo.CapturedPiece.Type()
		sign := int32(1)
		if them == Black {
			sign = -1
		}
		p.DeltaMat[PhaseOpening] += sign * PhaseValue[PhaseOpening][capType]
		p.DeltaMat[PhaseEndgame] += sign * PhaseValue[PhaseEndgame][capType]
		if capType != Pawn {
			p.NonPawnMat[them] += int32(PieceValue[capType])
		}
	}

	// Move piece back. Castling is unwound directly on the bitboards
	// (mirroring MakeMove) since the rook's home file may coincide with
	// the king's destination file under FRC.
	if m.IsCastling() {
		side := 0
		if to < from {
			side = 1
		}
		rookHomeFrom := NewSquare(p.CastleRookFile[us][side], from.Rank())

		var kingTo, rookDest Square
		if side == 0 {
			kingTo = NewSquare(6, from.Rank())
			rookDest = NewSquare(5, from.Rank())
		} else {
			kingTo = NewSquare(2, from.Rank())
			rookDest = NewSquare(3, from.Rank())
		}

		p.Pieces[us][King] &^= SquareBB(kingTo)
		p.Pieces[us][Rook] &^= SquareBB(rookDest)

		p.Pieces[us][King] |= SquareBB(from)
		p.Pieces[us][Rook] |= SquareBB(rookHomeFrom)

		p.KingSquare[us] = from
		p.updateOccupied()
	} else {
		p.movePiece(to, from)
	}

	// Restore captured piece
	if undo.CapturedPiece != NoPiece {
		if m.IsEnPassant() {
			var capturedSq Square
			if us == White {
				capturedSq = to - 8
			} else {
				capturedSq = to + 8
			}
			p.setPiece(undo.CapturedPiece, capturedSq)
		} else {
			p.setPiece(undo.CapturedPiece, to)
		}
	}
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Position) HasLegalMoves() bool {
	ml := p.GeneratePseudoLegalMoves()
	for i := 0; i < ml.Len(); i++ {
		if p.IsLegal(ml.Get(i)) {
			return true
		}
	}
	return false
}

// IsCheckmate returns true if the position is checkmate.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsDraw returns true if the position is a draw (stalemate, 50-move, insufficient material).
func (p *Position) IsDraw() bool {
	if p.IsStalemate() {
		return true
	}
	if p.HalfMoveClock >= 100 {
		return true
	}
	return p.IsInsufficientMaterial()
}

// IsInsufficientMaterial returns true if neither side can checkmate.
func (p *Position) IsInsufficientMaterial() bool {
	// If there are any pawns, rooks, or queens, sufficient material
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn] != 0 ||
		p.Pieces[White][Rook]|p.Pieces[Black][Rook] != 0 ||
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}

	// Count minor pieces
	wKnights := p.Pieces[White][Knight].PopCount()
	wBishops := p.Pieces[White][Bishop].PopCount()
	bKnights := p.Pieces[Black][Knight].PopCount()
	bBishops := p.Pieces[Black][Bishop].PopCount()

	// K vs K
	if wKnights+wBishops+bKnights+bBishops == 0 {
		return true
	}

	// K+minor vs K
	if wKnights+wBishops <= 1 && bKnights+bBishops == 0 {
		return true
	}
	if bKnights+bBishops <= 1 && wKnights+wBishops == 0 {
		return true
	}

	return false
}
