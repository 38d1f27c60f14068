package board

import "testing"

// TestFRCCastlingKingTakesRook exercises the overlap hazard where a
// castling destination coincides with the castling rook's home square:
// white king on e1, rook on f1 (kingside), so O-O sends the rook to its
// own home square f1 and must clear both pieces before placing either
// at g1/f1.
func TestFRCCastlingKingTakesRook(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/8/8/8/8/4KR2 w F - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if !pos.FRC {
		t.Fatal("expected Shredder castling letter to set FRC")
	}

	moves := pos.GenerateLegalMoves()
	var castle Move
	found := false
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.IsCastling() {
			castle = m
			found = true
		}
	}
	if !found {
		t.Fatal("expected a castling move to be generated")
	}

	before := *pos
	undo := pos.MakeMove(castle)
	if !undo.Valid {
		t.Fatal("castling move should be valid")
	}

	if pos.PieceAt(G1) != WhiteKing {
		t.Errorf("expected white king on g1, got %v", pos.PieceAt(G1))
	}
	if pos.PieceAt(F1) != WhiteRook {
		t.Errorf("expected white rook on f1, got %v", pos.PieceAt(F1))
	}
	if pos.KingSquare[White] != G1 {
		t.Errorf("KingSquare[White] = %v, want g1", pos.KingSquare[White])
	}

	pos.UnmakeMove(castle, undo)
	if *pos != before {
		t.Errorf("UnmakeMove did not restore the position:\nbefore=%+v\nafter=%+v", before, *pos)
	}
}

// TestFRCCastlingRightsGeneralizeBeyondAH verifies castling-rights
// revocation uses CastleRookFile rather than hardcoded a/h squares: a
// rook move off its Shredder home file should drop that side's rights.
func TestFRCCastlingRightsGeneralizeBeyondAH(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/8/8/8/8/2R1K2R w HC - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if pos.CastlingRights&WhiteQueenSideCastle == 0 {
		t.Fatal("expected white queenside castling rights initially")
	}

	move := NewMove(C1, C2)
	undo := pos.MakeMove(move)
	if !undo.Valid {
		t.Fatal("rook move should be valid")
	}
	if pos.CastlingRights&WhiteQueenSideCastle != 0 {
		t.Error("expected white queenside rights to be revoked after the c-file rook moved")
	}
	if pos.CastlingRights&WhiteKingSideCastle == 0 {
		t.Error("expected white kingside rights to remain")
	}
}
