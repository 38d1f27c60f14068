package board

// SEE (Static Exchange Evaluation) estimates the result of a capture
// sequence on m.To(), simulating the full alternating swap rather than
// just looking at the first recapture. Returns the material gain/loss
// from the perspective of the side making m.
func (p *Position) SEE(m Move) int {
	from := m.From()
	to := m.To()

	attacker := p.PieceAt(from)
	if attacker == NoPiece {
		return 0
	}

	var capturedValue int
	if m.IsEnPassant() {
		capturedValue = PieceValue[Pawn]
	} else {
		victim := p.PieceAt(to)
		if victim == NoPiece {
			return 0
		}
		capturedValue = PieceValue[victim.Type()]
	}

	if m.IsPromotion() {
		capturedValue += PieceValue[m.Promotion()] - PieceValue[Pawn]
	}

	return p.seeSwap(to, from, attacker, capturedValue)
}

// seeSwap runs the least-valuable-attacker swap-off: it alternates sides,
// each time replacing the previous occupant of target with the cheapest
// attacker available, then collapses the resulting gain array with a
// negamax min so a side that would lose material recapturing stops early.
func (p *Position) seeSwap(target, excludeFrom Square, firstAttacker Piece, initialGain int) int {
	var gain [32]int
	d := 0

	gain[d] = initialGain

	// Occupied bitboard excluding the initial attacker; x-ray attackers
	// behind it are re-detected naturally since getLeastValuableAttacker
	// recomputes sliding attacks against this shrinking occupancy.
	occupied := p.AllOccupied &^ SquareBB(excludeFrom)

	attackerValue := PieceValue[firstAttacker.Type()]
	side := firstAttacker.Color().Other()

	for {
		d++

		gain[d] = attackerValue - gain[d-1]

		if maxInt(-gain[d-1], gain[d]) < 0 {
			break
		}

		attackerSq, attackerPiece := p.getLeastValuableAttacker(target, side, occupied)
		if attackerSq == NoSquare {
			break
		}

		occupied &^= SquareBB(attackerSq)

		attackerValue = PieceValue[attackerPiece.Type()]
		side = side.Other()
	}

	for d--; d > 0; d-- {
		gain[d-1] = -maxInt(-gain[d-1], gain[d])
	}

	return gain[0]
}

// getLeastValuableAttacker finds the cheapest piece of side attacking
// target given occupied, scanning in ascending value order so the swap
// algorithm always recaptures with the least valuable piece first.
func (p *Position) getLeastValuableAttacker(target Square, side Color, occupied Bitboard) (Square, Piece) {
	pawns := p.Pieces[side][Pawn]
	pawnAtk := PawnAttacks(target, side.Other())
	if attackers := pawns & pawnAtk & occupied; attackers != 0 {
		return attackers.LSB(), NewPiece(Pawn, side)
	}

	knights := p.Pieces[side][Knight]
	knightAtk := KnightAttacks(target)
	if attackers := knights & knightAtk & occupied; attackers != 0 {
		return attackers.LSB(), NewPiece(Knight, side)
	}

	bishops := p.Pieces[side][Bishop]
	bishopAtk := BishopAttacks(target, occupied)
	if attackers := bishops & bishopAtk & occupied; attackers != 0 {
		return attackers.LSB(), NewPiece(Bishop, side)
	}

	rooks := p.Pieces[side][Rook]
	rookAtk := RookAttacks(target, occupied)
	if attackers := rooks & rookAtk & occupied; attackers != 0 {
		return attackers.LSB(), NewPiece(Rook, side)
	}

	queens := p.Pieces[side][Queen]
	if attackers := queens & (bishopAtk | rookAtk) & occupied; attackers != 0 {
		return attackers.LSB(), NewPiece(Queen, side)
	}

	king := p.Pieces[side][King]
	kingAtk := KingAttacks(target)
	if attackers := king & kingAtk & occupied; attackers != 0 {
		return attackers.LSB(), NewPiece(King, side)
	}

	return NoSquare, NoPiece
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
