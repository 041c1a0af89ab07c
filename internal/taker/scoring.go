package taker

import "github.com/rawblock/nostrdizer/internal/types"

// poolDepthScore ranks a candidate maker by how much size headroom its
// offer carries above the requested amount. A maker whose range barely
// covers the round contributes a thinner, more identifiable anonymity set
// than one with wide headroom, so among equal fees the wider offer
// sorts first. Adapted from the teacher pack's hardware-accelerated
// anonymity-set matcher (internal/cuda): that scored a finished transaction's
// input/output set against the power-set of possible equal-value groupings;
// here there's no GPU kernel or finished transaction to score, only a
// pool of competing offers to rank before a round exists, so the scoring
// collapses to plain Go arithmetic over the offer's declared size range.
func poolDepthScore(n types.NormalizedOffer, amount int64) int64 {
	headroom := n.MaxSize - amount
	if headroom < 0 {
		return 0
	}
	return headroom
}
