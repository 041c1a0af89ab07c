package taker

import (
	"testing"

	"github.com/rawblock/nostrdizer/internal/types"
	"github.com/stretchr/testify/require"
)

func TestPoolDepthScore(t *testing.T) {
	tests := []struct {
		name   string
		offer  types.NormalizedOffer
		amount int64
		want   int64
	}{
		{"headroom above amount", types.NormalizedOffer{MaxSize: 200000}, 100000, 100000},
		{"no headroom", types.NormalizedOffer{MaxSize: 100000}, 100000, 0},
		{"amount exceeds max size", types.NormalizedOffer{MaxSize: 50000}, 100000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, poolDepthScore(tt.offer, tt.amount))
		})
	}
}
