package relay

import (
	"testing"

	"github.com/rawblock/nostrdizer/internal/wire"
	"github.com/stretchr/testify/require"
)

func TestFilter_Matches(t *testing.T) {
	base := wire.RawEvent{
		ID:        "id1",
		PubKey:    "author1",
		Kind:      1,
		CreatedAt: 1000,
		Tags:      [][]string{{"p", "recipient1"}},
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"no constraints matches", Filter{}, true},
		{"matching id", Filter{IDs: []string{"id1"}}, true},
		{"non-matching id", Filter{IDs: []string{"other"}}, false},
		{"matching author", Filter{Authors: []string{"author1"}}, true},
		{"non-matching author", Filter{Authors: []string{"other"}}, false},
		{"matching kind", Filter{Kinds: []int{1, 2}}, true},
		{"non-matching kind", Filter{Kinds: []int{2, 3}}, false},
		{"matching p-tag", Filter{PTag: "recipient1"}, true},
		{"non-matching p-tag", Filter{PTag: "someone-else"}, false},
		{"since excludes earlier", Filter{Since: 1001}, false},
		{"since includes equal", Filter{Since: 1000}, true},
		{"until excludes later", Filter{Until: 999}, false},
		{"until includes equal", Filter{Until: 1000}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.filter.Matches(base))
		})
	}
}

func TestFilter_Matches_NoPTag(t *testing.T) {
	e := wire.RawEvent{ID: "id1", PubKey: "author1", Kind: 1}
	require.False(t, Filter{PTag: "anyone"}.Matches(e))
}
