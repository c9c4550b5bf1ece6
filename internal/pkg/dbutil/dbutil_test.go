package dbutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFinalizeRewritesPlaceholders(t *testing.T) {
	query, args := Finalize("SELECT id FROM partners WHERE id=? AND active=?", []interface{}{"p1", 1})
	require.Equal(t, "SELECT id FROM partners WHERE id=$1 AND active=$2", query)
	require.Equal(t, []interface{}{"p1", 1}, args)
}

func TestFinalizeRewritesLimitOffset(t *testing.T) {
	query, args := Finalize("SELECT id FROM experts WHERE role=? LIMIT ?,?", []interface{}{"specialist", 10, 5})
	require.Equal(t, "SELECT id FROM experts WHERE role=$1 LIMIT $2 OFFSET $3", query)
	require.Equal(t, []interface{}{"specialist", 5, 10}, args)
}
