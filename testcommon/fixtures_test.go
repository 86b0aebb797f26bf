package testcommon

import (
	"testing"

	"github.com/matryer/is"
)

func TestFixturesLoad(t *testing.T) {
	is := is.New(t)
	is.True(Game(t, Won).Won())
	is.True(Game(t, Stuck).Stuck())
	is.Equal(len(Game(t, BlockedHearts).Options()), 4)
	is.True(Position(t, AutoPromote).FoundationCount() == 0)
	is.True(Game(t, AutoPromote).Position().FoundationCount() > 0)
}
