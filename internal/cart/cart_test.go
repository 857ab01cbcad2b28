package cart

import (
	"encoding/json"
	"testing"

	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	itemA = Snapshot{ID: 1, Name: "Banda de Plata Minimalista", Price: 45000}
	itemB = Snapshot{ID: 3, Name: "Aretes Geométricos Oro", Price: 28000}
)

func TestAddItemMergesDuplicates(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(itemA, 1))
	require.NoError(t, c.AddItem(itemB, 2))
	require.NoError(t, c.AddItem(itemA, 1))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].Item.ID)
	assert.Equal(t, 2, lines[0].Qty)
	assert.Equal(t, int64(3), lines[1].Item.ID)
	assert.Equal(t, 2, lines[1].Qty)
}

func TestAddItemNeverDuplicatesIDs(t *testing.T) {
	c := New()
	ids := []int64{4, 1, 4, 7, 1, 1, 9, 4}
	for _, id := range ids {
		require.NoError(t, c.AddItem(Snapshot{ID: id, Price: 1000}, 1))
	}

	seen := map[int64]bool{}
	for _, line := range c.Lines() {
		assert.False(t, seen[line.Item.ID], "duplicate line for %d", line.Item.ID)
		seen[line.Item.ID] = true
	}
	assert.Equal(t, len(ids), c.Count())
	assert.Equal(t, []int64{4, 1, 7, 9}, lineIDs(c))
}

func TestAddItemRejectsInvalidQuantity(t *testing.T) {
	c := New()
	for _, qty := range []int{0, -3} {
		err := c.AddItem(itemA, qty)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "qty %d", qty)
	}
	assert.True(t, c.IsEmpty())
}

func TestTotals(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(itemA, 2))
	require.NoError(t, c.AddItem(itemB, 1))

	assert.Equal(t, int64(118000), c.Total())
	assert.Equal(t, 3, c.Count())

	var sum int64
	for _, line := range c.Lines() {
		sum += c.LineTotal(line)
	}
	assert.Equal(t, c.Total(), sum)
}

func TestRemoveAndClear(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(itemA, 1))
	require.NoError(t, c.AddItem(itemB, 1))

	c.RemoveItem(999)
	assert.Equal(t, []int64{1, 3}, lineIDs(c))

	c.RemoveItem(1)
	assert.Equal(t, []int64{3}, lineIDs(c))
	assert.Equal(t, int64(28000), c.Total())

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Zero(t, c.Total())
	assert.Zero(t, c.Count())
}

func TestLinesReturnsCopy(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(itemA, 1))
	lines := c.Lines()
	lines[0].Qty = 50
	assert.Equal(t, 1, c.Count())
}

func TestJSONRoundTripMergesStoredDuplicates(t *testing.T) {
	raw := `{"lines":[{"item":{"id":1,"name":"a","price":100},"qty":1},{"item":{"id":1,"name":"a","price":100},"qty":2}]}`
	c := New()
	require.NoError(t, json.Unmarshal([]byte(raw), c))
	assert.Equal(t, []int64{1}, lineIDs(c))
	assert.Equal(t, 3, c.Count())

	out, err := json.Marshal(New())
	require.NoError(t, err)
	assert.JSONEq(t, `{"lines":[]}`, string(out))

	bad := `{"lines":[{"item":{"id":1,"price":100},"qty":0}]}`
	assert.Error(t, json.Unmarshal([]byte(bad), New()))
}

func lineIDs(c *Cart) []int64 {
	out := []int64{}
	for _, line := range c.Lines() {
		out = append(out, line.Item.ID)
	}
	return out
}
