package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineItems_PutReplacesInPlace(t *testing.T) {
	items := NewLineItems(LineItem{ID: "a", Quantity: 1}, LineItem{ID: "b", Quantity: 2})
	items.Put(LineItem{ID: "a", Quantity: 7})
	items.Put(LineItem{ID: "c", Quantity: 3})

	all := items.All()
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, 7, all[0].Quantity)
	assert.Equal(t, "c", all[2].ID)
}

func TestLineItems_DuplicateIDsCollapse(t *testing.T) {
	items := NewLineItems(LineItem{ID: "a", Quantity: 1}, LineItem{ID: "a", Quantity: 4})
	assert.Equal(t, 1, items.Len())
	got, _ := items.Get("a")
	assert.Equal(t, 4, got.Quantity)
}

func TestLineItems_RemoveAndClone(t *testing.T) {
	items := NewLineItems(LineItem{ID: "a"}, LineItem{ID: "b"}, LineItem{ID: "c"})
	clone := items.Clone()

	assert.True(t, clone.Remove("b"))
	assert.False(t, clone.Remove("b"))
	assert.Equal(t, 2, clone.Len())
	assert.Equal(t, 3, items.Len())
	assert.Equal(t, "c", clone.All()[1].ID)

	clone.Update("a", func(li *LineItem) { li.Quantity = 9 })
	orig, _ := items.Get("a")
	assert.Equal(t, 0, orig.Quantity)
}

func TestLineItems_Active(t *testing.T) {
	now := time.Now()
	items := NewLineItems(
		LineItem{ID: "a", Quantity: 1},
		LineItem{ID: "b", Quantity: 1, DeletedDate: &now},
		LineItem{ID: "c", Quantity: 0},
	)
	active := items.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "a", active[0].ID)
}

func TestLineItems_JSONRoundTripKeepsOrder(t *testing.T) {
	raw := `[{"id":"z","quantity":1},{"id":"a","quantity":2}]`
	var items LineItems
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	assert.Equal(t, "z", items.All()[0].ID)

	out, err := json.Marshal(items)
	require.NoError(t, err)
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "a", decoded[1]["id"])
}

func TestLineItems_EmptyMarshalsAsArray(t *testing.T) {
	out, err := json.Marshal(LineItems{})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(out))
}

func TestOrder_AllActiveFulfilled(t *testing.T) {
	now := time.Now()
	order := &Order{LineItems: NewLineItems(
		LineItem{ID: "a", Quantity: 1, FulfillmentStatus: LineItemFulfilled},
		LineItem{ID: "b", Quantity: 1, DeletedDate: &now},
	)}
	assert.True(t, order.AllActiveFulfilled())

	order.LineItems.Put(LineItem{ID: "c", Quantity: 2})
	assert.False(t, order.AllActiveFulfilled())

	assert.False(t, (&Order{}).AllActiveFulfilled())
}

func TestStatusParsing(t *testing.T) {
	s, ok := ParseFinancialStatus("  paid ")
	assert.True(t, ok)
	assert.Equal(t, FinancialStatus("paid"), s)

	_, ok = ParseFulfillmentStatus("   ")
	assert.False(t, ok)

	assert.True(t, FulfillmentStatus("FULFILLED").IsFulfilled())
	assert.False(t, FulfillmentStatus("partial").IsFulfilled())
	assert.True(t, IsProtectedRole(" Admin"))
	assert.False(t, IsProtectedRole("ops"))
}
