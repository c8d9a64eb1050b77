package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCart_Add_MergesAdditively(t *testing.T) {
	cart := NewCart("user-1")

	cart.Add("book-a", 2)
	cart.Add("book-a", 3)

	assert.Equal(t, 5, cart.Quantity("book-a"))
	assert.Len(t, cart.Lines, 1, "same book must never produce two lines")
}

func TestCart_Add_SumsArbitrarySequences(t *testing.T) {
	quantities := []int{1, 4, 2, 7, 1}
	cart := NewCart("user-1")

	want := 0
	for _, q := range quantities {
		cart.Add("book-a", q)
		want += q
	}

	assert.Equal(t, want, cart.Quantity("book-a"))
}

func TestCart_Add_IgnoresNonPositiveQuantity(t *testing.T) {
	cart := NewCart("user-1")

	cart.Add("book-a", 0)
	cart.Add("book-a", -3)

	assert.True(t, cart.IsEmpty())
}

func TestCart_SetQuantity_Replaces(t *testing.T) {
	cart := NewCart("user-1")
	cart.Add("book-a", 2)

	cart.SetQuantity("book-a", 7)

	assert.Equal(t, 7, cart.Quantity("book-a"))
}

func TestCart_SetQuantity_NonPositiveRemoves(t *testing.T) {
	for _, q := range []int{0, -1, -100} {
		cart := NewCart("user-1")
		cart.Add("book-a", 5)

		cart.SetQuantity("book-a", q)

		assert.Equal(t, 0, cart.Quantity("book-a"))
		assert.NotContains(t, cart.Lines, "book-a")
	}
}

func TestCart_SetQuantity_AbsentBookIsNoop(t *testing.T) {
	cart := NewCart("user-1")
	before := cart.UpdatedAt

	cart.SetQuantity("book-missing", 3)

	assert.True(t, cart.IsEmpty())
	assert.Equal(t, before, cart.UpdatedAt)
}

func TestCart_Remove_Idempotent(t *testing.T) {
	cart := NewCart("user-1")
	cart.Add("book-a", 2)
	cart.Add("book-b", 1)

	cart.Remove("book-a")
	cart.Remove("book-a")

	assert.Equal(t, 0, cart.Quantity("book-a"))
	assert.Equal(t, 1, cart.Quantity("book-b"))
}

func TestCart_Clear_EmptiesAllLines(t *testing.T) {
	cart := NewCart("user-1")
	cart.Add("book-a", 2)
	cart.Add("book-b", 9)

	cart.Clear()

	assert.True(t, cart.IsEmpty())
	assert.Equal(t, 0, cart.TotalItems())
}

func TestCart_TotalItems(t *testing.T) {
	cart := NewCart("user-1")
	cart.Add("book-a", 2)
	cart.Add("book-b", 3)
	cart.Add("book-a", 3)

	assert.Equal(t, 8, cart.TotalItems())
	assert.Equal(t, 5, cart.Quantity("book-a"))
}
