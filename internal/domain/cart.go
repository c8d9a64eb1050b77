package domain

import "time"

// CartLine is a single selection in a cart: one book and how many copies.
type CartLine struct {
	BookID   string `json:"book_id"`
	Quantity int    `json:"quantity"`
}

// Cart is a shopper's pre-purchase selection, owned by exactly one user.
//
// Lines are keyed by book ID so a book can never appear twice; adding an
// already-present book merges quantities. Present lines always have
// Quantity >= 1 - mutators drop a line rather than store a non-positive
// quantity. Stock limits are NOT enforced here: the cart may hold an
// over-stock line so the shopper can see and correct it, and checkout is
// the authoritative gate.
type Cart struct {
	UserID    string              `json:"user_id"`
	Lines     map[string]CartLine `json:"lines"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// NewCart creates an empty cart for the given user.
func NewCart(userID string) *Cart {
	return &Cart{
		UserID:    userID,
		Lines:     make(map[string]CartLine),
		UpdatedAt: time.Now(),
	}
}

// Add inserts a line or increases an existing line's quantity (additive
// merge - repeated adds accumulate, never overwrite). Quantities <= 0 are
// ignored.
func (c *Cart) Add(bookID string, quantity int) {
	if quantity <= 0 {
		return
	}
	if c.Lines == nil {
		c.Lines = make(map[string]CartLine)
	}
	line := c.Lines[bookID]
	line.BookID = bookID
	line.Quantity += quantity
	c.Lines[bookID] = line
	c.UpdatedAt = time.Now()
}

// SetQuantity sets a line's quantity to exactly the given value.
// A non-positive quantity always removes the line, never errors.
// Setting quantity for an absent book is a no-op.
func (c *Cart) SetQuantity(bookID string, quantity int) {
	if _, ok := c.Lines[bookID]; !ok {
		return
	}
	if quantity <= 0 {
		c.Remove(bookID)
		return
	}
	c.Lines[bookID] = CartLine{BookID: bookID, Quantity: quantity}
	c.UpdatedAt = time.Now()
}

// Remove deletes a line if present. Idempotent.
func (c *Cart) Remove(bookID string) {
	if _, ok := c.Lines[bookID]; !ok {
		return
	}
	delete(c.Lines, bookID)
	c.UpdatedAt = time.Now()
}

// Clear empties all lines unconditionally.
func (c *Cart) Clear() {
	c.Lines = make(map[string]CartLine)
	c.UpdatedAt = time.Now()
}

// IsEmpty returns true if the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Quantity returns the quantity for a book, or 0 if it is not in the cart.
func (c *Cart) Quantity(bookID string) int {
	return c.Lines[bookID].Quantity
}

// TotalItems returns the sum of quantities across all lines.
func (c *Cart) TotalItems() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}
