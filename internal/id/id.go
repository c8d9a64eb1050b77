package id

import (
	"fmt"
	"strconv"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generate creates a prefixed unique ID using NanoID
// Format: prefix-nanoid (e.g., "book-V1StGXR8_Z5jdHi6B-myT")
//
// NanoIDs are URL-friendly, compact (21 characters vs UUID's 36),
// and use a larger alphabet for better entropy per character.
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	// Use default NanoID (21 characters, URL-safe alphabet)
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
// Use this only when you're certain the system entropy is available,
// or when failure should crash the program (e.g., during initialization).
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// orderSuffixLength is the random tail appended to order IDs so two orders
// placed in the same millisecond still get distinct IDs.
const orderSuffixLength = 6

// NewOrderID creates an order ID derived from the current wall clock.
// Format: ord-<unix millis>-<nanoid> (e.g., "ord-1735689600123-x4Fq9b").
//
// The millisecond prefix keeps IDs monotonically distinguishable so orders
// sort roughly by creation time even when compared as plain strings.
func NewOrderID() (string, error) {
	suffix, err := gonanoid.New(orderSuffixLength)
	if err != nil {
		return "", fmt.Errorf("generate order id suffix: %w", err)
	}
	millis := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return "ord-" + millis + "-" + suffix, nil
}
