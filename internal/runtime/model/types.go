// Package model defines the concrete types the runtime instantiates its pallets with.
package model

// AccountID identifies a caller. Accounts are plain names; no key material is attached.
type AccountID string

// BlockNumber counts finalized blocks.
type BlockNumber uint32

// Nonce counts extrinsics submitted by one account.
type Nonce uint32

// Content is the payload a claim is registered for.
type Content string
