// Package ledger provides the account store backing punchgo records:
// byte-addressable accounts keyed by a 32-byte address, each carrying an
// owner, a deposit balance, and a data buffer.
//
// The original host environment serialized all mutation of a record and
// committed an invocation's effects atomically. Running standalone,
// this package supplies those guarantees itself: Store.Execute runs a
// function against a copy-on-write transaction under a store-wide lock,
// and commits all touched accounts together or not at all.
package ledger
