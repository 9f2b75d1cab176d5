// Package punchgo implements a capacity-bounded, single-claim-per-slot
// ledger record: a punchcard an authority creates with N claimable
// slots and later claims individual slots from, at most once each. When
// every slot has been claimed, the record's storage is reclaimed and
// its deposit returned to the authority.
//
// The packed record layout and claim state machine live in the
// punchcard package; account storage, deposits, and the transaction
// boundary live in the ledger package; this package ties them together
// as a Program that decodes instruction payloads and dispatches the
// create and claim operations.
//
// # Quick start
//
//	store := ledger.NewMemoryStore()
//	program := punchgo.New(programID, store)
//
//	payload, _ := punchgo.EncodeInstruction(punchgo.CreateInstruction{Capacity: 16})
//	err := program.Process(ctx, []punchgo.AccountMeta{
//	    {Address: payer, Signer: true, Writable: true},
//	    {Address: record, Signer: true, Writable: true},
//	    {Address: systemID},
//	}, payload)
//
//	payload, _ = punchgo.EncodeInstruction(punchgo.ClaimInstruction{Indices: []uint64{0, 3, 7}})
//	err = program.Process(ctx, []punchgo.AccountMeta{
//	    {Address: payer, Signer: true},
//	    {Address: record, Writable: true},
//	}, payload)
//
// Every Process invocation runs inside a single ledger transaction: an
// error at any point leaves the store exactly as it was.
//
// The snapshot package persists ledger state to blob storage (local
// disk, S3, MinIO) for standalone deployments.
package punchgo
