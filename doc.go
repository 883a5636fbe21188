// Package noteblocks is the composition root of the noteblocks note engine.
//
// It connects the local store, the reconciliation engine and the account merge
// engine with their adapters.
//
// Philosophy:
//
// Noteblocks is local-first. Every mutation is applied to the local collection
// immediately and persisted; when the session is linked to an account the same
// mutation is sent to the remote service in the background. A failed remote call
// never blocks the user. Only the highlight flag is reverted when its remote
// update fails; every other mutation stays applied locally.
//
// Features:
//
//   - **Guest sessions**: everything works offline until an account is linked.
//   - **Account linking**: local and server collections are merged by note id and
//     the union is pushed back.
//   - **Pluggable storage**: files (JSON or YAML), SQLite or memory.
//   - **Reminders**: in-process timers follow the notes that carry a reminder date.
//
// Usage:
//
//	client, err := noteblocks.New(ctx, "./notes",
//		noteblocks.WithLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//	defer client.Close(ctx)
//
//	note, err := client.Reconciler.CreateNote(ctx, "buy milk")
package noteblocks
