package noteblocks_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/deyanlaf0409/noteblocks"
	"github.com/deyanlaf0409/noteblocks/pkg/adapters/memory"
	"github.com/deyanlaf0409/noteblocks/pkg/core"
)

// Example_basic creates a note in a guest session and reads the collection back.
func Example_basic() {
	dir, err := os.MkdirTemp("", "noteblocks-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	ctx := context.Background()
	client, err := noteblocks.New(ctx, dir)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close(ctx)

	if _, err := client.Reconciler.CreateNote(ctx, "buy milk"); err != nil {
		log.Fatal(err)
	}

	for _, n := range client.Store.Notes() {
		fmt.Println(n.Text)
	}
	// Output:
	// buy milk
}

// Example_login links a guest collection to an account and merges both sides.
func Example_login() {
	dir, err := os.MkdirTemp("", "noteblocks-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	ctx := context.Background()
	remote := memory.NewGateway()
	remote.Seed("acct-1", "alice", []core.Note{{ID: "server-note", Text: "from the server"}}, nil)

	client, err := noteblocks.New(ctx, dir,
		noteblocks.WithStorage(noteblocks.StorageMemory),
		noteblocks.WithGateway(remote),
		noteblocks.WithScheduler(memory.NewScheduler()),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close(ctx)

	if _, err := client.Reconciler.CreateNote(ctx, "written offline"); err != nil {
		log.Fatal(err)
	}

	out, err := client.Login(ctx, "acct-1")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out.Username, out.Notes)
	// Output:
	// alice 2
}
