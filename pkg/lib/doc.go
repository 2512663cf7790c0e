// Package lib provides a Go SDK for managing and executing seqr sequences
// programmatically.
//
// This package allows applications to store sequences and positions, execute
// them against a live screen, and drive a running execution without shelling
// out to the seqr CLI binary. It is useful for scripting, automation, and
// building tools on top of seqr.
//
// # Quick Start
//
// Create a client, store a sequence, and execute it:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Store a position and a sequence that clicks it.
//	client.SavePosition(ctx, lib.Position{Name: "spawn", X: 640, Y: 400})
//	client.SaveSequence(ctx, lib.Sequence{
//	    Name: "open-menu",
//	    Actions: []lib.Action{
//	        {Kind: lib.ActionKindClick, Click: &lib.ClickParams{Position: "spawn"}},
//	        {Kind: lib.ActionKindWait, Wait: &lib.WaitParams{Duration: time.Second}},
//	    },
//	})
//
//	// Execute it in simulation (no input is dispatched).
//	run, err := client.Execute(ctx, "open-menu", &lib.ExecuteOpts{Simulate: true})
//
// # Collaborators
//
// Execution talks to the screen through four collaborator interfaces, all
// settable in [Config]:
//
//   - [Capturer]: grabs frames of the live view.
//   - [Controller]: dispatches mouse clicks, drags and typed text.
//   - [Detector]: matches image templates against frames.
//   - [Recognizer]: extracts text from frames.
//
// The defaults are in-memory fakes, which is enough for storage work and
// simulated executions. Wire real implementations to drive an actual screen;
// any type that satisfies the interfaces works, including the ones the seqr
// CLI uses.
//
// # Execution and Control
//
// [Client.Execute] blocks until the run reaches a terminal state. To pause,
// resume, single-step or stop it, call Execute on its own goroutine and use
// the control methods from another:
//
//	done := make(chan struct{})
//	go func() {
//	    defer close(done)
//	    client.Execute(ctx, "open-menu", nil)
//	}()
//
//	client.Pause()
//	client.Step() // one action, then paused again
//	client.Resume()
//	client.Stop()
//	<-done
//
// An emergency stop key can be wired through [Config].Interrupt; when it
// trips, the run finishes as stopped, never failed.
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: Sequence, position or run does not exist.
//   - [ErrAlreadyExists]: Resource with the same name already exists.
//   - [ErrNotValid]: Invalid input or operation (e.g. resuming while not paused).
//   - [ErrAlreadyRunning]: Execute called while a run is in progress.
//   - [ErrTimeout]: A text wait exceeded its deadline.
//   - [ErrNoMatch]: A template search set to abort found nothing.
//
// # Testing
//
// Use a temporary database path and the default fake collaborators to write
// tests without a real screen:
//
//	client, _ := lib.New(ctx, lib.Config{
//	    DBPath: filepath.Join(t.TempDir(), "test.db"),
//	})
//	defer client.Close()
//
// # Thread Safety
//
// A [Client] is safe for concurrent use from multiple goroutines. The
// underlying storage uses SQLite with WAL mode, and the client holds a single
// execution slot shared by Execute and the control methods.
package lib
