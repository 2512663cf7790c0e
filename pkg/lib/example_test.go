package lib_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/slok/seqr/pkg/lib"
)

// This example shows how to create a client for testing. The default
// collaborators are fakes, so no real screen is needed.
func Example_testing() {
	ctx := context.Background()

	// Use a temp directory so the test leaves no state behind.
	dir, err := os.MkdirTemp("", "seqr-example-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	client, err := lib.New(ctx, lib.Config{
		DBPath: filepath.Join(dir, "seqr.db"),
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	// Store a sequence.
	seq, err := client.SaveSequence(ctx, lib.Sequence{
		Name: "open-menu",
		Actions: []lib.Action{
			{Kind: lib.ActionKindWait, Wait: &lib.WaitParams{Duration: 10 * time.Millisecond}},
			{Kind: lib.ActionKindTypeText, TypeText: &lib.TypeTextParams{Text: "hello"}},
		},
	})
	if err != nil {
		panic(err)
	}

	fmt.Printf("Saved: %s (%d actions)\n", seq.Name, len(seq.Actions))

	// Output:
	// Saved: open-menu (2 actions)
}

// This example shows the full lifecycle: save, execute, inspect history,
// remove.
func Example_lifecycle() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "seqr-example-lifecycle-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	client, err := lib.New(ctx, lib.Config{
		DBPath: filepath.Join(dir, "seqr.db"),
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	// Save the position the sequence clicks.
	_, err = client.SavePosition(ctx, lib.Position{Name: "spawn", X: 640, Y: 400})
	if err != nil {
		panic(err)
	}
	fmt.Println("1. Position saved")

	// Save the sequence.
	_, err = client.SaveSequence(ctx, lib.Sequence{
		Name: "farm-loop",
		Actions: []lib.Action{
			{Kind: lib.ActionKindClick, Click: &lib.ClickParams{Position: "spawn"}},
			{Kind: lib.ActionKindWait, Wait: &lib.WaitParams{Duration: 10 * time.Millisecond}},
		},
	})
	if err != nil {
		panic(err)
	}
	fmt.Println("2. Sequence saved")

	// Execute it in simulation.
	run, err := client.Execute(ctx, "farm-loop", &lib.ExecuteOpts{Simulate: true})
	if err != nil {
		panic(err)
	}
	fmt.Printf("3. Run %s (%d steps)\n", run.Status, run.StepsDone)

	// Inspect the run history.
	runs, err := client.History(ctx, "farm-loop", 10)
	if err != nil {
		panic(err)
	}
	fmt.Printf("4. History has %d run(s)\n", len(runs))

	// Remove the sequence. Its runs stay in history.
	_, err = client.DeleteSequence(ctx, "farm-loop")
	if err != nil {
		panic(err)
	}
	fmt.Println("5. Removed")

	// Output:
	// 1. Position saved
	// 2. Sequence saved
	// 3. Run completed (2 steps)
	// 4. History has 1 run(s)
	// 5. Removed
}

// This example shows a simulated execution. Simulation resolves positions and
// walks every action but dispatches no input.
func ExampleClient_Execute() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "seqr-example-execute-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	client, err := lib.New(ctx, lib.Config{
		DBPath: filepath.Join(dir, "seqr.db"),
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	// Setup: a position and a sequence using it.
	_, _ = client.SavePosition(ctx, lib.Position{Name: "ok-button", X: 800, Y: 600})
	_, _ = client.SaveSequence(ctx, lib.Sequence{
		Name: "confirm",
		Actions: []lib.Action{
			{Kind: lib.ActionKindClick, Click: &lib.ClickParams{Position: "ok-button"}},
			{Kind: lib.ActionKindTypeText, TypeText: &lib.TypeTextParams{Text: "done"}},
		},
	})

	run, err := client.Execute(ctx, "confirm", &lib.ExecuteOpts{Simulate: true})
	if err != nil {
		panic(err)
	}

	fmt.Printf("status=%s steps=%d simulated=%t\n", run.Status, run.StepsDone, run.Simulated)

	// Output:
	// status=completed steps=2 simulated=true
}

// This example shows sequence validation without execution.
func ExampleClient_Validate() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "seqr-example-validate-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	client, err := lib.New(ctx, lib.Config{
		DBPath: filepath.Join(dir, "seqr.db"),
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	// A sequence that references a position and a template nobody stored.
	_, _ = client.SaveSequence(ctx, lib.Sequence{
		Name: "broken",
		Actions: []lib.Action{
			{Kind: lib.ActionKindClick, Click: &lib.ClickParams{Position: "nowhere"}},
			{Kind: lib.ActionKindTemplateSearch, TemplateSearch: &lib.TemplateSearchParams{
				Templates:  []string{"ok-button"},
				Confidence: 0.9,
				Timeout:    time.Second,
			}},
		},
	})

	results, err := client.Validate(ctx, "broken")
	if err != nil {
		panic(err)
	}

	for _, r := range results {
		fmt.Printf("%s: %s\n", r.ID, r.Status)
	}
	_, _, errCount := lib.CountByStatus(results)
	fmt.Printf("errors: %d\n", errCount)

	// Output:
	// broken/definition: ok
	// broken/positions: error
	// broken/templates: error
	// errors: 2
}

// This example shows how to handle SDK errors using errors.Is.
func Example_errorHandling() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "seqr-example-errors-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	client, err := lib.New(ctx, lib.Config{
		DBPath: filepath.Join(dir, "seqr.db"),
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	// Try to get a non-existent sequence.
	_, err = client.GetSequence(ctx, "does-not-exist")
	if errors.Is(err, lib.ErrNotFound) {
		fmt.Println("sequence not found (expected)")
	}

	// Try to save a sequence without actions.
	_, err = client.SaveSequence(ctx, lib.Sequence{Name: "empty"})
	if errors.Is(err, lib.ErrNotValid) {
		fmt.Println("invalid sequence (expected)")
	}

	// Try to pause while nothing is executing.
	err = client.Pause()
	if errors.Is(err, lib.ErrNotValid) {
		fmt.Println("no execution in progress (expected)")
	}

	// Output:
	// sequence not found (expected)
	// invalid sequence (expected)
	// no execution in progress (expected)
}
