package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// printlnFn and printFn are test seams for user-facing output. In tests,
// replace them with stubs.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Drafts(ctx context.Context) error
	NewDraft(ctx context.Context, title string) error
	Open(ctx context.Context, id string) error
	Add(ctx context.Context, paths []string) error
	Slots(ctx context.Context) error
	Images(ctx context.Context) error
	Retry(ctx context.Context, ref string) error
	Cancel(ctx context.Context, ref string) error
	Dismiss(ctx context.Context, ref string) error
	Remove(ctx context.Context, n int) error
	Publish(ctx context.Context, listingID string) error
	Orphans(ctx context.Context) error
}

const helpText = `Available commands:
  drafts                list local drafts
  new [title]           start a new draft
  open <draft-id>       switch to a draft
  add <file>...         upload images to the current draft
  slots                 show upload slots
  images                show the draft's image list
  retry <slot>          retry a failed upload
  cancel <slot>         cancel an upload in flight
  dismiss <slot>        drop a failed upload
  remove <n>            remove image n from the draft
  publish <listing-id>  write the image list to a listing
  orphans               list uploads no draft references
  exit | quit           leave the program
A <slot> is its number in 'slots' or a prefix of its id.`

// runREPL reads commands from scanner until EOF, "exit" or "quit".
//
// The first token of a line selects the command; the rest are its
// arguments. Errors from handlers are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printFn(fmt.Sprintf("gm %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)

		case "drafts":
			err = a.Drafts(ctx)

		case "new":
			err = a.NewDraft(ctx, strings.Join(args, " "))

		case "open":
			if len(args) != 1 {
				printlnFn("Usage: open <draft-id>")
				continue
			}
			err = a.Open(ctx, args[0])

		case "add":
			if len(args) == 0 {
				printlnFn("Usage: add <file>...")
				continue
			}
			err = a.Add(ctx, args)

		case "slots":
			err = a.Slots(ctx)

		case "images":
			err = a.Images(ctx)

		case "retry", "cancel", "dismiss":
			if len(args) != 1 {
				printlnFn(fmt.Sprintf("Usage: %s <slot>", cmd))
				continue
			}
			switch cmd {
			case "retry":
				err = a.Retry(ctx, args[0])
			case "cancel":
				err = a.Cancel(ctx, args[0])
			default:
				err = a.Dismiss(ctx, args[0])
			}

		case "remove":
			n := 0
			if len(args) == 1 {
				n, _ = strconv.Atoi(args[0])
			}
			if n < 1 {
				printlnFn("Usage: remove <n>")
				continue
			}
			err = a.Remove(ctx, n)

		case "publish":
			if len(args) != 1 {
				printlnFn("Usage: publish <listing-id>")
				continue
			}
			err = a.Publish(ctx, args[0])

		case "orphans":
			err = a.Orphans(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
