package admin

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests use a stub.
type execIface interface {
	CreateAdmin(ctx context.Context) error
	SetRole(ctx context.Context) error
	ListUsers(ctx context.Context) error
}

const helpText = "Available commands: create-admin, set-role, list-users, help, exit"

// runREPL reads commands line by line until EOF, "exit" or "quit". Command
// errors are reported by the commands themselves and do not stop the loop.
// Commands prompt on the same reader, so no input is buffered elsewhere.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader, w io.Writer) {
	fmt.Fprintln(w, helpText)
	for {
		fmt.Fprint(w, "admin> ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			fmt.Fprintln(w, helpText)
		case "create-admin":
			_ = a.CreateAdmin(ctx)
		case "set-role":
			_ = a.SetRole(ctx)
		case "list-users", "ls":
			_ = a.ListUsers(ctx)
		case "exit", "quit":
			return
		default:
			fmt.Fprintf(w, "Unknown command: %s\n", parts[0])
		}
	}
}
