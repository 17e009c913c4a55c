package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	NewPost(ctx context.Context) error
	MyPosts(ctx context.Context) error
	AllPosts(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Save(ctx context.Context, id, dst string) error
	Me(ctx context.Context) error
	Rename(ctx context.Context) error
}

// needsLogin lists the commands that only make sense with a session.
var needsLogin = map[string]bool{
	"new":    true,
	"mine":   true,
	"me":     true,
	"rename": true,
	"logout": true,
}

// runREPL reads commands line by line from in and dispatches them to a until
// input ends or the user types exit.
//
// Command handlers report their own failures to the user, so their errors are
// ignored here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("pk %s> ", statusFn()))
		line, ok := readLine(in)
		if !ok {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if needsLogin[cmd] && !a.isLoggedIn() {
			printlnFn("Please log in first")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: new, mine, (l)ist, show <uuid>, save <uuid> <path>, me, rename, logout, exit")
			} else {
				printlnFn("Available commands: register, login, (l)ist, show <uuid>, save <uuid> <path>, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "new":
			_ = a.NewPost(ctx)

		case "mine":
			_ = a.MyPosts(ctx)

		case "l", "list":
			_ = a.AllPosts(ctx)

		case "show":
			id := ""
			if len(args) > 0 {
				id = args[0]
			}
			_ = a.Show(ctx, id)

		case "save":
			args = append(args, "", "")
			_ = a.Save(ctx, args[0], args[1])

		case "me":
			_ = a.Me(ctx)

		case "rename":
			_ = a.Rename(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
