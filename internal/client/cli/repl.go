package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App satisfies it; tests
// use a stub.
type execIface interface {
	isLoggedIn() bool
	hasPeer() bool
	SignUp(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Users(ctx context.Context) error
	Chat(ctx context.Context, peer string) error
	Say(ctx context.Context, text string) error
	Connect(ctx context.Context) error
	History(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches them to a until input
// ends or the user types "exit" or "quit". Once a peer is selected, a line
// that is not a command is sent to that peer.
//
// Command errors are not fatal; handlers report them to the user.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("chat %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: users, chat <user>, say <text>, history, connect, logout, exit")
			} else {
				printlnFn("Available commands: signup, login, exit")
			}

		case "signup":
			_ = a.SignUp(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "users":
			_ = a.Users(ctx)

		case "chat":
			peer := ""
			if len(parts) > 1 {
				peer = parts[1]
			}
			_ = a.Chat(ctx, peer)

		case "say":
			_ = a.Say(ctx, strings.TrimSpace(strings.TrimPrefix(line, "say")))

		case "history":
			_ = a.History(ctx)

		case "connect":
			_ = a.Connect(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			if a.isLoggedIn() && a.hasPeer() {
				_ = a.Say(ctx, line)
				continue
			}
			printlnFn("Unknown command:", cmd)
		}
	}
}
