package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it
// with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs. The real App type
// satisfies it; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	ListCalendars(ctx context.Context) error
	AddCalendar(ctx context.Context) error
	CloneCalendar(ctx context.Context) error
	DeleteCalendar(ctx context.Context) error
	UseCalendar(ctx context.Context) error
	SeedDemo(ctx context.Context) error
	AddLog(ctx context.Context) error
	ClearLogs(ctx context.Context) error
	Stats(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop.
//
// It reads a line from the scanner, parses the first token as the command,
// and dispatches to methods on 'a'. Unknown commands are reported back to
// the user. The loop exits on scanner EOF or when the user types "exit" or
// "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an account
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - whoami         — show the authenticated user
//	  - profile        — edit the authenticated user's profile
//	  - passwd         — change the password
//	  - cals | (l)ist  — list calendars
//	  - addcal         — create a calendar
//	  - clonecal       — clone a calendar
//	  - rmcal          — delete a calendar
//	  - usecal         — select the active calendar
//	  - demo           — seed demo calendars (first run only)
//	  - log            — append an activity log entry
//	  - clearlogs      — clear the activity log
//	  - stats          — show the KPI comparison report
//	  - delacc         — delete the account and its data
//	  - logout         — log out
//	  - exit | quit    — leave the program
//
// Errors returned by command handlers are printed and the loop continues,
// so one failed command never tears down the session.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("rc> %s ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn("Available commands: whoami, profile, passwd, cals, addcal, clonecal, rmcal, usecal, demo, log, clearlogs, stats, delacc, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			err = a.Register(ctx)

		case "login":
			err = a.Login(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "whoami":
			err = a.WhoAmI(ctx)

		case "profile":
			err = a.Profile(ctx)

		case "passwd":
			err = a.ChangePassword(ctx)

		case "delacc":
			err = a.DeleteAccount(ctx)

		case "l", "list", "cals":
			err = a.ListCalendars(ctx)

		case "addcal":
			err = a.AddCalendar(ctx)

		case "clonecal":
			err = a.CloneCalendar(ctx)

		case "rmcal":
			err = a.DeleteCalendar(ctx)

		case "usecal":
			err = a.UseCalendar(ctx)

		case "demo":
			err = a.SeedDemo(ctx)

		case "log":
			err = a.AddLog(ctx)

		case "clearlogs":
			err = a.ClearLogs(ctx)

		case "stats":
			err = a.Stats(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
