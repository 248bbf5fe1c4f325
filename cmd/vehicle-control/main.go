package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/remote-vehicle/vehicle-gateway/internal/log"
	"github.com/remote-vehicle/vehicle-gateway/pkg/cli"
	"github.com/remote-vehicle/vehicle-gateway/pkg/protocol"
	"github.com/remote-vehicle/vehicle-gateway/pkg/proxy"
)

func writeErr(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprintf(os.Stderr, "\n")
}

const usage = `
 * Vehicle commands require an account username and password ($USERNAME and $PASSWORD, or a
   password saved with save-password and selected with -keyring-name).
 * With no COMMAND, commands are read interactively from standard input.`

func Usage() {
	fmt.Printf("Usage: %s [OPTION...] COMMAND [ARG...]\n", os.Args[0])
	fmt.Printf("\nRun %s help COMMAND for more information. Valid COMMANDs are listed below.", os.Args[0])
	fmt.Println("")
	fmt.Println(usage)
	fmt.Println("")

	fmt.Printf("Available OPTIONs:\n")
	flag.PrintDefaults()
	fmt.Println("")
	fmt.Printf("Available COMMANDs:\n")
	maxLength := 0
	var labels []string
	for command := range commands {
		labels = append(labels, command)
		if len(command) > maxLength {
			maxLength = len(command)
		}
	}
	sort.Strings(labels)
	for _, command := range labels {
		info := commands[command]
		fmt.Printf("  %s%s %s\n", command, strings.Repeat(" ", maxLength-len(command)), info.help)
	}
}

func runCommand(app *App, args []string, timeout time.Duration) int {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := execute(ctx, app, args); err != nil {
		if protocol.MayHaveSucceeded(err) {
			writeErr("Couldn't verify success: %s", err)
		} else if errors.Is(err, ErrRequiresAccount) {
			writeErr("You must provide account credentials with $%s and $%s (or -keyring-name) to execute this command", cli.EnvUsername, cli.EnvPassword)
		} else {
			writeErr("Failed to execute command: %s", err)
		}
		return 1
	}
	return 0
}

func runInteractiveShell(app *App, in io.Reader, timeout time.Duration) int {
	scanner := bufio.NewScanner(in)
	for fmt.Printf("> "); scanner.Scan(); fmt.Printf("> ") {
		args, err := shlex.Split(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			return 0
		}
		if err != nil {
			writeErr("Invalid command: %s", err)
			continue
		}
		runCommand(app, args, timeout)
	}
	if err := scanner.Err(); err != nil {
		writeErr("Error reading command: %s", err)
		return 1
	}
	return 0
}

func main() {
	status := 1
	defer func() {
		os.Exit(status)
	}()

	var (
		debug          bool
		commandTimeout time.Duration
	)
	config, err := cli.NewConfig(cli.FlagAll)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load credential configuration: %s\n", err)
		os.Exit(1)
	}
	flag.Usage = Usage
	flag.BoolVar(&debug, "debug", false, "Enable verbose debugging messages")
	flag.DurationVar(&commandTimeout, "command-timeout", proxy.DefaultTimeout, "Set timeout for commands sent to the vehicle.")

	config.RegisterCommandLineFlags()
	flag.Parse()
	if err := config.LoadDotEnv(); err != nil {
		writeErr("Error: %s", err)
		return
	}
	if !debug {
		if debugEnv, ok := os.LookupEnv("VEHICLE_VERBOSE"); ok {
			debug = debugEnv != "" && debugEnv != "false" && debugEnv != "0"
		}
	}
	if debug {
		log.SetLevel(log.LevelDebug)
	}
	config.ReadFromEnvironment()

	args := flag.Args()
	requiresAccount := true
	if len(args) > 0 {
		if args[0] == "help" {
			if len(args) == 1 {
				Usage()
				return
			}
			info, ok := commands[args[1]]
			if !ok {
				writeErr("Unrecognized command: %s", args[1])
				return
			}
			info.Usage(args[1])
			status = 0
			return
		}
		info, ok := commands[args[0]]
		if !ok {
			writeErr("Unrecognized command: %s", args[0])
			return
		}
		requiresAccount = info.requiresAccount
	}

	app := &App{config: config, out: os.Stdout}
	if requiresAccount {
		acct, err := config.Account()
		if err != nil {
			writeErr("Error loading credentials: %s", err)
			return
		}
		app.dispatcher = proxy.NewDispatcher(acct, config.Dialer())
		app.dispatcher.Timeout = commandTimeout
	}

	if flag.NArg() > 0 {
		status = runCommand(app, flag.Args(), commandTimeout)
	} else {
		status = runInteractiveShell(app, os.Stdin, commandTimeout)
	}
}
