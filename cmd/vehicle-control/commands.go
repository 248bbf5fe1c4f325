package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/remote-vehicle/vehicle-gateway/pkg/cli"
	"github.com/remote-vehicle/vehicle-gateway/pkg/proxy"
)

var (
	ErrCommandLineArgs = errors.New("invalid command line arguments")
	ErrRequiresAccount = errors.New("command requires account credentials")
	ErrUnknownCommand  = errors.New("unrecognized command")
)

type Argument struct {
	name string
	help string
}

// App holds what command handlers need. dispatcher is nil if no account is configured.
type App struct {
	config     *cli.Config
	dispatcher *proxy.Dispatcher
	out        io.Writer
}

type Handler func(ctx context.Context, app *App, args map[string]string) error

type Command struct {
	help            string
	requiresAccount bool // True if command signs in to the remote service
	args            []Argument
	optional        []Argument
	handler         Handler
}

var vidArgument = Argument{name: "VID", help: "Vehicle ID, as shown by the vehicles command"}

// dispatch returns a Handler that runs the named gateway command with the given parameters. Each
// entry in argParams maps a command-line argument name to a request parameter name.
func dispatch(command string, argParams map[string]string) Handler {
	return func(ctx context.Context, app *App, args map[string]string) error {
		params := proxy.RequestParameters{}
		for arg, param := range argParams {
			if value, ok := args[arg]; ok {
				params[param] = value
			}
		}
		if region, ok := args["REGION"]; ok {
			params["region"] = region
		}
		action, err := proxy.ExtractCommandAction(ctx, command, params, nil)
		if err != nil {
			return err
		}
		region, _ := params.Region()
		result, err := app.dispatcher.Execute(ctx, command, region, action)
		if err != nil {
			return err
		}
		return app.print(result)
	}
}

func (app *App) print(result interface{}) error {
	if text, ok := result.(string); ok {
		_, err := fmt.Fprintln(app.out, text)
		return err
	}
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(app.out, string(encoded))
	return err
}

func vehicleCommand(help, command string) *Command {
	return &Command{
		help:            help,
		requiresAccount: true,
		args:            []Argument{vidArgument},
		handler:         dispatch(command, map[string]string{"VID": "vid"}),
	}
}

func checkReadiness(commandName string, haveAccount bool) (*Command, error) {
	info, ok := commands[commandName]
	if !ok {
		return nil, ErrUnknownCommand
	}
	if info.requiresAccount && !haveAccount {
		return nil, ErrRequiresAccount
	}
	return info, nil
}

func execute(ctx context.Context, app *App, args []string) error {
	if len(args) == 0 {
		return errors.New("missing COMMAND")
	}

	info, err := checkReadiness(args[0], app.dispatcher != nil)
	if err != nil {
		return err
	}

	if len(args)-1 < len(info.args) || len(args)-1 > len(info.args)+len(info.optional) {
		writeErr("Invalid number of command line arguments: %d (%d required, %d optional).", len(args)-1, len(info.args), len(info.optional))
		err = ErrCommandLineArgs
	} else {
		keywords := make(map[string]string)
		for i, argInfo := range info.args {
			keywords[argInfo.name] = args[i+1]
		}
		index := len(info.args) + 1
		for _, argInfo := range info.optional {
			if index >= len(args) {
				break
			}
			keywords[argInfo.name] = args[index]
			index++
		}
		err = info.handler(ctx, app, keywords)
	}

	// Print command-specific help
	if errors.Is(err, ErrCommandLineArgs) {
		info.Usage(args[0])
	}
	return err
}

func (c *Command) Usage(name string) {
	fmt.Printf("Usage: %s", name)
	maxLength := 0
	for _, arg := range c.args {
		fmt.Printf(" %s", arg.name)
		if len(arg.name) > maxLength {
			maxLength = len(arg.name)
		}
	}
	if len(c.optional) > 0 {
		fmt.Printf(" [")
	}
	for _, arg := range c.optional {
		fmt.Printf(" %s", arg.name)
		if len(arg.name) > maxLength {
			maxLength = len(arg.name)
		}
	}
	if len(c.optional) > 0 {
		fmt.Printf(" ]")
	}
	fmt.Printf("\n%s\n", c.help)
	maxLength++
	for _, arg := range c.args {
		fmt.Printf("    %s:%s%s\n", arg.name, strings.Repeat(" ", maxLength-len(arg.name)), arg.help)
	}
	for _, arg := range c.optional {
		fmt.Printf("    %s:%s%s\n", arg.name, strings.Repeat(" ", maxLength-len(arg.name)), arg.help)
	}
}

func savePassword(ctx context.Context, app *App, args map[string]string) error {
	if app.config.KeyringName == "" {
		return fmt.Errorf("%w: set -keyring-name or $%s", cli.ErrNoKeyringEntry, cli.EnvKeyringName)
	}
	password := os.Getenv(cli.EnvPassword)
	if password == "" {
		var err error
		if password, err = cli.PromptPassword("Account password"); err != nil {
			return err
		}
	}
	if password == "" {
		return cli.ErrNoPassword
	}
	if err := app.config.SavePassword(password); err != nil {
		return err
	}
	_, err := fmt.Fprintf(app.out, "Saved password for keyring entry '%s'\n", app.config.KeyringName)
	return err
}

var commands = map[string]*Command{
	"vehicles": &Command{
		help:            "List vehicles on the account",
		requiresAccount: true,
		optional: []Argument{
			Argument{name: "REGION", help: "Region to list; defaults to the configured region"},
		},
		handler: dispatch(proxy.CommandGetVehicles, nil),
	},
	"status": &Command{
		help:            "Fetch vehicle status",
		requiresAccount: true,
		args:            []Argument{vidArgument},
		handler:         dispatch(proxy.CommandGetStatus, map[string]string{"VID": "vid"}),
	},
	"check-doors":  vehicleCommand("Check that doors and windows are closed, then lock the vehicle", proxy.CommandCheckDoors),
	"lock":         vehicleCommand("Lock vehicle", proxy.CommandLockDoors),
	"unlock":       vehicleCommand("Unlock vehicle", proxy.CommandUnlockDoors),
	"engine-start": vehicleCommand("Start the engine remotely", proxy.CommandStartEngine),
	"engine-stop":  vehicleCommand("Stop an engine that was started remotely", proxy.CommandStopEngine),
	"hazards-on":   vehicleCommand("Turn on hazard lights", proxy.CommandHazardLightsOn),
	"hazards-off":  vehicleCommand("Turn off hazard lights", proxy.CommandHazardLightsOff),
	"send-poi": &Command{
		help:            "Send a destination to the vehicle's navigation system",
		requiresAccount: true,
		args: []Argument{
			vidArgument,
			Argument{name: "LAT", help: "Latitude in degrees"},
			Argument{name: "LON", help: "Longitude in degrees"},
			Argument{name: "NAME", help: "Name shown on the vehicle's display"},
		},
		handler: dispatch(proxy.CommandSendPOI, map[string]string{
			"VID":  "vid",
			"LAT":  "latitude",
			"LON":  "longitude",
			"NAME": "name",
		}),
	},
	"send-poi-url": &Command{
		help:            "Send the place in an Apple Maps or Google Maps link to the vehicle's navigation system",
		requiresAccount: true,
		args: []Argument{
			vidArgument,
			Argument{name: "URL", help: "Link shared from a maps application"},
		},
		handler: dispatch(proxy.CommandSendPOIFromURL, map[string]string{
			"VID": "vid",
			"URL": "url",
		}),
	},
	"save-password": &Command{
		help:            "Save the account password ($PASSWORD, or prompt) in the system keyring",
		requiresAccount: false,
		handler:         savePassword,
	},
}
