// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration inspection and editing.
package cli

import (
	"fmt"

	"github.com/jeranaias/doctalk-tui/internal/config"
)

// RunConfig handles `doctalk config <subcommand>`.
func (a *App) RunConfig(args *Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "show":
		return a.configShow(args)
	case "get":
		return a.configGet(parser)
	case "set":
		return a.configSet(parser)
	case "path":
		path, err := config.Path()
		if err != nil {
			return err
		}
		fmt.Fprintln(a.Out, path)
		return nil
	default:
		return fmt.Errorf("unknown config subcommand %q; try show, get, set, path", parser.Subcommand())
	}
}

func (a *App) configShow(args *Args) error {
	if args.JSON {
		return a.printJSON(a.Cfg)
	}

	fmt.Fprintln(a.Out, titleStyle.Render("Configuration"))
	for _, key := range config.Keys() {
		value, err := a.Cfg.Get(key)
		if err != nil {
			continue
		}
		if value == "" {
			value = dimStyle.Render("(unset)")
		} else {
			value = valueStyle.Render(value)
		}
		fmt.Fprintf(a.Out, "  %-28s %s\n", key, value)
	}
	return nil
}

func (a *App) configGet(parser *ArgParser) error {
	key := parser.Positional(1)
	if key == "" {
		return fmt.Errorf("usage: doctalk config get <key>")
	}
	value, err := a.Cfg.Get(key)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, value)
	return nil
}

func (a *App) configSet(parser *ArgParser) error {
	key := parser.Positional(1)
	value := parser.Positional(2)
	if key == "" || value == "" {
		return fmt.Errorf("usage: doctalk config set <key> <value>")
	}
	if err := a.Cfg.Set(key, value); err != nil {
		return err
	}
	if err := a.Cfg.Save(); err != nil {
		return err
	}
	fmt.Fprintln(a.Out, successStyle.Render(key+" = "+value))
	return nil
}
