package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
)

var _version = "dev"

// versionFlag lets --version short-circuit the rest of parsing, same as
// --help does.
type versionFlag string

func (versionFlag) Decode(*kong.DecodeContext) error { return nil }
func (versionFlag) IsBool() bool                     { return true }

func (versionFlag) BeforeApply(app *kong.Kong) error {
	fmt.Fprintln(app.Stdout, "branchdeck", _version)
	app.Exit(0)
	return nil
}

type versionCmd struct{}

func (*versionCmd) Run(context.Context) error {
	fmt.Println("branchdeck", _version)
	return nil
}
