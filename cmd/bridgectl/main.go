package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/wxsbridge/internal/bridge"
	"github.com/danmuck/wxsbridge/internal/manifest"
	"github.com/danmuck/wxsbridge/internal/observability"
	"github.com/rs/zerolog"
)

type options struct {
	manifest  string
	component string
	path      string
	args      string
	list      bool
	validate  bool
	decode    bool
	template  string
	force     bool
}

func main() {
	logger := observability.InitLogger("bridgectl")
	os.Exit(run(os.Args[1:], os.Stdout, logger))
}

func run(argv []string, stdout io.Writer, logger zerolog.Logger) int {
	opts, err := parseFlags(argv)
	if err != nil {
		logger.Error().Err(err).Msg("invalid arguments")
		return 2
	}

	if opts.template != "" {
		if err := manifest.WriteTemplate(opts.template, opts.force); err != nil {
			logger.Error().Err(err).Msg("write template failed")
			return 1
		}
		logger.Info().Str("path", opts.template).Msg("manifest template written")
		return 0
	}

	if opts.decode {
		return decode(opts.path, stdout, logger)
	}

	m, err := manifest.Load(opts.manifest)
	if err != nil {
		logger.Error().Err(err).Msg("manifest load failed")
		return 1
	}
	logger.Debug().Str("path", opts.manifest).Int("components", len(m.Components)).Msg("loaded manifest")

	if opts.validate {
		return validate(m, stdout, logger)
	}

	c, ok := m.Component(opts.component)
	if !ok {
		logger.Error().Str("component", opts.component).Strs("known", m.Names()).Msg("unknown component")
		return 1
	}
	registrar := bridge.NewRegistrarWithLogger(logger)
	owner, bindErr := c.Bind(registrar)
	defer owner.Destroy()

	if opts.list {
		for _, name := range owner.BoundModules() {
			h, _ := owner.Module(name)
			fmt.Fprintf(stdout, "%s\t%s\t%s\n", name, h.Kind(), h.ModuleID())
		}
		if bindErr != nil {
			return 1
		}
		return 0
	}

	out, err := encode(owner, opts.path, opts.args)
	if err != nil {
		logger.Error().Err(err).Str("path", opts.path).Msg("encode failed")
		return 1
	}
	fmt.Fprintln(stdout, out)
	return 0
}

func parseFlags(argv []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("bridgectl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.manifest, "manifest", "modules.toml", "module manifest path")
	fs.StringVar(&opts.component, "component", "", "component name within the manifest")
	fs.StringVar(&opts.path, "path", "", "dotted module path, e.g. wxsA.foo.bar (or a wire string with -decode)")
	fs.StringVar(&opts.args, "args", "", "JSON array of call arguments; omit to encode a reference")
	fs.BoolVar(&opts.list, "list", false, "list modules bound for -component")
	fs.BoolVar(&opts.validate, "validate", false, "validate the manifest and bind every component")
	fs.BoolVar(&opts.decode, "decode", false, "decode the wire string given in -path")
	fs.StringVar(&opts.template, "template", "", "write a manifest template to this path")
	fs.BoolVar(&opts.force, "force", false, "overwrite an existing template")
	if err := fs.Parse(argv); err != nil {
		return options{}, err
	}
	switch {
	case opts.template != "", opts.validate:
	case opts.decode:
		if opts.path == "" {
			return options{}, errors.New("-decode requires -path")
		}
	case opts.component == "":
		return options{}, errors.New("-component is required")
	case !opts.list && opts.path == "":
		return options{}, errors.New("-path or -list is required")
	}
	return opts, nil
}

func encode(owner *bridge.Owner, path, rawArgs string) (string, error) {
	h, err := owner.Resolve(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	if strings.TrimSpace(rawArgs) == "" {
		return h.Serialize()
	}
	var args []any
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "", fmt.Errorf("parse args: %w", err)
	}
	return h.Call(args...)
}

func validate(m manifest.Manifest, stdout io.Writer, logger zerolog.Logger) int {
	registrar := bridge.NewRegistrarWithLogger(logger)
	status := 0
	for _, c := range m.Components {
		owner, err := c.Bind(registrar)
		bound := len(owner.BoundModules())
		owner.Destroy()
		if err != nil {
			status = 1
			fmt.Fprintf(stdout, "%s\towner=%d\tbound=%d\tFAIL\n", c.Name, c.OwnerID, bound)
			continue
		}
		fmt.Fprintf(stdout, "%s\towner=%d\tbound=%d\tok\n", c.Name, c.OwnerID, bound)
	}
	return status
}

func decode(s string, stdout io.Writer, logger zerolog.Logger) int {
	call, err := bridge.DecodeWireCall(s)
	if err != nil {
		logger.Error().Err(err).Msg("decode failed")
		return 1
	}
	form := "reference"
	if call.IsCall() {
		form = "call"
	}
	fmt.Fprintf(stdout, "form=%s owner=%d module=%s path=%s", form, call.OwnerID, call.ModuleID, call.Path)
	if call.IsCall() {
		b, err := json.Marshal(call.Args)
		if err != nil {
			logger.Error().Err(err).Msg("decode failed")
			return 1
		}
		fmt.Fprintf(stdout, " args=%s", b)
	}
	fmt.Fprintln(stdout)
	return 0
}
