package main

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"byteasm/pkg/asm"
	"byteasm/pkg/memmap"
)

const version = "0.3.0"

type options struct {
	output    string
	symfile   string
	whitelist string
	stdout    bool
	mapPath   string
	mapScale  int
	dump      bool
}

func main() {
	_ = flag.Set("logtostderr", "true")
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)

	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "byteasm: %v\n", err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "byteasm FILE",
		Short:         "Assemble a source file into a flat 64 KiB binary image",
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.dump {
				return dump(cmd, args[0])
			}
			return assemble(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "out.bin", "binary output `path`")
	f.StringVarP(&opts.symfile, "symfile", "s", "", "write the symbol table as JSON to `path`")
	f.StringVarP(&opts.whitelist, "whitelist", "w", "", "JSON array of allowed mnemonics")
	f.BoolVar(&opts.stdout, "stdout", false, "write the binary to stdout instead of a file")
	f.StringVar(&opts.mapPath, "map", "", "write a PNG memory map of the image to `path`")
	f.IntVar(&opts.mapScale, "map-scale", 2, "pixel scale of the memory map")
	f.BoolVar(&opts.dump, "dump", false, "print the parsed lines of FILE and exit")
	cmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	return cmd
}

// readSource returns the source named by arg; "-" is stdin.
func readSource(cmd *cobra.Command, arg string) (name, text string, err error) {
	if arg == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return "<stdin>", string(data), nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", "", &asm.NotAFileError{Path: arg}
		}
		return "", "", &asm.IOError{Path: arg, Err: err}
	}
	return arg, string(data), nil
}

func assemble(cmd *cobra.Command, arg string, opts options) error {
	name, source, err := readSource(cmd, arg)
	if err != nil {
		return err
	}

	var asmOpts asm.Options
	if opts.whitelist != "" {
		names, err := loadWhitelist(opts.whitelist)
		if err != nil {
			return err
		}
		asmOpts.Whitelist = names
	}

	prog, err := asm.Assemble(name, source, asmOpts)
	if err != nil {
		return err
	}
	glog.V(1).Infof("%s: %d bytes, %d symbols", name, len(prog.Binary), len(prog.Symbols))

	// Render everything before touching the filesystem.
	var syms bytes.Buffer
	if opts.symfile != "" {
		if err := prog.Symbols.Encode(&syms); err != nil {
			return err
		}
	}
	var png bytes.Buffer
	if opts.mapPath != "" {
		if opts.mapScale < 1 {
			return fmt.Errorf("invalid map scale %d", opts.mapScale)
		}
		if err := memmap.EncodePNG(&png, prog.Binary, opts.mapScale); err != nil {
			return err
		}
	}

	var artifacts []artifact
	if !opts.stdout {
		artifacts = append(artifacts, artifact{opts.output, prog.Binary})
	}
	if opts.symfile != "" {
		artifacts = append(artifacts, artifact{opts.symfile, syms.Bytes()})
	}
	if opts.mapPath != "" {
		artifacts = append(artifacts, artifact{opts.mapPath, png.Bytes()})
	}
	if err := writeArtifacts(artifacts); err != nil {
		return err
	}

	if opts.stdout {
		if _, err := cmd.OutOrStdout().Write(prog.Binary); err != nil {
			removeArtifacts(artifacts)
			return fmt.Errorf("write stdout: %w", err)
		}
	}
	return nil
}

type artifact struct {
	path string
	data []byte
}

// writeArtifacts writes every artifact or, on the first failure, removes the
// ones already written.
func writeArtifacts(list []artifact) error {
	for i, a := range list {
		if err := os.WriteFile(a.path, a.data, 0o644); err != nil {
			removeArtifacts(list[:i+1])
			return fmt.Errorf("write %s: %w", a.path, err)
		}
	}
	return nil
}

func removeArtifacts(list []artifact) {
	for _, a := range list {
		if err := os.Remove(a.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			glog.Warningf("remove %s: %v", a.path, err)
		}
	}
}

// dump parses FILE line by line without following includes and pretty-prints
// every line that carries a label or an instruction.
func dump(cmd *cobra.Command, arg string) error {
	name, source, err := readSource(cmd, arg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printer := pp.New()
	printer.SetOutput(out)
	printer.SetColoringEnabled(false)

	sc := bufio.NewScanner(strings.NewReader(source))
	num := 0
	for sc.Scan() {
		num++
		line, err := asm.ParseLine(sc.Text())
		if err != nil {
			var pe *asm.ParseError
			if errors.As(err, &pe) {
				pe.File = name
				pe.Line = num
			}
			return err
		}
		if line.Label == "" && line.Instruction == nil {
			continue
		}
		fmt.Fprintf(out, "%s:%d ", name, num)
		if _, err := printer.Println(line); err != nil {
			return err
		}
	}
	return sc.Err()
}
