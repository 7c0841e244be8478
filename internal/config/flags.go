package config

import (
	"flag"
	"io"
)

const (
	DefaultModel = "gpt4"
	DefaultAddr  = "localhost:8080"
)

// Flags holds the command line options shared by every subcommand.
type Flags struct {
	Dev      bool
	LogPath  string
	Model    string
	Voice    string
	Out      string
	Addr     string
	Internet bool

	// Args are the positional arguments left after flag parsing.
	Args []string
}

// ParseFlags parses args for the subcommand name.
func ParseFlags(name string, args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.BoolVar(&f.Dev, "dev", false, "Development mode")
	fs.StringVar(&f.LogPath, "logPath", "", "Path to save the log file")
	fs.StringVar(&f.Model, "model", DefaultModel, "Model to query")
	fs.StringVar(&f.Voice, "voice", "", "Voice id for spoken replies")
	fs.StringVar(&f.Out, "out", "", "Output file for audio (.wav or .flac)")
	fs.StringVar(&f.Addr, "addr", DefaultAddr, "Relay server listen address")
	fs.BoolVar(&f.Internet, "internet", false, "Allow the model to use internet access")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	f.Args = fs.Args()
	return f, nil
}
