// stegano hides text in the least-significant bits of an image.
//
// Usage:
//
//	stegano embed <source-image> <message> <output-path> [--delimiter BITS] [--truncate] [--quality N]
//	stegano extract <image> [--delimiter BITS]
//	stegano capacity <image> [--delimiter BITS]
//	stegano diff <cover> <stego>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	stegano "github.com/yyyoichi/stegano_lsb"
	"github.com/yyyoichi/stegano_lsb/internal/quality"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// command is a subcommand with its positional arguments and flags.
type command struct {
	name  string
	args  []string
	flags func(fs *pflag.FlagSet)
	run   func(ctx context.Context, env *env, args []string) error
}

// env is what a command runs with after flags and config are resolved.
type env struct {
	cfg    *Config
	logger *zap.Logger
	stdout io.Writer
}

var commands = []command{
	{
		name: "embed",
		args: []string{"source-image", "message", "output-path"},
		flags: func(fs *pflag.FlagSet) {
			delimiterFlag(fs)
			fs.Bool("truncate", false, "drop message bits that do not fit instead of failing")
			fs.Int("quality", 100, "JPEG quality from 1 to 100 when the output is JPG/JPEG")
		},
		run: runEmbed,
	},
	{
		name:  "extract",
		args:  []string{"image"},
		flags: delimiterFlag,
		run:   runExtract,
	},
	{
		name:  "capacity",
		args:  []string{"image"},
		flags: delimiterFlag,
		run:   runCapacity,
	},
	{
		name: "diff",
		args: []string{"cover", "stego"},
		run:  runDiff,
	},
}

func delimiterFlag(fs *pflag.FlagSet) {
	fs.String("delimiter", stegano.DefaultDelimiter, "bit pattern that ends the message")
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return exitUsage
	}

	switch args[0] {
	case "help", "-h", "--help":
		printUsage(stdout)
		return exitOK
	}
	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.exec(ctx, args[1:], stdout, stderr)
		}
	}
	fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
	printUsage(stderr)
	return exitUsage
}

func (c command) exec(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet(c.name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file (YAML, JSON or TOML)")
	fs.String("log-level", "warn", "log level: debug, info, warn or error")
	fs.String("log-format", "console", "log format: console or json")
	if c.flags != nil {
		c.flags(fs)
	}
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: stegano %s%s [flags]\n", c.name, c.argsUsage())
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fs.Usage()
		return exitUsage
	}
	if fs.NArg() != len(c.args) {
		fmt.Fprintf(stderr, "%s expects %d argument(s), got %d\n", c.name, len(c.args), fs.NArg())
		fs.Usage()
		return exitUsage
	}

	cfg, err := LoadConfig(*configPath, fs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	logger, err := NewLogger(cfg.Log, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	defer func() { _ = logger.Sync() }()

	if err := c.run(ctx, &env{cfg: cfg, logger: logger, stdout: stdout}, fs.Args()); err != nil {
		logger.Debug("command failed", zap.String("command", c.name), zap.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

func (c command) argsUsage() string {
	var s string
	for _, a := range c.args {
		s += " <" + a + ">"
	}
	return s
}

func runEmbed(ctx context.Context, e *env, args []string) error {
	opts, err := e.cfg.Options(e.logger)
	if err != nil {
		return err
	}
	src, message, out := args[0], args[1], args[2]
	if err := stegano.EmbedFile(ctx, src, message, out, opts...); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Message encoded and image saved as %s\n", out)
	return nil
}

func runExtract(ctx context.Context, e *env, args []string) error {
	opts, err := e.cfg.Options(e.logger)
	if err != nil {
		return err
	}
	message, err := stegano.ExtractFile(ctx, args[0], opts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Extracted message: %s\n", message)
	return nil
}

func runCapacity(ctx context.Context, e *env, args []string) error {
	if err := stegano.ValidateDelimiter(e.cfg.Delimiter); err != nil {
		return err
	}
	img, err := stegano.Open(args[0])
	if err != nil {
		return err
	}
	b := img.Bounds()
	fmt.Fprintf(e.stdout, "Image: %dx%d\n", b.Dx(), b.Dy())
	fmt.Fprintf(e.stdout, "Capacity: %d bits\n", stegano.Capacity(img))
	fmt.Fprintf(e.stdout, "Max message length: %d characters\n", stegano.MaxMessageLen(img, e.cfg.Delimiter))
	return nil
}

func runDiff(ctx context.Context, e *env, args []string) error {
	cover, err := stegano.Open(args[0])
	if err != nil {
		return err
	}
	stego, err := stegano.Open(args[1])
	if err != nil {
		return err
	}
	r, err := quality.Compare(cover, stego)
	if err != nil {
		return err
	}
	total := r.Width * r.Height * len(r.MSE)
	fmt.Fprintf(e.stdout, "Image: %dx%d\n", r.Width, r.Height)
	fmt.Fprintf(e.stdout, "Changed channels: %d of %d\n", r.ChangedChannels, total)
	fmt.Fprintf(e.stdout, "MSE: %.6f (R %.6f, G %.6f, B %.6f)\n", r.MSETotal, r.MSE[0], r.MSE[1], r.MSE[2])
	if math.IsInf(r.PSNR, 1) {
		fmt.Fprintln(e.stdout, "PSNR: +Inf dB")
	} else {
		fmt.Fprintf(e.stdout, "PSNR: %.2f dB\n", r.PSNR)
	}
	fmt.Fprintf(e.stdout, "SSIM: %.6f\n", r.SSIM)
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `stegano hides text in the least-significant bits of an image.

Usage:
  stegano embed <source-image> <message> <output-path> [--delimiter BITS] [--truncate] [--quality N]
  stegano extract <image> [--delimiter BITS]
  stegano capacity <image> [--delimiter BITS]
  stegano diff <cover> <stego>

Global flags:
  --config FILE        config file (YAML, JSON or TOML)
  --log-level LEVEL    debug, info, warn or error (default warn)
  --log-format FORMAT  console or json (default console)

Output formats are chosen by extension: PNG, BMP, JPG or JPEG.
Environment variables STEGANO_DELIMITER, STEGANO_TRUNCATE, STEGANO_JPEG_QUALITY
and STEGANO_LOG_LEVEL override the config file.
`)
}
