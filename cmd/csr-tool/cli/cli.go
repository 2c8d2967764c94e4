package cli

import (
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/ctl"
	"github.com/effective-security/xcsr/cryptoprov"
	"github.com/effective-security/xcsr/x/print"
	"github.com/effective-security/xlog"
	"github.com/spf13/afero"
	"golang.org/x/net/context"

	// register key engines
	_ "github.com/effective-security/xcsr/cryptoprov/awskmscrypto"
	_ "github.com/effective-security/xcsr/cryptoprov/inmemcrypto"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xcsr", "cli")

// Cli provides CLI context to run commands
type Cli struct {
	Version  ctl.VersionFlag `name:"version" help:"Print version information and quit" hidden:""`
	Cfg      string          `help:"Location of key engine config file, the in-memory engine is used if not set" type:"path"`
	Debug    bool            `short:"D" help:"Enable debug mode"`
	LogLevel string          `short:"l" help:"Set the logging level (debug|info|warn|error)" default:"error"`

	// Stdin is the source to read from, typically set to os.Stdin
	stdin io.Reader
	// Output is the destination for all output from the command, typically set to os.Stdout
	output io.Writer
	// ErrOutput is the destinaton for errors.
	// If not set, errors will be written to os.StdError
	errOutput io.Writer

	ctx    context.Context
	fs     afero.Fs
	engine cryptoprov.KeyEngine
}

// Context for requests
func (c *Cli) Context() context.Context {
	if c.ctx == nil {
		c.ctx = context.Background()
	}
	return c.ctx
}

// Reader is the source to read from, typically set to os.Stdin
func (c *Cli) Reader() io.Reader {
	if c.stdin != nil {
		return c.stdin
	}
	return os.Stdin
}

// WithReader allows to specify a custom reader
func (c *Cli) WithReader(reader io.Reader) *Cli {
	c.stdin = reader
	return c
}

// Writer returns a writer for control output
func (c *Cli) Writer() io.Writer {
	if c.output != nil {
		return c.output
	}
	return os.Stdout
}

// WithWriter allows to specify a custom writer
func (c *Cli) WithWriter(out io.Writer) *Cli {
	c.output = out
	return c
}

// ErrWriter returns a writer for control output
func (c *Cli) ErrWriter() io.Writer {
	if c.errOutput != nil {
		return c.errOutput
	}
	return os.Stderr
}

// WithErrWriter allows to specify a custom error writer
func (c *Cli) WithErrWriter(out io.Writer) *Cli {
	c.errOutput = out
	return c
}

// FS returns the file system for input and output files
func (c *Cli) FS() afero.Fs {
	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}
	return c.fs
}

// WithFS allows to specify a custom file system
func (c *Cli) WithFS(fs afero.Fs) *Cli {
	c.fs = fs
	return c
}

// WithKeyEngine allows to specify a custom key engine
func (c *Cli) WithKeyEngine(engine cryptoprov.KeyEngine) *Cli {
	c.engine = engine
	return c
}

// AfterApply hook sets the log level
func (c *Cli) AfterApply(_ *kong.Kong, _ kong.Vars) error {
	if c.Debug {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		val := strings.TrimLeft(c.LogLevel, "=")
		l, err := xlog.ParseLevel(strings.ToUpper(val))
		if err != nil {
			return errors.WithStack(err)
		}
		xlog.SetGlobalLogLevel(l)
	}

	return nil
}

// WriteJSON prints response to out
func (c *Cli) WriteJSON(value any) {
	print.JSON(c.Writer(), value)
}

// ReadFile reads from stdin if the file is "-"
func (c *Cli) ReadFile(filename string) ([]byte, error) {
	if filename == "" {
		return nil, errors.New("empty file name")
	}
	if filename == "-" {
		return io.ReadAll(c.Reader())
	}
	return afero.ReadFile(c.FS(), filename)
}

// KeyEngine loads the key engine specified by --cfg
func (c *Cli) KeyEngine() (cryptoprov.KeyEngine, error) {
	if c.engine != nil {
		return c.engine, nil
	}

	engine, err := cryptoprov.LoadEngine(c.FS(), c.Cfg)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to initialize key engine")
	}
	logger.KV(xlog.DEBUG, "manufacturer", engine.Manufacturer(), "model", engine.Model())

	c.engine = engine
	return c.engine, nil
}
