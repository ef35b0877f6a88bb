package main

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/born-ml/tensorcore/internal/config"
	"github.com/born-ml/tensorcore/internal/engine"
)

// env is the state shared by every command of one run.
type env struct {
	in     io.Reader
	out    io.Writer
	log    *logrus.Logger
	cfg    config.Config
	engine *engine.Engine
}

func newApp(in io.Reader, out, errOut io.Writer) *cli.App {
	e := &env{in: in, out: out, log: logrus.New()}
	e.log.SetOutput(errOut)
	e.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	app := cli.NewApp()
	app.Name = "tensorcore"
	app.Usage = "Inspect and exercise tensorcore compute backends"
	app.Version = version
	app.Writer = out
	app.ErrWriter = errOut
	app.UseShortOptionHandling = true

	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config,c", Usage: "YAML configuration file", EnvVar: config.EnvConfig},
		cli.StringFlag{Name: "device,d", Usage: "Preferred device family (cuda, webgpu, metal, cpu)"},
		cli.StringFlag{Name: "log-level", Usage: "Log level (debug, info, warn, error)"},
	}

	app.Commands = []cli.Command{
		{
			Name:  "version",
			Usage: "Show version",
			Action: func(c *cli.Context) error {
				return e.printVersion()
			},
		},
		{
			Name:  "devices",
			Usage: "List device families and their availability",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "noTable", Usage: "Render pure text instead of table"},
			},
			Action: func(c *cli.Context) error {
				return e.listDevices(c.Bool("noTable"))
			},
		},
		{
			Name:  "verify",
			Usage: "Run a fixed workload on every available backend and compare with the CPU reference",
			Flags: []cli.Flag{
				cli.Float64Flag{Name: "tol", Value: 1e-3, Usage: "Absolute tolerance per element"},
			},
			Action: func(c *cli.Context) error {
				return e.verify(float32(c.Float64("tol")))
			},
		},
		{
			Name:      "encode",
			Usage:     "Read JSON tensors {\"shape\":[...],\"data\":[...]} from stdin and write the encoding to stdout",
			ArgsUsage: " ",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "format,f", Value: formatBinary, Usage: "binary or msgpack"},
			},
			Action: func(c *cli.Context) error {
				return e.encode(c.String("format"))
			},
		},
		{
			Name:      "decode",
			Usage:     "Read encoded tensors from stdin and write JSON to stdout",
			ArgsUsage: " ",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "format,f", Value: formatBinary, Usage: "binary or msgpack"},
			},
			Action: func(c *cli.Context) error {
				return e.decode(c.String("format"))
			},
		},
	}

	app.Before = func(c *cli.Context) error {
		return e.setup(c.GlobalString("config"), c.GlobalString("device"), c.GlobalString("log-level"))
	}
	app.After = func(c *cli.Context) error {
		if e.engine != nil {
			e.engine.Close()
		}
		return nil
	}
	return app
}

// setup resolves the configuration and builds the engine. Flags override
// the file and the environment.
func (e *env) setup(path, dev, level string) error {
	var (
		cfg config.Config
		err error
	)
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return err
	}
	if dev != "" {
		cfg.Device = dev
	}
	if level != "" {
		cfg.LogLevel = level
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid flags")
	}

	e.cfg = cfg
	e.log.SetLevel(cfg.Level())
	e.engine = engine.New(cfg, engine.WithLogger(e.log.WithField("component", "engine")))
	e.log.WithField("device", cfg.Device).Debug("engine configured")
	return nil
}

func (e *env) printVersion() error {
	_, err := io.WriteString(e.out, "tensorcore "+version+"\n")
	return err
}
