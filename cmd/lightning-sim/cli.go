// Package main is the command-line entrypoint for the Lightning mesh
// simulator, laid out the way the teacher repo's cmd/drand-cli/cli.go
// structures its own CLI: a package-level banner, flag variables, and an
// appCommands slice handed to a urfave/cli App.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/urfave/cli/v2"

	"github.com/johannesneyer/lightning/common/log"
	"github.com/johannesneyer/lightning/config"
	"github.com/johannesneyer/lightning/sim"
)

var output io.Writer = os.Stdout

// Automatically set through -ldflags, as in the teacher's cmd binaries.
var (
	version   = "dev"
	gitCommit = "none"
	buildDate = "unknown"
)

func banner() {
	fmt.Fprintf(output, "lightning-sim %v (date %v, commit %v)\n", version, buildDate, gitCommit)
}

var scenarioFlag = &cli.StringFlag{
	Name:    "scenario",
	Aliases: []string{"s"},
	Usage:   "run a built-in scenario by name: s1, s2, s3 or s4",
}

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "run the scenario described by the given TOML file",
}

var verboseFlag = &cli.BoolFlag{
	Name:  "verbose",
	Usage: "log every event at debug level instead of info",
}

var eventLogFlag = &cli.StringFlag{
	Name:  "event-log",
	Usage: "write the run's structured event log (spec §6) to the given file",
}

var appCommands = []*cli.Command{
	{
		Name:  "run",
		Usage: "run a simulation and print the uplinked data and a run summary",
		Flags: []cli.Flag{scenarioFlag, configFlag, verboseFlag, eventLogFlag},
		Action: func(c *cli.Context) error {
			banner()
			return runCmd(c)
		},
	},
	{
		Name:  "list-scenarios",
		Usage: "list the built-in scenario names",
		Action: func(c *cli.Context) error {
			for _, s := range sim.Scenarios {
				fmt.Fprintln(output, s)
			}
			return nil
		},
	},
}

func loadConfig(c *cli.Context) (sim.Config, error) {
	scenarioName := c.String(scenarioFlag.Name)
	configPath := c.String(configFlag.Name)

	switch {
	case scenarioName != "" && configPath != "":
		return sim.Config{}, fmt.Errorf("specify only one of --%s or --%s", scenarioFlag.Name, configFlag.Name)

	case scenarioName != "":
		cfg, ok := sim.ScenarioByName(sim.Scenario(strings.ToLower(scenarioName)))
		if !ok {
			return sim.Config{}, fmt.Errorf("unknown scenario %q, see list-scenarios", scenarioName)
		}
		return cfg, nil

	case configPath != "":
		s, err := config.Load(configPath)
		if err != nil {
			return sim.Config{}, err
		}
		if err := s.Validate(); err != nil {
			return sim.Config{}, err
		}
		return s.ToSimConfig(), nil

	default:
		return sim.Config{}, fmt.Errorf("specify --%s or --%s", scenarioFlag.Name, configFlag.Name)
	}
}

func runCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	l := log.DefaultLogger()
	if c.Bool(verboseFlag.Name) {
		l = log.New(nil, log.DebugLevel, false).Named("lightning-sim")
	}
	cfg.Logger = l

	if path := c.String(eventLogFlag.Name); path != "" {
		fd, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("opening event log: %w", err)
		}
		defer fd.Close()
		cfg.EventLog = fd
	}

	s, err := sim.NewSimulator(cfg)
	if err != nil {
		return fmt.Errorf("building simulator: %w", err)
	}

	data, err := s.Run()
	if err != nil {
		return fmt.Errorf("run %s: %w", s.RunID, err)
	}

	seen := map[uint32]bool{}
	for _, d := range data {
		fmt.Fprintf(output, "source=%d payload=%d\n", d.Source, d.Payload)
		seen[uint32(d.Source)] = true
	}

	m := s.Metrics()
	fmt.Fprintf(output, "\nrun %s: %d nodes reported, %d batches, %d collisions, %d corrupted receptions, %d dropped packets, %d joins\n",
		s.RunID, len(seen),
		int(testutil.ToFloat64(m.UplinkedBatches)),
		int(testutil.ToFloat64(m.Collisions)),
		int(testutil.ToFloat64(m.CorruptedReceptions)),
		int(testutil.ToFloat64(m.DroppedPackets)),
		int(testutil.ToFloat64(m.Joins)),
	)
	return nil
}

// CLI builds the lightning-sim app.
func CLI() *cli.App {
	app := cli.NewApp()
	app.Name = "lightning-sim"
	app.Usage = "discrete-event simulator for the Lightning mesh data-collection protocol"
	app.Version = version
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintf(output, "lightning-sim %v (date %v, commit %v)\n", version, buildDate, gitCommit)
	}
	app.Commands = appCommands
	return app
}
