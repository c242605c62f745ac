// Command networkd is the privilege-separated daemon's entrypoint. Running
// it directly starts the supervisor; running it with NETWORKD_HELPER set in
// its environment instead runs one of the two helper loops the supervisor
// spawns over an inherited socketpair file descriptor.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nabbar/networkd/config"
	"github.com/nabbar/networkd/execsvc"
	"github.com/nabbar/networkd/logger"
	"github.com/nabbar/networkd/supervisor"
	"github.com/nabbar/networkd/version"
	"github.com/nabbar/networkd/writesvc"
)

// buildRelease and buildHash are overridden at link time via
// -ldflags "-X main.buildRelease=... -X main.buildHash=...".
var (
	buildRelease = "0.0.0-dev"
	buildHash    = ""
)

func main() {
	if kind := os.Getenv(supervisor.HelperEnvVar); kind != "" {
		if err := runHelper(kind); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func runHelper(kind string) error {
	ch := supervisor.HelperConn()
	ctx := context.Background()

	// The helper never parses os.Args or a config file itself — cobra/viper
	// only run in the supervisor process — so it waits for the supervisor
	// to hand off the one resolved configuration over this same channel.
	cfg, err := supervisor.RecvConfig(ch)
	if err != nil {
		return err
	}
	log := logger.New(config.LogLevelOrDefault(cfg))

	switch kind {
	case supervisor.HelperExec:
		return execsvc.New(cfg, log).Serve(ctx, ch)
	case supervisor.HelperWrite:
		return writesvc.New(cfg, log).Serve(ctx, ch)
	default:
		return fmt.Errorf("main: unknown helper kind %q", kind)
	}
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	showVersion := false

	cmd := &cobra.Command{
		Use:   "networkd",
		Short: "privilege-separated network interface control daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			ver := version.NewVersion(version.LicenseMIT, "networkd",
				"privilege-separated network interface control daemon",
				time.Now(), buildHash, buildRelease, "nabbar")

			if showVersion {
				fmt.Println(ver.GetHeader())
				return nil
			}

			return run(cmd, v, ver)
		},
	}

	cmd.Flags().BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := config.BindFlags(cmd, v); err != nil {
		panic(err)
	}

	return cmd
}

func run(cmd *cobra.Command, v *viper.Viper, ver version.Version) error {
	cfg, err := config.Load(v, config.ConfigFilePath(cmd))
	if err != nil {
		return err
	}

	log := logger.New(config.LogLevelOrDefault(cfg))
	log.Info("starting", logger.Fields{"version": ver.GetHeader(), "socket": cfg.SocketPath})
	config.WatchLogLevel(v, log)

	sup, err := supervisor.New(cfg, log)
	if err != nil {
		return err
	}

	return sup.Serve(context.Background())
}
