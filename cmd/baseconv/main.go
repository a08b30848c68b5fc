// Command baseconv converts numbers between bases 2 and 36 from the command line.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/coachpo/baseconv/internal/app/converter"
	"github.com/coachpo/baseconv/internal/cli"
	"github.com/coachpo/baseconv/internal/infra/config"
)

const loggerPrefix = "baseconv "

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := cli.NewFlagSet("baseconv")
	fs.SetOutput(stderr)
	opt, err := cli.ParseArgs(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "baseconv: %v\n", err)
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.New(stderr, loggerPrefix, log.LstdFlags|log.Lmicroseconds)

	appCfg, _, err := config.LoadOrDefault(ctx, opt.ConfigPath)
	if err != nil {
		logger.Printf("load config: %v", err)
		return 1
	}
	appCfg = config.ApplyEnv(appCfg)

	store, err := config.NewStore(appCfg, nil)
	if err != nil {
		logger.Printf("initialise config store: %v", err)
		return 1
	}
	svc, err := converter.NewService(store,
		converter.WithLogger(log.New(io.Discard, "", 0)),
		converter.WithNotices(logger),
		converter.WithSurface(converter.SurfaceCLI))
	if err != nil {
		logger.Printf("initialise converter: %v", err)
		return 1
	}

	if err := cli.NewRunner(svc, stdin, stdout, stderr).Run(ctx, opt); err != nil {
		if !errors.Is(err, cli.ErrConversionsFailed) {
			logger.Printf("%v", err)
		}
		return 1
	}
	return 0
}
