package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kbukum/huddle/bootstrap"
	"github.com/kbukum/huddle/config"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	configFile := fs.String("config", "", "path to config.yml")
	envFile := fs.String("env", "", "path to .env")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}

	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return err
	}
	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}
	if _, err := setup(app); err != nil {
		return err
	}
	return app.Run(ctx)
}
