package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

var errHelp = errors.New("help requested")

type options struct {
	envFile         string
	logLevel        string
	skipCommandSync bool
	issueOpsToken   string
}

func parseFlags(args []string) (options, error) {
	var opts options

	flagSet := pflag.NewFlagSet("ticketbot", pflag.ContinueOnError)
	flagSet.StringVar(&opts.envFile, "env-file", "", "dotenv file to load before reading the environment (default: .env)")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	flagSet.BoolVar(&opts.skipCommandSync, "skip-command-sync", false, "do not overwrite the guild's slash commands on READY")
	flagSet.StringVar(&opts.issueOpsToken, "issue-ops-token", "", "print an ops API token for this operator and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return opts, errHelp
		}
		return opts, err
	}
	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprintf(os.Stderr, "Usage: ticketbot [flags]\n\n%s", flagSet.FlagUsages())
		return opts, errHelp
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", rest)
	}
	return opts, nil
}
