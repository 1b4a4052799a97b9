package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/crossingstv/sales-report/commands"
)

var cli = []commands.Command{
	&commands.VersionCmd,
	&commands.RunCmd,
	&commands.DownloadCmd,
	&commands.UploadCmd,
}

var options = commands.Options{
	Config: commands.DEFAULT_CONFIG,
	Debug:  false,
}

func main() {
	flag.StringVar(&options.Config, "config", options.Config, "Path to the configuration file")
	flag.BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")
	flag.Parse()

	cmd, err := parse(flag.Args())
	if err != nil {
		fmt.Printf("\nError parsing command line: %v\n\n", err)
		os.Exit(1)
	}

	if cmd == nil {
		usage()
		os.Exit(1)
	}

	if err := cmd.Execute(&options); err != nil {
		fmt.Fprintf(os.Stderr, "\n   *** ERROR: %v\n\n", err)
		os.Exit(1)
	}
}

func parse(args []string) (commands.Command, error) {
	if len(args) == 0 {
		return nil, nil
	}

	if args[0] == "help" {
		help(args[1:])
		os.Exit(0)
	}

	for _, cmd := range cli {
		if cmd.Name() == args[0] {
			flagset := cmd.FlagSet()
			if flagset == nil {
				panic(fmt.Sprintf("'%s' command implementation does not provide a flagset", args[0]))
			}

			if err := flagset.Parse(args[1:]); err != nil {
				return nil, err
			}

			return cmd, nil
		}
	}

	return nil, fmt.Errorf("unknown command '%s'", args[0])
}

func help(args []string) {
	if len(args) > 0 {
		for _, cmd := range cli {
			if cmd.Name() == args[0] {
				cmd.Help()
				return
			}
		}

		fmt.Printf("\nUnknown command '%s'\n", args[0])
	}

	usage()
}

func usage() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] <command> [options]\n", commands.APP)
	fmt.Println()
	fmt.Println("  Commands:")

	for _, cmd := range cli {
		fmt.Printf("    %-10s %s\n", cmd.Name(), cmd.Description())
	}

	fmt.Println()
	fmt.Printf("  Use '%s help <command>' for command specific information\n", commands.APP)
	fmt.Println()
}
