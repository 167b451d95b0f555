// Command blockfs runs the interactive file system simulator shell.
package main

import (
	"bufio"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:        "blockfs",
		Description: "an interactive shell for the emulated block file system",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "properties",
				Usage: "YAML properties file to preload with `in properties <file>` before the shell starts",
			},
		},
		Action: func(ctx *cli.Context) error {
			sh := NewShell(bufio.NewScanner(os.Stdin), os.Stdout)
			if path := ctx.String("properties"); path != "" {
				sh.loadProperties(path)
			}
			sh.Run()
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
