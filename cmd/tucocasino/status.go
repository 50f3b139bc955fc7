package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type StatusCmd struct {
	Rounds int  `kong:"default='0',help='Rounds of history to measure RTP over (0 for the default window)'"`
	JSON   bool `kong:"help='Print jackpot status as JSON only'"`

	LogLevel string `kong:"help='Log level (debug|info|warn|error)'"`
}

func (c *StatusCmd) Run() error {
	ctx := context.Background()
	a, err := newApp(ctx, appOptions{logLevel: c.LogLevel})
	if err != nil {
		return err
	}
	defer a.Close()

	return c.write(ctx, os.Stdout, a)
}

func (c *StatusCmd) write(ctx context.Context, out io.Writer, a *app) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a.jackpots.Statuses()); err != nil {
		return err
	}
	if c.JSON {
		return nil
	}

	fmt.Fprintln(out)
	return writeHouseRTP(ctx, out, a, c.Rounds)
}
