package main

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core/user"
)

func (cli *commandLine) export(ctx context.Context, out string, p user.Principal) error {
	c, s, err := cli.openCalendar(ctx, p)
	if err != nil {
		return err
	}
	defer s.End()

	var w io.Writer = cli.out
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return errors.Wrap(err, "creating export file")
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	return c.Export(w, cli.conf.AppName)
}
