package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/agenda/core/event"
	"github.com/trezcool/agenda/core/user"
)

// fixtures is the layout of an import file. Keys left out keep the form defaults
// (public, 09:00-10:00, type color, 15 minutes reminder):
//
//	events:
//	  - title: Algebra
//	    type: class
//	    date: 2025-08-11
//	    startTime: "09:00"
//	    endTime: "10:00"
type fixtures struct {
	Events []event.Patch `yaml:"events"`
}

func readFixtures(path string) ([]event.Patch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading fixtures")
	}
	var fx fixtures
	if err = yaml.Unmarshal(data, &fx); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	if len(fx.Events) == 0 {
		return nil, errNoEvents
	}
	return fx.Events, nil
}

// importEvents submits every entry of the file through a calendar form, as p.
// It stops at the first entry that fails.
func (cli *commandLine) importEvents(ctx context.Context, path string, p user.Principal) error {
	patches, err := readFixtures(path)
	if err != nil {
		return err
	}

	c, s, err := cli.openCalendar(ctx, p)
	if err != nil {
		return err
	}
	defer s.End()

	for i, patch := range patches {
		if _, err = c.StartCreate(); err != nil {
			return err
		}
		if _, err = c.EditForm(patch); err != nil {
			return err
		}
		ev, err := c.Submit(ctx)
		if err != nil {
			c.CancelForm()
			return errors.Wrapf(err, "event #%d (%q)", i+1, titleOf(patch))
		}
		fmt.Fprintf(cli.out, "created %s %s %s\n", ev.ID, ev.Date, ev.Title)
	}
	cli.logger.Info(fmt.Sprintf("imported %d events from %s", len(patches), path), p)
	return nil
}

func titleOf(p event.Patch) string {
	if p.Title == nil {
		return ""
	}
	return *p.Title
}
