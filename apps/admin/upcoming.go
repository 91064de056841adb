package main

import (
	"context"
	"fmt"
	"text/tabwriter"
)

// upcoming prints the events dated from today up to days later.
func (cli *commandLine) upcoming(ctx context.Context, days int) error {
	evs, err := cli.svc.ListUpcoming(ctx, cli.svc.Today(), days)
	if err != nil {
		return err
	}
	if len(evs) == 0 {
		fmt.Fprintln(cli.out, "no upcoming events")
		return nil
	}
	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	for _, ev := range evs {
		fmt.Fprintf(tw, "%s\t%s-%s\t%s\t%s\n", ev.Date, ev.StartTime, ev.EndTime, ev.Type, ev.Title)
	}
	return tw.Flush()
}
