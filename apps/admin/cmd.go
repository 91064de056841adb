package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/agenda"
	"github.com/trezcool/agenda/core/event"
	"github.com/trezcool/agenda/core/user"
)

var (
	errHelp     = errors.New("help provided")
	errNoDB     = errors.New("migrate needs the postgres storage backend")
	errNoEvents = errors.New("no events in file")
)

type commandLine struct {
	conf   *core.Config
	logger core.Logger
	db     *sql.DB // nil unless the postgres backend is configured
	svc    event.ServiceInterface
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS...] - run a database migration command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  import -file FILE -as ID [-email EMAIL] [-role ROLE] - create the events listed in a YAML file")
	fmt.Fprintln(cli.out, "  export [-out FILE] [-as ID] [-role ROLE] - write the calendar as iCalendar")
	fmt.Fprintln(cli.out, "  upcoming [-days N] - list the events of the coming days")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	importCmd := flag.NewFlagSet("import", flag.ContinueOnError)
	importFile := importCmd.String("file", "", "The YAML file listing the events.")
	importAs := importCmd.String("as", "", "The id of the user the events are created by.")
	importEmail := importCmd.String("email", "", "The email of that user.")
	importRole := importCmd.String("role", user.RoleAdmin, "The role of that user.")

	exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
	exportOut := exportCmd.String("out", "", "The .ics file to write. Defaults to stdout.")
	exportAs := exportCmd.String("as", "admin", "The id of the user the calendar is exported for.")
	exportRole := exportCmd.String("role", user.RoleAdmin, "The role of that user.")

	upcomingCmd := flag.NewFlagSet("upcoming", flag.ContinueOnError)
	upcomingDays := upcomingCmd.Int("days", cli.conf.Calendar.UpcomingDays, "How many days ahead to look.")

	for _, fs := range []*flag.FlagSet{importCmd, exportCmd, upcomingCmd} {
		fs.SetOutput(cli.out)
	}

	ctx := context.Background()

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" || *importAs == "" {
			importCmd.Usage()
			return errHelp
		}
		p, err := user.NewPrincipal(*importAs, *importEmail, *importRole)
		if err != nil {
			return err
		}
		return cli.importEvents(ctx, *importFile, p)

	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		p, err := user.NewPrincipal(*exportAs, "", *exportRole)
		if err != nil {
			return err
		}
		return cli.export(ctx, *exportOut, p)

	case "upcoming":
		if err := upcomingCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.upcoming(ctx, *upcomingDays)

	default:
		cli.printUsage()
		return errHelp
	}
}

// openCalendar starts a session for p and loads its calendar.
func (cli *commandLine) openCalendar(ctx context.Context, p user.Principal) (*agenda.Controller, *user.Session, error) {
	s, err := user.StartSession(p)
	if err != nil {
		return nil, nil, err
	}
	c, err := agenda.NewController(s, cli.svc, cli.logger, agenda.NewOptions(cli.conf))
	if err != nil {
		s.End()
		return nil, nil, err
	}
	if err = c.Refresh(ctx); err != nil {
		s.End()
		return nil, nil, err
	}
	return c, s, nil
}
