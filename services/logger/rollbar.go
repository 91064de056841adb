package logsvc

import (
	"context"
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/user"
)

type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// expected fmt: msg | error, map[string]interface{}, user.Principal
func (l RollbarLogger) prepare(msg string, args []interface{}) (rbArgs []interface{}, by *user.Principal) {
	rbArgs = make([]interface{}, 0, len(args)+1)
	rbArgs = append(rbArgs, msg)
	for _, arg := range args {
		// acting principal becomes the person of this report only; sessions log concurrently
		if p, ok := arg.(user.Principal); ok {
			if by == nil { // only set one Principal
				p := p
				by = &p
				person := &rollbar.Person{Id: p.ID, Username: p.Email, Email: p.Email}
				rbArgs = append(rbArgs, rollbar.NewPersonContext(context.Background(), person))
			}
		} else {
			rbArgs = append(rbArgs, arg)
		}
	}
	return rbArgs, by
}

func (l RollbarLogger) print(level, msg string, args []interface{}, by *user.Principal) {
	if by != nil {
		l.std.Printf("%s: %s [%s %s]\n", level, msg, by.Role, by.ID)
	} else {
		l.std.Printf("%s: %s\n", level, msg)
	}
	for _, arg := range args {
		if _, ok := arg.(user.Principal); ok {
			continue
		}
		l.std.Printf("%+v\n", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rbArgs, by := l.prepare(msg, args)
	rollbar.Debug(rbArgs...)
	l.print("DEBUG", msg, args, by)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rbArgs, by := l.prepare(msg, args)
	rollbar.Info(rbArgs...)
	l.print("INFO", msg, args, by)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rbArgs, by := l.prepare(msg, args)
	rollbar.Warning(rbArgs...)
	l.print("WARN", msg, args, by)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rbArgs, by := l.prepare(msg, args)
	rollbar.Error(rbArgs...)
	l.print("ERROR", msg, args, by)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rbArgs, by := l.prepare(msg, args)
	rollbar.Critical(rbArgs...)
	l.print("FATAL", msg, args, by)
	rollbar.Wait()
	l.std.Fatal(msg)
}
