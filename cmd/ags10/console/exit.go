package console

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// Process exit codes.
const (
	// ExitFailure: the adapter or the sensor failed.
	ExitFailure = 1
	// ExitUsage: bad flags, arguments or config file.
	ExitUsage = 2
)

func Exit(code int, msg string, args ...interface{}) cli.ExitCoder {
	return cli.Exit(fmt.Sprintf(msg, args...), code)
}

// Fail reports a device side error.
func Fail(what string, err error) cli.ExitCoder {
	return Exit(ExitFailure, "%s: %s", what, Red(err))
}

// Usage reports an invalid invocation.
func Usage(err error) cli.ExitCoder {
	return Exit(ExitUsage, "%s", Red(err))
}
