// Command check-postfix is a Nagios plugin reporting how many messages
// postfix sent, received, greylisted and rejected during a trailing window.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/postfix-stats/internal/adapters/check"
	"github.com/mikey/postfix-stats/internal/di"
	"go.uber.org/zap"
)

func main() {
	os.Exit(int(realMain()))
}

func realMain() check.Status {
	flags, err := di.ParseFlags(os.Args[0], os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return check.StatusUnknown
		}
		fmt.Printf("POSTFIX UNKNOWN - %v\n", err)
		return check.StatusUnknown
	}

	container, err := di.BuildCLIContainer(flags, os.Stdout)
	if err != nil {
		fmt.Printf("POSTFIX UNKNOWN - failed to build dependency container: %v\n", err)
		return check.StatusUnknown
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	status := check.StatusUnknown
	if err := container.Invoke(func(logger *zap.Logger, c *check.NagiosCheck) {
		defer logger.Sync()
		status = c.Run(ctx)
	}); err != nil {
		fmt.Printf("POSTFIX UNKNOWN - %v\n", err)
		return check.StatusUnknown
	}
	return status
}
