package sync_checker

import (
	"fmt"
	"io"
)

// StdOutSyncNotifier prints the status line for the monitoring system.
type StdOutSyncNotifier struct {
	Out io.Writer
}

func (s StdOutSyncNotifier) Notify(result CheckResult) error {
	_, err := fmt.Fprintln(s.Out, result.Message())
	return err
}
