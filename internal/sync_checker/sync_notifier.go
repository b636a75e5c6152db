package sync_checker

//counterfeiter:generate -o ./fakes/ . SyncNotifierInterface
type SyncNotifierInterface interface {
	Notify(result CheckResult) error
}
