package health

import "context"

// DBPinger checks record store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ChatChecker checks chat completion provider availability.
type ChatChecker interface {
	HealthCheck(ctx context.Context) error
}
