package cmd

import "time"

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	RedisURL   string

	// AssignmentTTL is how long a broadcast offer stays open before the
	// expiry sweep withdraws it.
	AssignmentTTL time.Duration

	// DispatchRetryCron is the schedule of the pending-order re-broadcast
	// sweep, a cron expression with a seconds field.
	DispatchRetryCron string

	// ServiceRadiusKm limits the broadcast set to couriers within this
	// distance of the order. Zero disables the radius filter.
	ServiceRadiusKm float64
}
