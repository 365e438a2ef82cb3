// Package retention removes old violations from audit storage, either on
// demand or on a cron schedule.
package retention
