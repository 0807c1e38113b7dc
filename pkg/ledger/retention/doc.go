// Package retention prunes old ledger entries on a cron schedule.
package retention
