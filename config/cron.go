package config

import "strings"

// CronSchedule returns CRON_<NAME> when set, otherwise def.
func CronSchedule(name, def string) string {
	return GetEnv("CRON_"+strings.ToUpper(name), def)
}
