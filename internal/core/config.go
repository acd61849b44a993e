package core

import "time"

type AppConfig interface {
	GetRuntimePath() string
	GetDatabasePath() string
	GetStore() string
	GetDailyCron() string
	Location() *time.Location
}

// AccessConfig is the static allow-list.
type AccessConfig interface {
	IsPrivileged(userID int64) bool
}

type ReportConfig interface {
	GetReportTo() int64
}
