package config

import "os"

func IsDebug() bool {
	return os.Getenv("WARDEN_DEBUG") == "1"
}
