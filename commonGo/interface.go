package commonGo

import "time"

// FileLoggingHandler will handle log file rotation and closing
type FileLoggingHandler interface {
	ChangeFileLifeSpan(newDuration time.Duration, newSizeInMB uint64) error
	Close() error
	IsInterfaceNil() bool
}
