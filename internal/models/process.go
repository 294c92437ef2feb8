package models

import (
	"os"
	"os/user"
	"path/filepath"
	"sync"
)

// ProcessInfo describes the process that produced the log events.
type ProcessInfo struct {
	MachineName string
	UserName    string
	Domain      string
}

var (
	processOnce sync.Once
	process     ProcessInfo
)

// CurrentProcess returns the host name, OS user and executable name of the
// running process. Values are looked up once.
func CurrentProcess() ProcessInfo {
	processOnce.Do(func() {
		if host, err := os.Hostname(); err == nil {
			process.MachineName = host
		}
		if u, err := user.Current(); err == nil {
			process.UserName = u.Username
		}
		if len(os.Args) > 0 {
			process.Domain = filepath.Base(os.Args[0])
		}
	})
	return process
}
