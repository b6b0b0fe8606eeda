package process

import (
	"os"

	"github.com/mitchellh/go-ps"
)

// Lister enumerates running processes.
type Lister func() ([]ps.Process, error)

// IsRunning reports whether a process other than this one runs an executable named name.
// A nil lister uses the live process table.
func IsRunning(list Lister, name string) (bool, error) {
	if list == nil {
		list = ps.Processes
	}

	processList, err := list()
	if err != nil {
		return false, err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() == name {
			return true, nil
		}
	}

	return false, nil
}
