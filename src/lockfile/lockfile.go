/*
Copyright (c) YugabyteDB, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package lockfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/nightlyone/lockfile"
	log "github.com/sirupsen/logrus"

	"github.com/yugabyte/dump-anonymizer/src/utils"
)

// Lockfile guards a directory against concurrent dump-anonymizer runs.
// The file holds the PID of the owning process.
type Lockfile struct {
	fpath    string
	cmdPID   int
	lockfile lockfile.Lockfile
	locked   bool
}

func NewLockfile(fpath string) *Lockfile {
	return &Lockfile{fpath: fpath, cmdPID: -1}
}

func (l *Lockfile) Path() string {
	return l.fpath
}

func (l *Lockfile) GetCmdPID() (int, error) {
	if l.cmdPID != -1 {
		return l.cmdPID, nil
	}

	bytes, err := os.ReadFile(l.fpath)
	if err != nil {
		return -1, fmt.Errorf("failed to read lockfile %q: %w", l.fpath, err)
	}
	l.cmdPID, err = strconv.Atoi(strings.Trim(string(bytes), " \n"))
	if err != nil {
		return -1, fmt.Errorf("failed to parse PID from lockfile %q: %w", l.fpath, err)
	}
	return l.cmdPID, nil
}

func (l *Lockfile) IsPIDActive() bool {
	pid, err := l.GetCmdPID()
	if err != nil {
		return false
	}

	proc, _ := os.FindProcess(pid) // Always succeeds on Unix systems

	// Signal(0) fails only if the process is not running
	err = proc.Signal(syscall.Signal(0))
	if err != nil {
		log.Infof("process %d is not active", pid)
		return false
	}
	log.Infof("process %d is active", pid)
	return true
}

func (l *Lockfile) Lock() {
	var err error
	l.lockfile, err = lockfile.New(l.fpath)
	if err != nil {
		utils.ErrExit("Failed to create lockfile %q: %v\n", l.fpath, err)
	}

	err = l.lockfile.TryLock()
	if err == nil {
		l.locked = true
		l.cmdPID = os.Getpid()
		return
	} else if err == lockfile.ErrBusy {
		pid, _ := l.GetCmdPID()
		if l.IsPIDActive() {
			utils.ErrExit("Another instance of dump-anonymizer (pid %d) is writing to %q", pid, l.fpath)
		}
		utils.ErrExit("Lockfile %q is held by pid %d, which is not running. Remove the lockfile and retry.", l.fpath, pid)
	} else {
		utils.ErrExit("Unable to lock %q: %v\n", l.fpath, err)
	}
}

func (l *Lockfile) IsLocked() bool {
	return l.locked
}

// Unlock releases the lock if this process holds it.
func (l *Lockfile) Unlock() {
	if !l.locked {
		return
	}
	err := l.lockfile.Unlock()
	if err != nil {
		utils.ErrExit("Unable to unlock %q: %v\n", l.lockfile, err)
	}
	l.locked = false
	l.cmdPID = -1
}
