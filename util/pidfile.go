package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	ps "github.com/mitchellh/go-ps"
)

// ClaimPidFile writes this process' pid to pathToFile unless the file
// names another process that is still running. A pid file left behind
// by a dead process is overwritten.
func ClaimPidFile(pathToFile string) error {
	if IsRunningInOtherProcess(pathToFile) {
		return fmt.Errorf("another worker (pid %d) owns pid file %s",
			ReadPidFile(pathToFile), pathToFile)
	}
	return WritePidFile(pathToFile)
}

// IsRunningInOtherProcess returns true if the pid file at pathToFile
// contains the pid of some other live process.
func IsRunningInOtherProcess(pathToFile string) bool {
	if !FileExists(pathToFile) {
		return false
	}
	pid := ReadPidFile(pathToFile)
	return pid != 0 && pid != os.Getpid() && ProcessIsRunning(pid)
}

// ReadPidFile returns the pid from the specified file, or zero.
func ReadPidFile(pathToFile string) int {
	if data, err := os.ReadFile(pathToFile); err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
			return pid
		}
	}
	return 0
}

// WritePidFile writes this process' pid to the specified file.
func WritePidFile(pathToFile string) error {
	pidStr := strconv.Itoa(os.Getpid())
	return os.WriteFile(pathToFile, []byte(pidStr), 0664)
}

// DeletePidFile deletes the specified pid file, if it looks safe to
// delete and it belongs to this process.
func DeletePidFile(pathToFile string) error {
	if ReadPidFile(pathToFile) != os.Getpid() {
		return fmt.Errorf("pid file %s belongs to another process", pathToFile)
	}
	if LooksSafeToDelete(pathToFile, 12, 2) {
		return os.Remove(pathToFile)
	}
	return fmt.Errorf("pid file %s does not look safe to delete", pathToFile)
}

// AgeOfPidFile returns the time since the pid file was last modified.
func AgeOfPidFile(pathToFile string) (time.Duration, error) {
	fileStat, err := os.Stat(pathToFile)
	if err != nil {
		return time.Duration(0), err
	}
	return time.Since(fileStat.ModTime()), nil
}

// ProcessIsRunning returns true if the process with pid is running.
// This uses go-ps because os.FindProcess always returns a process on
// *nix, even when no process with that pid is running.
func ProcessIsRunning(pid int) bool {
	proc, _ := ps.FindProcess(pid)
	return proc != nil
}
