// Package procutil has helpers for the child processes compiler backends
// launch.
package procutil

import (
	"errors"
	"os"
	"os/exec"
	"strings"
)

// EnvVar is the name of an environment variable.
type EnvVar string

func LookupBoolEnv(name EnvVar, defaultValue bool) bool {
	if val, ok := os.LookupEnv(string(name)); ok {
		switch strings.ToLower(val) {
		case "true", "1":
			return true
		case "false", "0":
			return false
		}
	}
	return defaultValue
}

func LookupEnv(name EnvVar) (string, bool) {
	return os.LookupEnv(string(name))
}

// LookupFileEnv returns the value of name if it is set and names a regular
// file.
func LookupFileEnv(name EnvVar) (string, bool) {
	val, ok := LookupEnv(name)
	if !ok || val == "" {
		return "", false
	}
	if info, err := os.Stat(val); err != nil || info.IsDir() {
		return "", false
	}
	return val, true
}

// ExitCode returns the exit code of a finished command given the error
// returned by Run or Wait: 0 on success, the process exit code when it ran,
// and -1 when it never started.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
