package entities

import (
	"net/url"
	"strings"
	"time"
)

// Command is one subprocess invocation. Args are passed verbatim, never through a shell.
type Command struct {
	Name string
	Args []string
	Env  []string

	// Secrets are values masked wherever they appear in String.
	Secrets []string
}

// NewCommand builds a Command without extra environment.
func NewCommand(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// WithEnv returns a copy of the command with additional KEY=VALUE pairs.
func (it Command) WithEnv(env ...string) Command {
	merged := make([]string, 0, len(it.Env)+len(env))
	merged = append(merged, it.Env...)
	merged = append(merged, env...)
	it.Env = merged
	return it
}

// WithSecret returns a copy of the command that never prints values.
func (it Command) WithSecret(values ...string) Command {
	merged := make([]string, 0, len(it.Secrets)+len(values))
	merged = append(merged, it.Secrets...)
	for _, value := range values {
		if value != "" {
			merged = append(merged, value)
		}
	}
	it.Secrets = merged
	return it
}

// String renders the command line with credentials removed from any URL
// argument and every secret replaced by ***.
func (it Command) String() string {
	parts := make([]string, 0, len(it.Args)+1)
	parts = append(parts, it.Name)
	for _, arg := range it.Args {
		arg = redactCredentials(arg)
		for _, secret := range it.Secrets {
			arg = strings.ReplaceAll(arg, secret, redactedValue)
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

const redactedValue = "***"

func redactCredentials(arg string) string {
	if !strings.Contains(arg, "://") || !strings.Contains(arg, "@") {
		return arg
	}
	parsed, err := url.Parse(arg)
	if err != nil || parsed.User == nil {
		return arg
	}
	parsed.User = nil
	return strings.Replace(parsed.String(), "://", "://"+redactedValue+"@", 1)
}

// CommandResult is what a finished subprocess left behind.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Succeeded reports a zero exit code.
func (it CommandResult) Succeeded() bool {
	return it.ExitCode == 0
}

// Seconds converts a whole-second timeout from configuration.
func Seconds(value int) time.Duration {
	return time.Duration(value) * time.Second
}
