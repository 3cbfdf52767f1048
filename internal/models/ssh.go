package models

// CommandResult holds the raw output of one CLI command.
type CommandResult struct {
	Command string
	Output  string
	Error   error
}

// PingResult holds the result of the reachability probe.
type PingResult struct {
	Reachable   bool
	PacketsRecv int
	Error       error
}
