package models

import "strings"

// CommandType enumerates supported chat command categories.
type CommandType string

const (
	CommandIn      CommandType = "in"
	CommandOut     CommandType = "out"
	CommandStock   CommandType = "stock"
	CommandUnknown CommandType = "unknown"
)

// Command represents a parsed instruction extracted from WhatsApp text.
// Args keep the sender's casing so item names are stored as typed.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text messages.
func ParseCommand(message string) Command {
	tokens := strings.Fields(message)
	cmd := Command{Raw: message}

	if len(tokens) == 0 {
		cmd.Type = CommandUnknown
		return cmd
	}

	head := strings.TrimPrefix(strings.ToLower(tokens[0]), "/")
	switch head {
	case string(CommandIn), "masuk":
		cmd.Type = CommandIn
	case string(CommandOut), "keluar":
		cmd.Type = CommandOut
	case string(CommandStock), "stok":
		cmd.Type = CommandStock
	default:
		cmd.Type = CommandUnknown
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
