package tui

import "strings"

// Command is a parsed ':' command line.
type Command struct {
	Name string
	Args string
}

var commandAliases = map[string]string{
	"q":      "quit",
	"h":      "help",
	"s":      "search",
	"c":      "chat",
	"f":      "filter",
	"r":      "refresh",
	"chats":  "chat",
	"reload": "refresh",
}

// ParseCommand parses input without its leading ':'. Aliases resolve to
// their full command name.
func ParseCommand(input string) Command {
	name, args, _ := strings.Cut(strings.TrimSpace(input), " ")
	name = strings.ToLower(name)
	if full, ok := commandAliases[name]; ok {
		name = full
	}
	return Command{Name: name, Args: strings.TrimSpace(args)}
}
