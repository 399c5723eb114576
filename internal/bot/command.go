package bot

import (
	"strings"

	"multazim/internal/tracker"
)

// CommandKind enumerates the closed set of inbound commands. Free-text menu
// labels and callback payloads are resolved to one of these before the core
// is invoked.
type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandStart
	CommandStatus
	CommandWeek
	CommandMark
)

// Command is a resolved inbound event. Task is set only for CommandMark.
type Command struct {
	Kind CommandKind
	Task tracker.TaskID
}

// resolveText maps a plain message to a command using the active menu
// labels. Unrecognized text resolves to CommandNone and is ignored.
func resolveText(texts *Texts, msg string) Command {
	switch strings.TrimSpace(msg) {
	case "/start":
		return Command{Kind: CommandStart}
	case "/today", texts.TodayMenuLabel:
		return Command{Kind: CommandStatus}
	case "/week", texts.WeekMenuLabel:
		return Command{Kind: CommandWeek}
	}
	return Command{Kind: CommandNone}
}

// resolveCallback maps inline-keyboard callback data (a task id) to a mark
// command. The task id is passed through as-is; the core validates it
// against the closed set.
func resolveCallback(data string) Command {
	return Command{Kind: CommandMark, Task: tracker.TaskID(strings.TrimSpace(data))}
}
