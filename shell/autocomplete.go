package shell

import (
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"autoplay": {
		Options: []string{"-file", "-seeds", "-threads"},
		Args:    []string{"stop"},
	},
	"export": {
		Args: []string{"yaml"},
	},
	"help": {
		Args: []string{"click", "autoplay", "solve"},
	},
}

var commandNames = []string{
	"new", "show", "click", "cancel", "options", "solve", "hint", "play",
	"load", "export", "key", "autoplay", "stats", "help", "exit",
}

// slotCompletions offers the slots that are options right now, so tab
// after `click` cycles through legal selections.
func (c *ShellCompleter) slotCompletions() []string {
	if c.sc == nil || c.sc.game == nil {
		return nil
	}
	var slots []string
	for _, o := range c.sc.game.Options() {
		slots = append(slots, o.String())
	}
	return slots
}

// Do implements the readline.AutoComplete interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		switch {
		case lastCompleteField == "-threads":
			for i := 1; i <= 8; i *= 2 {
				completions = append(completions, strconv.Itoa(i))
			}
		case cmdName == "click" || cmdName == "s":
			completions = c.slotCompletions()
		default:
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
