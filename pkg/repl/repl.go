// Package repl is a small line-oriented command loop. Commands register under
// a trigger word and receive the whole input line.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"keyedkit/pkg/config"

	"github.com/google/uuid"
)

type ReplCommand func(string, *REPLConfig) (output string, err error)

const (
	// Trigger for the help meta-command that prints out all help strings
	TriggerHelpMetacommand = ".help"

	// String that should be prepended to any error before being sent to the output writer
	ErrorPrependStr = "ERROR: "
)

var (
	// Returned by CombineRepls when two REPLs share a trigger
	ErrOverlappingCommands = errors.New("found overlapping commands")

	// Error for when a sent trigger is not associated with any known commands
	ErrCommandNotFound = errors.New("command not found")

	// Returned by AddCommand for the reserved help trigger
	ErrReservedTrigger = errors.New("trigger is reserved")
)

// REPL struct.
type REPL struct {
	commands map[string]ReplCommand
	help     map[string]string
}

// REPL Config struct.
type REPLConfig struct {
	clientId uuid.UUID
}

// GetAddr returns the id of the client driving the REPL.
func (replConfig *REPLConfig) GetAddr() uuid.UUID {
	return replConfig.clientId
}

// Construct an empty REPL.
func NewRepl() *REPL {
	return &REPL{
		commands: make(map[string]ReplCommand),
		help:     make(map[string]string),
	}
}

// CombineRepls merges the commands of every given REPL into a new one.
// Overlapping triggers are an error. No REPLs gives an empty REPL.
func CombineRepls(repls []*REPL) (*REPL, error) {
	combined := NewRepl()
	for _, r := range repls {
		for trigger, command := range r.commands {
			if _, exists := combined.commands[trigger]; exists {
				return nil, fmt.Errorf("%w: %s", ErrOverlappingCommands, trigger)
			}
			combined.commands[trigger] = command
			combined.help[trigger] = r.help[trigger]
		}
	}
	return combined, nil
}

// Get commands.
func (r *REPL) GetCommands() map[string]ReplCommand {
	return r.commands
}

// Get help.
func (r *REPL) GetHelp() map[string]string {
	return r.help
}

// AddCommand registers a command and its help string. A duplicate trigger
// overwrites the previous command.
func (r *REPL) AddCommand(trigger string, action ReplCommand, help string) error {
	if trigger == TriggerHelpMetacommand {
		return fmt.Errorf("%w: %s", ErrReservedTrigger, trigger)
	}
	r.commands[trigger] = action
	r.help[trigger] = help
	return nil
}

// HelpString returns every command's help string, one per line, sorted by trigger.
func (r *REPL) HelpString() string {
	triggers := make([]string, 0, len(r.help))
	for trigger := range r.help {
		triggers = append(triggers, trigger)
	}
	sort.Strings(triggers)
	var sb strings.Builder
	for _, trigger := range triggers {
		fmt.Fprintf(&sb, "%s: %s\n", trigger, r.help[trigger])
	}
	return sb.String()
}

// eval runs one input line and returns what should be written back.
// Blank lines produce no output.
func (r *REPL) eval(payload string, replConfig *REPLConfig) string {
	fields := strings.Fields(payload)
	if len(fields) == 0 {
		return ""
	}
	trigger := fields[0]
	if trigger == TriggerHelpMetacommand {
		return r.HelpString()
	}
	command, exists := r.commands[trigger]
	if !exists {
		return ErrorPrependStr + ErrCommandNotFound.Error() + "\n"
	}
	// The command receives the whole line, trigger included.
	result, err := command(payload, replConfig)
	if err != nil {
		return fmt.Sprintf("%s%s\n", ErrorPrependStr, err)
	}
	if len(result) != 0 && !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	return result
}

// Run writes the welcome string and then evaluates every line of input until
// EOF. input and output default to stdin and stdout.
func (r *REPL) Run(clientId uuid.UUID, prompt string, input io.Reader, output io.Writer) {
	if input == nil {
		input = os.Stdin
	}
	if output == nil {
		output = os.Stdout
	}

	scanner := bufio.NewScanner(input)
	replConfig := &REPLConfig{clientId: clientId}
	fmt.Fprintf(output, "Welcome to the %s REPL! Please type '%s' to see the list of available commands.\n",
		config.Name, TriggerHelpMetacommand)
	io.WriteString(output, prompt)
	for scanner.Scan() {
		io.WriteString(output, r.eval(scanner.Text(), replConfig))
		io.WriteString(output, prompt)
	}
	// Print an additional line if we encountered an EOF character.
	io.WriteString(output, "\n")
}

// RunChan evaluates lines received on c, echoing each before its result, until
// c is closed. output defaults to stdout.
func (r *REPL) RunChan(c <-chan string, clientId uuid.UUID, prompt string, output io.Writer) {
	if output == nil {
		output = os.Stdout
	}
	replConfig := &REPLConfig{clientId: clientId}
	io.WriteString(output, prompt)
	for payload := range c {
		// Emit the payload for debugging purposes.
		io.WriteString(output, payload+"\n")
		io.WriteString(output, r.eval(payload, replConfig))
		io.WriteString(output, prompt)
	}
	io.WriteString(output, "\n")
}
