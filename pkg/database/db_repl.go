package database

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"keyedkit/pkg/keyed"
	"keyedkit/pkg/rbtree"
	"keyedkit/pkg/record"
	"keyedkit/pkg/repl"
)

// ordered is implemented by the tree-backed containers.
type ordered interface {
	Min() rbtree.Iterator
	Max() rbtree.Iterator
}

// command adapts a handler to the REPL's command signature.
func command(db *Database, handler func(*Database, []string) (string, error)) repl.ReplCommand {
	return func(payload string, _ *repl.REPLConfig) (string, error) {
		return handler(db, strings.Fields(payload))
	}
}

// databaseCommands lists every catalog command with its help string.
var databaseCommands = []struct {
	trigger string
	handler func(*Database, []string) (string, error)
	help    string
}{
	{"create", HandleCreate, "Create a container. usage: create <hash|tree> <set|table> <name> [djb2|xxhash|murmur]"},
	{"insert", HandleInsert, "Insert or overwrite an element. usage: insert <key> [value] into <name>"},
	{"find", HandleFind, "Find an element. usage: find <key> from <name>"},
	{"erase", HandleErase, "Erase an element. usage: erase <key> from <name>"},
	{"count", HandleCount, "Count all elements, or one key. usage: count [<key> from] <name>"},
	{"clear", HandleClear, "Remove every element. usage: clear <name>"},
	{"select", HandleSelect, "Select elements from a container. usage: select from <name>"},
	{"min", HandleMin, "Print the smallest element of a tree container. usage: min <name>"},
	{"max", HandleMax, "Print the largest element of a tree container. usage: max <name>"},
	{"verify", HandleVerify, "Check a container's structural invariants. usage: verify <name>"},
	{"pretty", HandlePretty, "Print out the internal data representation. usage: pretty <name>"},
	{"drop", HandleDrop, "Destroy a container. usage: drop <name>"},
	{"list", HandleList, "List every container. usage: list"},
}

// Creates a REPL of container commands over the given catalog.
// Panics if a trigger is reserved by the REPL.
func DatabaseRepl(db *Database) *repl.REPL {
	r := repl.NewRepl()
	for _, c := range databaseCommands {
		if err := r.AddCommand(c.trigger, command(db, c.handler), c.help); err != nil {
			panic(err)
		}
	}
	return r
}

func parseKey(field string) ([]byte, error) {
	n, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return nil, err
	}
	return record.Encode(record.Int64, n), nil
}

// formatEntry renders an entry as "(key, value)", or "key" for sets.
func formatEntry(c keyed.Container, key, value []byte) string {
	if c.Layout().IsSet() {
		return strconv.FormatInt(record.Int64.Get(key), 10)
	}
	return fmt.Sprintf("(%d, %d)", record.Int64.Get(key), record.Int64.Get(value))
}

// Handle create.
func HandleCreate(d *Database, fields []string) (output string, err error) {
	// Usage: create <hash|tree> <set|table> <name> [hasher]
	if len(fields) != 4 && len(fields) != 5 {
		return "", fmt.Errorf("usage: create <hash|tree> <set|table> <name> [djb2|xxhash|murmur]")
	}
	kind, err := keyed.ParseKind(fields[1], fields[2])
	if err != nil {
		return "", fmt.Errorf("create error: %v", err)
	}
	hasherName := ""
	if len(fields) == 5 {
		hasherName = fields[4]
	}
	if _, err = d.CreateContainer(fields[3], kind, hasherName); err != nil {
		return "", fmt.Errorf("create error: %v", err)
	}
	return fmt.Sprintf("%s %s created.", kind, fields[3]), nil
}

// Handle insert.
func HandleInsert(d *Database, fields []string) (output string, err error) {
	// Usage: insert <key> [value] into <name>
	if (len(fields) != 4 && len(fields) != 5) || fields[len(fields)-2] != "into" {
		return "", fmt.Errorf("usage: insert <key> [value] into <name>")
	}
	c, err := d.GetContainer(fields[len(fields)-1])
	if err != nil {
		return "", fmt.Errorf("insert error: %v", err)
	}
	isSet := c.Layout().IsSet()
	if isSet != (len(fields) == 4) {
		if isSet {
			return "", fmt.Errorf("insert error: %s takes no value", c.Name())
		}
		return "", fmt.Errorf("insert error: %s needs a value", c.Name())
	}
	key, err := parseKey(fields[1])
	if err != nil {
		return "", fmt.Errorf("insert error: %v", err)
	}
	var value []byte
	if !isSet {
		if value, err = parseKey(fields[2]); err != nil {
			return "", fmt.Errorf("insert error: %v", err)
		}
	}
	if !c.Insert(key, value) {
		return fmt.Sprintf("updated key %s.", fields[1]), nil
	}
	return "", nil
}

// Handle find.
func HandleFind(d *Database, fields []string) (output string, err error) {
	// Usage: find <key> from <name>
	if len(fields) != 4 || fields[2] != "from" {
		return "", fmt.Errorf("usage: find <key> from <name>")
	}
	key, err := parseKey(fields[1])
	if err != nil {
		return "", fmt.Errorf("find error: %v", err)
	}
	c, err := d.GetContainer(fields[3])
	if err != nil {
		return "", fmt.Errorf("find error: %v", err)
	}
	value, found := c.Find(key)
	if !found {
		return "", fmt.Errorf("find error: %v", ErrKeyNotFound)
	}
	return fmt.Sprintf("found entry: %s", formatEntry(c, key, value)), nil
}

// Handle erase.
func HandleErase(d *Database, fields []string) (output string, err error) {
	// Usage: erase <key> from <name>
	if len(fields) != 4 || fields[2] != "from" {
		return "", fmt.Errorf("usage: erase <key> from <name>")
	}
	key, err := parseKey(fields[1])
	if err != nil {
		return "", fmt.Errorf("erase error: %v", err)
	}
	c, err := d.GetContainer(fields[3])
	if err != nil {
		return "", fmt.Errorf("erase error: %v", err)
	}
	if !c.Erase(key) {
		return "", fmt.Errorf("erase error: %v", ErrKeyNotFound)
	}
	return "", nil
}

// Handle count.
func HandleCount(d *Database, fields []string) (output string, err error) {
	// Usage: count <name> | count <key> from <name>
	switch {
	case len(fields) == 2:
		c, err := d.GetContainer(fields[1])
		if err != nil {
			return "", fmt.Errorf("count error: %v", err)
		}
		return strconv.Itoa(c.Size()), nil
	case len(fields) == 4 && fields[2] == "from":
		key, err := parseKey(fields[1])
		if err != nil {
			return "", fmt.Errorf("count error: %v", err)
		}
		c, err := d.GetContainer(fields[3])
		if err != nil {
			return "", fmt.Errorf("count error: %v", err)
		}
		return strconv.Itoa(c.Count(key)), nil
	default:
		return "", fmt.Errorf("usage: count [<key> from] <name>")
	}
}

// Handle clear.
func HandleClear(d *Database, fields []string) (output string, err error) {
	// Usage: clear <name>
	if len(fields) != 2 {
		return "", fmt.Errorf("usage: clear <name>")
	}
	c, err := d.GetContainer(fields[1])
	if err != nil {
		return "", fmt.Errorf("clear error: %v", err)
	}
	c.Clear()
	return "", nil
}

// Handle select.
func HandleSelect(d *Database, fields []string) (output string, err error) {
	// Usage: select from <name>
	if len(fields) != 3 || fields[1] != "from" {
		return "", fmt.Errorf("usage: select from <name>")
	}
	c, err := d.GetContainer(fields[2])
	if err != nil {
		return "", fmt.Errorf("select error: %v", err)
	}
	w := new(strings.Builder)
	printResults(c, c.Select(), w)
	return w.String(), nil
}

// Handle min.
func HandleMin(d *Database, fields []string) (output string, err error) {
	return handleExtreme(d, fields, "min", ordered.Min)
}

// Handle max.
func HandleMax(d *Database, fields []string) (output string, err error) {
	return handleExtreme(d, fields, "max", ordered.Max)
}

func handleExtreme(d *Database, fields []string, trigger string, end func(ordered) rbtree.Iterator) (string, error) {
	// Usage: min <name> | max <name>
	if len(fields) != 2 {
		return "", fmt.Errorf("usage: %s <name>", trigger)
	}
	c, err := d.GetContainer(fields[1])
	if err != nil {
		return "", fmt.Errorf("%s error: %v", trigger, err)
	}
	tree, ok := c.(ordered)
	if !ok {
		return "", fmt.Errorf("%s error: %v: %s is a %s", trigger, ErrNotOrdered, c.Name(), c.Kind())
	}
	it := end(tree)
	if !it.Valid() {
		return "", fmt.Errorf("%s error: %s is empty", trigger, c.Name())
	}
	return formatEntry(c, it.Key(), it.Value()), nil
}

// Handle verify.
func HandleVerify(d *Database, fields []string) (output string, err error) {
	// Usage: verify <name>
	if len(fields) != 2 {
		return "", fmt.Errorf("usage: verify <name>")
	}
	c, err := d.GetContainer(fields[1])
	if err != nil {
		return "", fmt.Errorf("verify error: %v", err)
	}
	if err := c.Verify(); err != nil {
		return "", fmt.Errorf("verify error: %v", err)
	}
	return fmt.Sprintf("%s ok: %d elements.", c.Name(), c.Size()), nil
}

// Handle pretty printing.
func HandlePretty(d *Database, fields []string) (output string, err error) {
	// Usage: pretty <name>
	if len(fields) != 2 {
		return "", fmt.Errorf("usage: pretty <name>")
	}
	c, err := d.GetContainer(fields[1])
	if err != nil {
		return "", fmt.Errorf("pretty error: %v", err)
	}
	w := new(strings.Builder)
	c.Print(w)
	return w.String(), nil
}

// Handle drop.
func HandleDrop(d *Database, fields []string) (output string, err error) {
	// Usage: drop <name>
	if len(fields) != 2 {
		return "", fmt.Errorf("usage: drop <name>")
	}
	if err := d.DropContainer(fields[1]); err != nil {
		return "", fmt.Errorf("drop error: %v", err)
	}
	return fmt.Sprintf("%s dropped.", fields[1]), nil
}

// Handle list.
func HandleList(d *Database, fields []string) (output string, err error) {
	if len(fields) != 1 {
		return "", fmt.Errorf("usage: list")
	}
	w := new(strings.Builder)
	for _, name := range d.Names() {
		c := d.containers[name]
		fmt.Fprintf(w, "%s: %s, %d elements\n", name, c.Kind(), c.Size())
	}
	return w.String(), nil
}

// printResults prints all given entries in a standard format.
func printResults(c keyed.Container, entries []record.Entry, w io.Writer) {
	for _, entry := range entries {
		io.WriteString(w, formatEntry(c, entry.Key, entry.Value)+"\n")
	}
}
