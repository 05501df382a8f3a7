// kut CLI - builds a table from literals, edits it by message send and
// prints the rendered result. Tables can be saved to and loaded from the
// snapshot store.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/kut/manifest"
	"github.com/chazu/kut/vm"
	"github.com/chazu/kut/vm/snapshot"
)

func main() {
	configDir := flag.String("config", ".", "Directory to search upward for kut.toml")
	verbosity := flag.Int("v", -1, "Log verbosity (overrides kut.toml)")
	dbPath := flag.String("db", "", "Snapshot database (overrides kut.toml)")
	insert := flag.String("insert", "", "Insert a literal at an index, as index:literal")
	del := flag.String("delete", "", "Delete the element at an index (negative counts from the end)")
	clearTable := flag.Bool("clear", false, "Clear the table")
	indent := flag.Int("indent", 0, "Indent level of the rendered table")
	save := flag.String("save", "", "Save the result under this name")
	load := flag.String("load", "", "Start from the snapshot with this ID instead of literals")
	list := flag.Bool("list", false, "List stored snapshots and exit")
	remove := flag.String("rm", "", "Remove the snapshot with this ID and exit")
	messages := flag.Bool("messages", false, "List the messages the result answers")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: kut [options] [literals...]\n\n")
		fmt.Fprintf(os.Stderr, "Builds a table from the given literals and prints it.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  kut 1 2 3                      # [1 2 3]\n")
		fmt.Fprintf(os.Stderr, "  kut -insert 0:x 1 2            # [x 1 2]\n")
		fmt.Fprintf(os.Stderr, "  kut -delete -1 1 2 3           # [1 2]\n")
		fmt.Fprintf(os.Stderr, "  kut -save nums 1 2 3           # store and print the snapshot ID\n")
		fmt.Fprintf(os.Stderr, "  kut -load <id> -insert 0:true  # edit a stored table\n")
		fmt.Fprintf(os.Stderr, "  kut -messages 1 2              # list the messages a table answers\n")
	}
	flag.Parse()

	m, err := loadManifest(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *verbosity >= 0 {
		m.Log.Verbosity = *verbosity
	}
	if *dbPath != "" {
		m.Snapshot.Database = *dbPath
	}

	commonlog.Configure(m.Log.Verbosity, m.LogPath())
	log := commonlog.GetLogger("kut")
	vm.SetLimits(m.Limits())

	needStore := *list || *remove != "" || *save != "" || *load != ""
	var store *snapshot.Store
	if needStore {
		store, err = openStore(m)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	if *list {
		if err := listSnapshots(store); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if *remove != "" {
		if err := store.Delete(*remove); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var root vm.Value
	if *load != "" {
		root, err = store.Get(*load)
		if err == nil {
			log.Infof("loaded snapshot %s", *load)
		}
	} else {
		root, err = buildTable(m.Runtime.InitialCapacity, flag.Args())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer vm.Release(&root)

	if *insert != "" {
		if err := sendInsert(&root, *insert); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if *del != "" {
		if err := sendDelete(&root, *del); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if *clearTable {
		vm.Send(&root, "clear", vm.EmptyTable())
	}

	out := vm.Stringify(&root, *indent)
	if out == nil {
		fmt.Fprintf(os.Stderr, "Error: value cannot be rendered\n")
		os.Exit(1)
	}
	fmt.Println(out.String())
	outv := vm.StringValue(out)
	vm.Release(&outv)

	if *messages {
		fmt.Println(strings.Join(messageNames(root), " "))
	}

	if *save != "" {
		id, err := store.Put(*save, root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(id)
	}
}

func loadManifest(dir string) (*manifest.Manifest, error) {
	m, err := manifest.FindAndLoad(dir)
	if err != nil {
		return nil, err
	}
	if m != nil {
		return m, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return manifest.Default(abs), nil
}

func openStore(m *manifest.Manifest) (*snapshot.Store, error) {
	path := m.DatabasePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	return snapshot.Open(path, m.Snapshot.MaxDepth)
}

func listSnapshots(store *snapshot.Store) error {
	entries, err := store.List()
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%s  %-20s  %6d bytes  %s\n", e.ID, e.Name, e.Size, e.Created.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// buildTable returns an owned table holding one value per literal.
func buildTable(capacity int, literals []string) (vm.Value, error) {
	t := vm.NewTable(capacity)
	if t == nil {
		return vm.Undefined, fmt.Errorf("cannot allocate a table of %d slots", capacity)
	}
	root := vm.TableValue(t)
	for _, lit := range literals {
		v := parseLiteral(lit)
		res := t.Append(v)
		vm.Release(&v)
		if res.IsUndefined() {
			vm.Release(&root)
			return vm.Undefined, fmt.Errorf("cannot append %q", lit)
		}
	}
	return root, nil
}

// parseLiteral turns command-line text into a value. The caller owns the
// result.
func parseLiteral(lit string) vm.Value {
	switch lit {
	case "true":
		return vm.BoolValue(true)
	case "false":
		return vm.BoolValue(false)
	case "undefined":
		return vm.Undefined
	}
	if n, err := strconv.ParseFloat(lit, 64); err == nil {
		return vm.NumberValue(n)
	}
	return vm.StringValue(vm.NewString(lit))
}

// messageNames returns the messages v answers, in selector order.
func messageNames(v vm.Value) []string {
	t := vm.TypeOf(v)
	if t == nil {
		return nil
	}
	return t.Methods.Names(vm.Selectors)
}

func sendInsert(root *vm.Value, arg string) error {
	idx, lit, ok := strings.Cut(arg, ":")
	if !ok {
		return fmt.Errorf("insert wants index:literal, got %q", arg)
	}
	n, err := strconv.Atoi(idx)
	if err != nil {
		return fmt.Errorf("bad insert index %q", idx)
	}
	v := parseLiteral(lit)
	defer vm.Release(&v)
	if vm.Send(root, "insert", vm.Args(vm.NumberValue(float64(n)), v)).IsUndefined() {
		return fmt.Errorf("insert at %d failed", n)
	}
	return nil
}

func sendDelete(root *vm.Value, idx string) error {
	n, err := strconv.Atoi(idx)
	if err != nil {
		return fmt.Errorf("bad delete index %q", idx)
	}
	size := vm.AsTable(*root).Len()
	if n >= size || n < -size {
		return fmt.Errorf("delete index %d out of range for length %d", n, size)
	}
	removed := vm.Send(root, "delete", vm.Args(vm.NumberValue(float64(n))))
	vm.Release(&removed)
	return nil
}
