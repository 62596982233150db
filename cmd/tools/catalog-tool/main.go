// cmd/tools/catalog-tool/main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"mergington-activities/pkg/registry"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		help(out)
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "export":
		cmd := flag.NewFlagSet("export", flag.ContinueOnError)
		path := cmd.String("path", "configs/catalog.json", "Destination catalog file")
		if err := cmd.Parse(args[1:]); err != nil {
			return err
		}
		if err := registry.SaveCatalog(registry.DefaultCatalog(), *path); err != nil {
			return fmt.Errorf("failed to export catalog: %w", err)
		}
		fmt.Fprintf(out, "Exported default catalog to %s\n", *path)

	case "validate":
		cmd := flag.NewFlagSet("validate", flag.ContinueOnError)
		path := cmd.String("path", "configs/catalog.json", "Path to catalog file")
		if err := cmd.Parse(args[1:]); err != nil {
			return err
		}
		c, err := registry.LoadCatalog(*path)
		if err != nil {
			return fmt.Errorf("catalog validation failed: %w", err)
		}
		fmt.Fprintf(out, "Catalog validation passed. Found %d activities.\n", len(c))

	case "add":
		cmd := flag.NewFlagSet("add", flag.ContinueOnError)
		path := cmd.String("path", "configs/catalog.json", "Path to catalog file")
		name := cmd.String("name", "", "Activity name (e.g., Robotics Club)")
		description := cmd.String("description", "", "Description")
		schedule := cmd.String("schedule", "", "Schedule (e.g., Mondays, 3:30 PM - 5:00 PM)")
		maxParticipants := cmd.Int("max", 0, "Maximum participants")
		if err := cmd.Parse(args[1:]); err != nil {
			return err
		}
		if *name == "" || *description == "" || *schedule == "" || *maxParticipants < 1 {
			cmd.Usage()
			return fmt.Errorf("name, description, schedule and a positive max are required for add")
		}
		if err := addActivity(*path, *name, registry.Activity{
			Description:     *description,
			Schedule:        *schedule,
			MaxParticipants: *maxParticipants,
			Participants:    []string{},
		}); err != nil {
			return err
		}
		fmt.Fprintf(out, "Added activity: %s\n", *name)

	case "update":
		cmd := flag.NewFlagSet("update", flag.ContinueOnError)
		path := cmd.String("path", "configs/catalog.json", "Path to catalog file")
		name := cmd.String("name", "", "Activity name to update")
		field := cmd.String("field", "", "Field to update (description, schedule, max_participants)")
		value := cmd.String("value", "", "New value for the field")
		if err := cmd.Parse(args[1:]); err != nil {
			return err
		}
		if *name == "" || *field == "" || *value == "" {
			cmd.Usage()
			return fmt.Errorf("name, field and value are required for update")
		}
		if err := updateActivity(*path, *name, *field, *value); err != nil {
			return err
		}
		fmt.Fprintf(out, "Updated activity %s, field %s to %s\n", *name, *field, *value)

	case "list":
		cmd := flag.NewFlagSet("list", flag.ContinueOnError)
		path := cmd.String("path", "", "Catalog file (default: built-in catalog)")
		if err := cmd.Parse(args[1:]); err != nil {
			return err
		}
		c := registry.DefaultCatalog()
		if *path != "" {
			var err error
			if c, err = registry.LoadCatalog(*path); err != nil {
				return err
			}
		}
		names := make([]string, 0, len(c))
		for n := range c {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			a := c[n]
			fmt.Fprintf(out, "%-20s %2d/%-2d  %s\n", n, len(a.Participants), a.MaxParticipants, a.Schedule)
		}

	case "help":
		help(out)

	default:
		help(out)
		return fmt.Errorf("unknown command: %s", args[0])
	}
	return nil
}

func addActivity(path, name string, activity registry.Activity) error {
	c, err := registry.LoadCatalog(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		c = registry.Catalog{}
	}

	if _, exists := c[name]; exists {
		return fmt.Errorf("activity %s already exists", name)
	}
	c[name] = activity
	return registry.SaveCatalog(c, path)
}

func updateActivity(path, name, field, value string) error {
	c, err := registry.LoadCatalog(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	a, ok := c[name]
	if !ok {
		return fmt.Errorf("activity %s not found", name)
	}

	switch field {
	case "description":
		a.Description = value
	case "schedule":
		a.Schedule = value
	case "max_participants":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid max_participants value: %q", value)
		}
		a.MaxParticipants = n
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	c[name] = a
	return registry.SaveCatalog(c, path)
}

func help(out io.Writer) {
	fmt.Fprintln(out, `
Usage: catalog-tool <command> [flags]

Commands:
  export    Write the built-in catalog to a JSON file
  validate  Validate a catalog file against the catalog schema
  add       Add a new activity to a catalog file
  update    Update an existing activity's field
  list      Print activities with enrollment counts
  help      Show this help message

Examples:
  catalog-tool export -path configs/catalog.json
  catalog-tool add -name "Robotics Club" -description "Build and program robots" -schedule "Mondays, 3:30 PM - 5:00 PM" -max 16
  catalog-tool update -name "Chess Club" -field max_participants -value 14
  catalog-tool validate -path configs/catalog.json

Use 'catalog-tool <command> -h' for more information about a command.`)
}
