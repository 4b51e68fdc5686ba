package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/scry"
	"github.com/jward/scry/internal/store"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List indexed modules and the classes they define",
	Args:  cobra.NoArgs,
	RunE:  runModules,
}

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "List all indexed classes",
	Args:  cobra.NoArgs,
	RunE:  runClasses,
}

var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy",
	Short: "Print the class hierarchy as an indented outline",
	Long:  "Prints the inheritance forest under the universal root. A class with several in-scope parents appears once under each parent.",
	Args:  cobra.NoArgs,
	RunE:  runHierarchy,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the saved attribute-type report",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

// openStore opens the Store from the --db flag path (or default).
func openStore() (*store.Store, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting cwd: %w", err)
	}
	repoRoot := findRepoRoot(cwd)
	dbPath := resolveDBPath(repoRoot)

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found: %s (run 'scry index' first)", dbPath)
	}

	return store.NewStore(dbPath)
}

// loadIndex opens the store and loads both the module set and its reflector.
func loadIndex() (*scry.ModuleSet, *store.Reflector, func() error, error) {
	s, err := openStore()
	if err != nil {
		return nil, nil, nil, err
	}
	set, err := s.ModuleSet()
	if err != nil {
		s.Close()
		return nil, nil, nil, err
	}
	r, err := s.Reflector()
	if err != nil {
		s.Close()
		return nil, nil, nil, err
	}
	return set, r, s.Close, nil
}

func runModules(cmd *cobra.Command, args []string) error {
	set, r, closeStore, err := loadIndex()
	if err != nil {
		return err
	}
	defer closeStore()

	if flagFormat == "text" {
		return scry.WriteModuleOutline(os.Stdout, r, set)
	}

	byModule, err := scry.ClassesByModule(r, set)
	if err != nil {
		return err
	}
	results := make([]CLIModule, 0, set.Len())
	for _, name := range set.Names() {
		m := CLIModule{Name: name}
		for _, c := range byModule[name] {
			m.Classes = append(m.Classes, c.Name)
		}
		results = append(results, m)
	}
	return outputResult(CLIResult{Command: "modules", Results: results})
}

func runClasses(cmd *cobra.Command, args []string) error {
	set, r, closeStore, err := loadIndex()
	if err != nil {
		return err
	}
	defer closeStore()

	classes, err := scry.Classes(r, set)
	if err != nil {
		return err
	}

	if flagFormat == "text" {
		formatClassesText(os.Stdout, classes)
		return nil
	}

	results := make([]CLIClass, 0, len(classes))
	for _, c := range classes {
		results = append(results, CLIClass{Module: c.Module, Name: c.Name})
	}
	return outputResult(CLIResult{Command: "classes", Results: results})
}

func runHierarchy(cmd *cobra.Command, args []string) error {
	set, r, closeStore, err := loadIndex()
	if err != nil {
		return err
	}
	defer closeStore()

	classes, err := scry.Classes(r, set)
	if err != nil {
		return err
	}
	root, err := scry.BuildHierarchy(r, classes)
	if err != nil {
		return err
	}

	if flagFormat == "text" {
		return scry.WriteHierarchyOutline(os.Stdout, root)
	}
	return outputResult(CLIResult{Command: "hierarchy", Results: hierarchyJSON(root)})
}

// hierarchyJSON converts a hierarchy node to its JSON-friendly form.
func hierarchyJSON(n *scry.HierarchyNode) *CLIHierarchyNode {
	out := &CLIHierarchyNode{Name: n.Class.Name, Module: n.Class.Module}
	for _, c := range n.Children {
		out.Children = append(out.Children, hierarchyJSON(c))
	}
	return out
}

func runReport(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	rows, err := s.Snapshot()
	if err != nil {
		return err
	}

	records := make([]scry.SnapshotRecord, 0, len(rows))
	for _, row := range rows {
		var d scry.Descriptor
		if err := json.Unmarshal([]byte(row.Descriptor), &d); err != nil {
			return fmt.Errorf("decoding descriptor for %s.%s: %w", row.Class, row.Attribute, err)
		}
		records = append(records, scry.SnapshotRecord{
			Class:        row.Class,
			Attribute:    row.Attribute,
			Descriptor:   &d,
			Observations: row.Observations,
		})
	}

	if flagFormat == "text" {
		tracker := scry.NewTracker()
		tracker.ImportSnapshot(records)
		return tracker.Write(os.Stdout)
	}

	results := make([]CLIAttribute, 0, len(records))
	for _, rec := range records {
		results = append(results, CLIAttribute{
			Class:        rec.Class,
			Attribute:    rec.Attribute,
			Type:         rec.Descriptor.String(),
			Observations: rec.Observations,
		})
	}
	return outputResult(CLIResult{Command: "report", Results: results})
}
