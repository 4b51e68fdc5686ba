package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/scry"
	"github.com/jward/scry/internal/pyreflect"
	"github.com/jward/scry/internal/store"
)

var (
	flagDB     string
	flagFormat string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "scry",
	Short:         "Static structure discovery for Python codebases",
	Long:          "Scry walks a codebase's import graph, catalogs its classes and inheritance, and writes the index to a SQLite database for later queries.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: .scry/index.db relative to repo root)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format: json|text")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(modulesCmd)
	rootCmd.AddCommand(classesCmd)
	rootCmd.AddCommand(hierarchyCmd)
	rootCmd.AddCommand(dotCmd)
	rootCmd.AddCommand(reportCmd)
}

var (
	flagRoot string
	flagKeep []string
	flagSkip []string
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a Python source tree",
	Long:  "Parses the source tree with tree-sitter, walks the import graph from the root module, and writes the discovered modules, classes, and base relations to the SQLite database.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&flagRoot, "root", "", "root module to discover from (required)")
	indexCmd.Flags().StringSliceVar(&flagKeep, "keep", nil, "keep only modules whose name contains one of these substrings")
	indexCmd.Flags().StringSliceVar(&flagSkip, "skip", nil, "skip modules whose name contains one of these substrings")
	indexCmd.MarkFlagRequired("root")
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}

	repoRoot := findRepoRoot(targetDir)
	dbPath := resolveDBPath(repoRoot)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err)
	}

	scanStart := time.Now()
	reflector, err := pyreflect.New(targetDir)
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}
	scanDuration := time.Since(scanStart)

	set, err := scry.Discover(reflector, flagRoot, flagKeep, flagSkip)
	if err != nil {
		return fmt.Errorf("discovering: %w", err)
	}
	for _, w := range reflector.Warnings() {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	for _, w := range set.Warnings() {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	s, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()
	if err := s.Migrate(); err != nil {
		return err
	}
	if err := s.SaveModuleSet(set, reflector); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Indexed %d modules from %s in %s (scan: %s)\n",
		set.Len(),
		flagRoot,
		time.Since(start).Round(time.Millisecond),
		scanDuration.Round(time.Millisecond),
	)
	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)

	return nil
}

// resolveTargetDir returns the absolute path of the directory to index.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root without finding .git.
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the database path from the --db flag or the default.
func resolveDBPath(repoRoot string) string {
	if flagDB != "" {
		if filepath.IsAbs(flagDB) {
			return flagDB
		}
		return filepath.Join(repoRoot, flagDB)
	}
	return filepath.Join(repoRoot, ".scry", "index.db")
}
