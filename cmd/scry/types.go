package main

// CLIResult is the top-level JSON envelope for all query commands.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLIModule is a JSON-friendly module with its defined classes.
type CLIModule struct {
	Name    string   `json:"name"`
	Classes []string `json:"classes,omitempty"`
}

// CLIClass is a JSON-friendly class reference.
type CLIClass struct {
	Module string `json:"module,omitempty"`
	Name   string `json:"name"`
}

// CLIHierarchyNode is a JSON-friendly hierarchy node. A class with several
// in-scope parents appears once under each parent.
type CLIHierarchyNode struct {
	Name     string              `json:"name"`
	Module   string              `json:"module,omitempty"`
	Children []*CLIHierarchyNode `json:"children,omitempty"`
}

// CLIAttribute is a JSON-friendly row of a saved tracking snapshot.
type CLIAttribute struct {
	Class        string `json:"class"`
	Attribute    string `json:"attribute"`
	Type         string `json:"type"`
	Observations int    `json:"observations"`
}
