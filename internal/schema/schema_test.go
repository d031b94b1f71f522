package schema

import (
	"testing"

	"github.com/spf13/cobra"
)

func testRoot() *cobra.Command {
	root := &cobra.Command{Use: "bridgescout"}
	routes := &cobra.Command{Use: "routes", Short: "Route operations"}
	compare := &cobra.Command{Use: "compare", Short: "Compare routes", Aliases: []string{"cmp"}}
	compare.Flags().String("from-chain", "", "Source chain")
	compare.Flags().String("amount", "", "Transfer amount in base units")
	routes.AddCommand(compare)
	root.AddCommand(routes)
	hidden := &cobra.Command{Use: "secret", Hidden: true}
	root.AddCommand(hidden)
	return root
}

func TestBuildRoot(t *testing.T) {
	got, err := Build(testRoot(), "")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got.Use != "bridgescout" {
		t.Fatalf("use = %q", got.Use)
	}
	for _, sub := range got.Subcommands {
		if sub.Use == "secret" {
			t.Fatal("hidden commands must be excluded")
		}
	}
}

func TestBuildSubcommandPath(t *testing.T) {
	got, err := Build(testRoot(), "routes compare")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got.Use != "compare" {
		t.Fatalf("use = %q", got.Use)
	}
	if len(got.Flags) != 2 {
		t.Fatalf("flags = %d", len(got.Flags))
	}
	names := map[string]bool{}
	for _, f := range got.Flags {
		names[f.Name] = true
	}
	if !names["from-chain"] || !names["amount"] {
		t.Fatalf("flags = %+v", got.Flags)
	}
}

func TestBuildResolvesAliases(t *testing.T) {
	got, err := Build(testRoot(), "routes cmp")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got.Use != "compare" {
		t.Fatalf("use = %q", got.Use)
	}
}

func TestBuildUnknownPath(t *testing.T) {
	if _, err := Build(testRoot(), "does not exist"); err == nil {
		t.Fatal("expected error for unknown command path")
	}
}
