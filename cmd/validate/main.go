package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/parley/pkg/catalog"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <data-dir>\n", os.Args[0])
		os.Exit(1)
	}

	dir := os.Args[1]
	validator := &CatalogValidator{}

	cat, err := validator.validateDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Catalog is valid: %d cards, %d NPCs\n", len(cat.Cards()), len(cat.NPCs()))
}

type CatalogValidator struct {
	errors []string
}

// validateDir checks naming conventions first, then loads the catalog,
// which rejects unknown enum names and dangling card references.
func (v *CatalogValidator) validateDir(dir string) (*catalog.Catalog, error) {
	fmt.Printf("Validating %s...\n", dir)
	v.errors = nil

	for _, sub := range []string{"cards", "npcs"} {
		v.validateFilenames(filepath.Join(dir, sub))
	}
	if len(v.errors) > 0 {
		return nil, fmt.Errorf("validation errors in %s:\n%s", dir, strings.Join(v.errors, "\n"))
	}

	cat, err := catalog.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	for _, def := range cat.Cards() {
		v.validateIDFormat("card ID", def.ID)
	}
	for _, npc := range cat.NPCs() {
		v.validateIDFormat("NPC ID", npc.ID)
		for _, req := range npc.Requests {
			v.validateIDFormat(fmt.Sprintf("request ID for %s", npc.ID), req.ID)
		}
	}

	if len(v.errors) > 0 {
		return nil, fmt.Errorf("validation errors in %s:\n%s", dir, strings.Join(v.errors, "\n"))
	}
	return cat, nil
}

func (v *CatalogValidator) validateFilenames(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			v.addError(fmt.Sprintf("cannot read %s: %v", dir, err))
		}
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		switch ext {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		if !isValidFilename(strings.TrimSuffix(name, filepath.Ext(name))) {
			v.addError(fmt.Sprintf("file '%s' should be lowercase snake_case (e.g., my_npc.yaml)", filepath.Join(dir, name)))
		}
	}
}

func (v *CatalogValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *CatalogValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidFilename(name string) bool {
	// Allow 'x.' prefix for experimental content
	name = strings.TrimPrefix(name, "x.")
	return validIDRegex.MatchString(name)
}
