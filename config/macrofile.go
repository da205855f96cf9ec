package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/badu/crossmacro"
)

// LoadMacroSequence reads a macro file written by the GUI shell (§6 Macro
// file format: camelCase JSON matching crossmacro.MacroEvent's tags).
// encoding/json is used directly — the wire format is a flat struct with
// no ecosystem library in the pack offering anything beyond it.
func LoadMacroSequence(path string) (crossmacro.MacroSequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return crossmacro.MacroSequence{}, fmt.Errorf("config: read macro file %s: %w", path, err)
	}

	var seq crossmacro.MacroSequence
	if err := json.Unmarshal(data, &seq); err != nil {
		return crossmacro.MacroSequence{}, fmt.Errorf("config: parse macro file %s: %w", path, err)
	}
	if len(seq.Events) == 0 {
		return crossmacro.MacroSequence{}, fmt.Errorf("config: macro file %s: %w", path, crossmacro.ErrEmptySequence)
	}
	return seq, nil
}

// SaveMacroSequence writes seq back to path. The daemon never calls this —
// only tooling (e.g. a record-to-file CLI invocation) needs it, but it
// lives alongside the loader since both sides of the JSON format belong
// together.
func SaveMacroSequence(path string, seq crossmacro.MacroSequence) error {
	data, err := json.MarshalIndent(seq, "", "  ")
	if err != nil {
		return fmt.Errorf("config: encode macro sequence: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write macro file %s: %w", path, err)
	}
	return nil
}

// DictionaryFile is the on-disk shape of a text-expansion dictionary
// (§1 Non-goals leaves persistence to the GUI shell; config only reads it).
type DictionaryFile struct {
	Expansions []crossmacro.TextExpansion `json:"expansions"`
}

// LoadDictionary reads a dictionary file written by the GUI shell.
func LoadDictionary(path string) (DictionaryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DictionaryFile{}, fmt.Errorf("config: read dictionary file %s: %w", path, err)
	}
	var d DictionaryFile
	if err := json.Unmarshal(data, &d); err != nil {
		return DictionaryFile{}, fmt.Errorf("config: parse dictionary file %s: %w", path, err)
	}
	return d, nil
}
