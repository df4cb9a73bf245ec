package gen

import (
	"strings"
	"sync"
	"unicode"

	"github.com/go-openapi/inflect"
)

var (
	acronymsMu sync.RWMutex
	acronyms   = map[string]bool{
		"API": true, "HTML": true, "HTTP": true, "ID": true, "IP": true,
		"JSON": true, "SQL": true, "UID": true, "URL": true, "UUID": true,
	}
)

// AddAcronym registers a word that is written in upper case in Go names.
func AddAcronym(word string) {
	acronymsMu.Lock()
	defer acronymsMu.Unlock()
	acronyms[strings.ToUpper(word)] = true
}

// pascal converts a snake_case or kebab-case name to PascalCase.
//
//	pascal("owner_id") // OwnerID
func pascal(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
	acronymsMu.RLock()
	defer acronymsMu.RUnlock()
	var b strings.Builder
	for _, w := range words {
		if u := strings.ToUpper(w); acronyms[u] {
			b.WriteString(u)
			continue
		}
		b.WriteString(inflect.Capitalize(w))
	}
	name := b.String()
	if name == "" || !unicode.IsLetter(rune(name[0])) {
		name = "X" + name
	}
	return name
}

// typeName returns the wrapper type name of a table: the singular of its
// name in PascalCase.
func typeName(table string) string {
	return pascal(inflect.Singularize(table))
}

// pluralName returns the plural of a type name, for helpers over many
// records.
func pluralName(name string) string {
	plural := inflect.Pluralize(name)
	if plural == name {
		plural += "List"
	}
	return plural
}

// recordMethods are the methods promoted from the embedded record. Column
// accessors never shadow them.
var recordMethods = map[string]bool{
	"Changes": true, "Definition": true, "Dirty": true, "Generic": true,
	"Get": true, "Initialized": true, "Key": true, "Lookup": true,
	"Original": true, "Record": true, "Schema": true, "Set": true,
	"String": true, "Table": true, "Values": true,
}

// accessorName returns the getter name of a column.
func accessorName(column string) string {
	name := pascal(column)
	if recordMethods[name] {
		name += "Value"
	}
	return name
}
