// Package graphql holds the storefront GraphQL schema and request context.
package graphql

import (
	"strings"
	"sync"

	_ "embed"
)

//go:embed schema.graphqls
var schemaBase string

var (
	schemaExtensions []string
	schemaMu         sync.Mutex
)

// RegisterSchemaExtension appends SDL to the base schema. Call from init()
// in custom packages; use "extend type Query" to add fields.
func RegisterSchemaExtension(schema string) {
	schemaMu.Lock()
	defer schemaMu.Unlock()
	schemaExtensions = append(schemaExtensions, strings.TrimSpace(schema))
}

// Schema returns the base schema plus registered extensions.
func Schema() string {
	schemaMu.Lock()
	ext := append([]string(nil), schemaExtensions...)
	schemaMu.Unlock()
	if len(ext) == 0 {
		return schemaBase
	}
	return schemaBase + "\n\n" + strings.Join(ext, "\n\n")
}
