package gds

import "net/url"

// Operation names, used in errors and as the metrics "op" label.
const (
	OpIndexList   = "index.list"
	OpIndexGet    = "index.get"
	OpIndexCreate = "index.create"
	OpIndexDelete = "index.delete"
	OpIndexStatus = "index.status"
	OpSchemaGet   = "schema.get"
	OpSchemaSet   = "schema.set"
)

// Paths relative to the API root.
func indexesPath() string { return "/index" }

func indexPath(name string) string { return "/index/" + url.PathEscape(name) }

func schemaPath() string { return "/schema" }
