// Package migrations содержит SQL-миграции схемы, встроенные в бинарник.
package migrations

import "embed"

// FS содержит встроенные файлы миграций для goose.
//
//go:embed *.sql
var FS embed.FS
