// Package templatestore holds the admission template configuration.
//
// Configuration comes from three places, consulted in order by Resolver:
//
//	FileSource   - durable override file (read-only JSON), checked first
//	SQLiteCache  - local cache (read/write), updated from the override
//	defaults     - built-in template texts from internal/assets
//
// The JSON shapes match the files written by earlier versions of the tool,
// so existing templates.json and export bundles keep working.
package templatestore
