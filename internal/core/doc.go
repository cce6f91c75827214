// Package core provides the ingestion pipeline for CUSIP PIP extracts.
//
// This package holds the domain logic independent of any transport. It is
// used by the HTTP job service and by the cusipload CLI without modification.
//
// # Architecture
//
//   - Sanitizer: [Sanitize] strips line terminators, blank lines and
//     trailer records from raw file lines.
//   - Registry: [Registry] maps each [FileKind] to its [FileConfig]
//     (target table, staging table, ordered columns, primary key). The
//     layouts live in the tables subpackage.
//   - File sources: [FileSource] discovers and reads files for a business
//     date. Implementations live in the source package.
//   - Loader: [Loader.Load] applies one file with truncate, COPY and upsert
//     inside a single transaction. [Loader.LoadAll] applies the three kinds
//     in [LoadOrder] and stops at the first error.
//   - Gate: [Gate] keeps loads of the same kind from running concurrently.
//
// # Example
//
//	reg, _ := tables.Registry()
//	loader := core.NewLoader(reg, core.NewPgStore(pool))
//	files, _ := src.FindFilesForDate(ctx, date)
//	results := loader.LoadAll(ctx, files, src)
//	if !core.Succeeded(results) {
//	    // inspect results
//	}
package core
