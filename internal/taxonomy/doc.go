// Package taxonomy turns the flat, human-curated CPI category spreadsheet into a
// weighted composition tree ready to be deployed as streams.
//
// # Stages
//
// A Pipeline runs the stages strictly in order over one SourceTable:
//
//  1. Classify splits rows into category, subcategory and table tiers.
//  2. Project renames each tier into the canonical node schema; CheckSchema
//     rejects a tier whose projected columns differ from CanonicalColumns.
//  3. Normalize concatenates the tiers behind the synthetic root node.
//  4. ScaleWeights rescales every decimal weight by one shared power of ten.
//  5. Slugify and Shortener.Shorten derive database-safe identifiers.
//  6. ValidateUniqueness aborts when distinct slugs collapse onto one short id.
//  7. Link resolves parent short ids and marks primitive (leaf) nodes.
//  8. Compose projects the tree into the (parent_stream, stream, weight) list.
//
// Every failure is fatal and is returned as one of the typed errors in
// errors.go so the operator can fix the spreadsheet and rerun.
//
// # Determinism
//
// The same SourceTable always produces the same nodes in the same order.
// Shortening is a readable interleaving of the slug, never a hash, so a human
// can map a deployed identifier back to its source name.
package taxonomy
