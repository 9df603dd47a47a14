// Package alias resolves alternate item spellings to canonical item ids.
//
// Alias maps are built from template declarations (AliasOf on the alias
// key, Aliases on the canonical item) and from an optional external file
// with one canonical id per line followed by its aliases:
//
//	# canonical  aliases...
//	canonical_id	alias1	alias2
//	ADS1	ADS_1	ads01
//
// Declaring one alias under two different canonical ids is a library
// integrity error.
package alias
