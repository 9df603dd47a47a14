// Package match provides name normalization, Levenshtein distance
// calculation, and candidate ranking for task and column names.
//
// Key functions:
//   - NormalizeName: lowercases and strips non-alphanumerics
//   - LeadingToken: extracts the leading alphabetic token of an item id
//   - Levenshtein: computes edit distance between strings
//   - RankCandidates: ranks item ids as suggestions for an unknown column
package match
