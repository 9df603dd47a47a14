// Package mapping partitions the columns of an input table into the id
// and session columns, participant columns, library items and unmapped
// columns.
//
// # Resolution order
//
// Every column other than id and session is resolved once, first rule wins:
//  1. explicit column overrides (raw column -> item id)
//  2. the run's ignore list
//  3. exact, case-sensitive match against the library item/alias index
//  4. the participant allow-list (participants template plus a fixed set)
//  5. known survey platform bookkeeping columns, silently ignored
//
// Anything left is unmapped and handled by the run's Policy:
//
//	error   abort with a user input error listing the columns
//	warn    record one warning per column with "did you mean" hints
//	ignore  drop silently
//
// The id column is required. When not given explicitly it is found by a
// case-insensitive match against participant_id, subject, id, sub, code
// and token, in that order. The session column is optional and found the
// same way from session, ses, visit and timepoint.
package mapping
