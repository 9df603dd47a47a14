// Package library loads a directory tree of item templates into a
// task index and an item/alias-to-task index.
//
// Templates are found with doublestar patterns (default: every .json,
// .yaml and .yml file below the root). Each template is keyed by its
// declared Study.TaskName, falling back to its filename without the
// modality prefix ("survey-ads.json" -> "ads"), lower-cased.
//
// Templates are made alias-free before indexing. An item id that still
// resolves to two different tasks is a hard error listing every
// ambiguous id together with its owning tasks.
package library
