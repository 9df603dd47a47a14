// Package dataset writes the converted output tree:
//
//	dataset_description.json
//	participants.tsv
//	participants.json
//	task-<task>_<modality>.json
//	sub-<id>/ses-<id>/<modality>/sub-<id>_ses-<id>_task-<task>_<modality>.tsv
//
// Records are tab-separated with one header line and one value line.
// Subject and session ids are normalized to ASCII letters and digits
// behind their "sub-"/"ses-" prefix; short numeric subject ids are
// zero-padded to three digits.
package dataset
