// Package template provides the item template document model and its
// JSON and YAML codecs.
//
// A template describes one instrument. Top-level keys are either one of
// the reserved sections (Technical, Study, Metadata, I18n, Scoring,
// Normative) or an item id mapping to an ItemDefinition:
//
//	{
//	  "Technical": {"Language": "en"},
//	  "Study": {"TaskName": "ads", "Versions": ["short"], "ItemCount": 2},
//	  "ADS1": {"Description": {"en": "...", "de": "..."}, "MinValue": 0, "MaxValue": 3},
//	  "ADS2": {"Description": "...", "Levels": {"0": "never", "3": "always"}}
//	}
//
// Item order and level order are preserved through decode and encode, so
// the declared item order of a template is stable across rewrites.
package template
