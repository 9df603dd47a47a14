// Package validate normalizes observed cell values to strings and checks
// them against their item's declared constraints.
//
// Only items declaring Levels are validated. A value passes when it is a
// Levels key or an AllowedValues entry, or when it is numeric and inside
// MinValue..MaxValue. In tolerant mode a numeric value inside the range
// spanned by the numeric Levels keys also passes; every such acceptance
// is recorded in the ToleranceReport.
//
// Warn bounds never fail a value. Missing values are not validated.
package validate
