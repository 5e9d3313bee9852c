// Package config loads and resolves the configuration of a matching run.
//
// Load layers three sources, later ones winning:
//
//	Default() → YAML file (unknown keys rejected) → OTMATCH_* environment
//
// and then validates the result with struct tags plus a few cross-field
// rules. Resolve turns the year-independent Config into a concrete Run for
// one year: "{year}" placeholders in paths are substituted, vintage clamps
// are applied (a file series that stops at primary_max_year keeps using its
// last vintage) and the tertiary dataset is dropped before tertiary_min_year.
//
// Variable correspondences accept either an ordered YAML mapping
//
//	variable_correspondence_stage1:
//	  dina_wage: cps_wage
//	  dina_pens: cps_pens
//
// or a sequence of {source, target} pairs. In the environment they are
// written as "dina_wage:cps_wage,dina_pens:cps_pens".
package config
