// Package types defines the strongbox domain model (accounts, epics,
// stories and the per-account Document that holds them), the error
// taxonomy shared by every layer, and the resolved runtime Config.
//
// A Document is the unit of encryption and persistence: it is always read
// and written whole. The mutation helpers on Document keep its ownership
// invariants (every story belongs to exactly one epic) so callers never
// have to patch the maps by hand.
package types
