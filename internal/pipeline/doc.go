// Package pipeline runs the prophage-finding stages over a SEED organism
// directory.
//
// The Orchestrator is a small state machine:
//
//	VALIDATE_INPUT ─┬─ ABORTED_MISSING_INPUT
//	                ├─ EVALUATE                  (evaluate only)
//	                └─ BUILD_TEST_SET ─┬─ ABORTED_TOO_SMALL
//	                                   └─ CLASSIFY ─ CLASSIFY_DONE ─┬─ REFINE_UNKNOWN_FUNCTIONS ─ EVALUATE
//	                                                                └─ EVALUATE  (training set != 0)
//	EVALUATE ─ COMPLETE
//
// Each stage is a Stage. Stages communicate only through files in the
// workspace; the orchestrator keeps nothing between them but the run
// Config and the current State. A failing stage halts the run where it is:
// there are no retries and earlier outputs are left in place.
package pipeline
