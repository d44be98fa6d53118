// Package dsl parses the model language into an immutable tree of parameter
// declarations and likelihood statements.
//
// A program is a sequence of statements terminated by ';'. Parameters carry a
// '$' prefix and may declare a domain and a construction kind:
//
//	$alpha: pos ~ vector(group = DevLagId, anchor = "first");
//	mean(paid) = $alpha * paid[prev_dev];
//	variance(paid) = $sigma ^ 2 * paid[prev_dev];
//
// The folds in fold.go (Offsets, Parameters, Variables) are shared by code
// generation and by the runtime evaluator.
package dsl
