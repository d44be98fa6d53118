// Package model assembles a parsed model source into a complete Stan program
// and binds posterior samples to it for forecasting.
//
// # Core Concepts
//
// The package is built around two structures:
//
//   - Model: the compiled form of one source file. It owns the parameters
//     (declared and implicit), one likelihood per target variable, the lag
//     offsets the expressions reach for and the generated program fragment
//     with its config schema.
//
//   - Fitted: a Model bound to a posterior sample set. Every parameter holds
//     its own draws, so a Fitted can predict any target cell without touching
//     the Model it came from.
//
// Assembly is deterministic: the same source always yields the same program,
// byte for byte.
package model
