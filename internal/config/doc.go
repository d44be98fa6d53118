// Package config defines the format-agnostic run model (which model source to
// compile, the observations to train on, the forecast to produce) and the
// schema of tunable config parameters that model templates declare.
//
// The `config.Run` is the single source of truth for the `app` package.
// Concrete loaders, such as the HCL one, live in separate packages and
// implement the Loader interface.
package config
