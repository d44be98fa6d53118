// Package registry holds the explicit, immutable table of distribution
// families used by likelihoods.
//
// A family is known by a name (used in run files), an integer code (passed
// to the generated program's `__family` knob and understood by the
// `mean_variance_log_lik` function) and a sampler that draws a variate with
// a given mean and variance. The table is passed by reference to whatever
// needs it, so several models with different tables can coexist in one
// process.
package registry
