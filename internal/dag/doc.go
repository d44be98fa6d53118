// Package dag is a small directed graph of string ids used to order work
// whose items depend on each other, such as forecast cells that read the
// forecasts of earlier cells.
package dag
