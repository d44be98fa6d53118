// Package forecast completes a loss triangle: it predicts every unrealized
// cell of a target variable up to a maximum development lag, visiting cells
// after the cells their likelihood reads from, and summarises the draws.
package forecast
