// Package hcl_adapter loads run files written in HCL: the model to compile
// with its config values, the observed triangle cells and the forecast
// request.
package hcl_adapter
