// Package middlewares provides middleware values consumed by the velo
// dispatch core: request ID propagation, panic recovery, and CORS.
// Each middleware declares its shape explicitly via velo.Flat or velo.Chain
// at construction.
package middlewares
