// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The conversion pipeline lives here: the settings resolver, the
// converter state machine, the format registry, the dispatcher and
// the worker pool that runs queued conversions.
//
// Services are pure Go with no CGO or external tool dependencies.
package services
