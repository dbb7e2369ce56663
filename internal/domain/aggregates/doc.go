// Package aggregates defines the error taxonomy shared by every aggregate in
// the domain layer and by the gateways that persist them.
//
// Domain constructors and mutators return *Error values coded as validation or
// precondition failures; infrastructure maps storage failures onto the same
// codes so callers branch on IsCode rather than on driver errors.
package aggregates
