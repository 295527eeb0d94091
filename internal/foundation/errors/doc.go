// Package errors provides the classified error primitives used across sitecfg.
//
// A ClassifiedError carries a category (config, normalization, validation,
// content, ...), a severity and structured context. Domain reports such as
// site.ValidationError stay plain typed errors; the resolver wraps them with
// WrapError and attaches their diagnostics under the "diagnostics" context key
// so the CLI adapter can render them.
//
// Example usage:
//
//	err := errors.WrapError(verr, errors.CategoryValidation, "site configuration is invalid").
//		WithContext(errors.ContextDocument, path).
//		WithContext(errors.ContextDiagnostics, verr.Diagnostics).
//		Build()
package errors
