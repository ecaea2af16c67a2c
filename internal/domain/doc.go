// Package domain defines core data models, interfaces and sentinel errors
// shared across the app. It contains plain types (records), contracts
// (interfaces) and the error taxonomy only; no cryptography or I/O.
package domain
