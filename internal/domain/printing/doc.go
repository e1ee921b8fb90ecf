// Package printing contains the Printing bounded context.
// This context describes print templates, the entity snapshots they are
// rendered against and the contents produced by a PDF engine.
package printing
