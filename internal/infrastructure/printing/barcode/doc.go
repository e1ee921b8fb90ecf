// Package barcode implements the barcode placeholder mini-language used in
// print templates:
//
//	<barcodeimage data="%7B%22type%22%3A%22EAN13%22%2C%22value%22%3A%22590123412345%22%7D"/>
//
// The data attribute is URL-encoded JSON. A placeholder is handled in three
// steps: Parse decodes the attribute, Table.Validate resolves the type and
// sizing defaults into a Spec, and Renderer.Render turns the Spec into an
// inline <img> tag carrying an SVG data URI. Every step reports
// presentational failures as a degraded Outcome instead of an error.
package barcode
