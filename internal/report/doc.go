// Package report renders books and statements for people: plain text
// tables, markdown documents and styled terminal output.
//
// Amounts are shown in a single display currency using the currency's own
// symbol, separators and minor-unit precision. Rendering never changes the
// stored values; rounding happens only in the displayed string.
package report
