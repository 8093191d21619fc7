// Package extract recovers course result data from the four result-sheet
// formats in use at the institution: Word tables (.docx), free-text PDF
// pages (.pdf), delimited text (.csv) and spreadsheets (.xlsx).
//
// The four formats were authored independently by different people with
// different tools, so the extractors deliberately do not share a grammar.
// Each one implements the convention its format actually follows and emits
// the same raw header/row shape, which the normalizer and coercer reconcile
// into canonical domain records.
//
// Row-level problems never abort a batch: a malformed row is skipped and
// counted in the Diagnostics returned alongside the surviving rows. Only
// file-level problems (unreadable file, unsupported extension) surface as
// errors.
package extract
