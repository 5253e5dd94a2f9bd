// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package extract turns uploaded files into text and records the result in
// a conversation.
//
// The declared media type selects exactly one Kind; every Kind has one
// handler, and KindUnsupported answers without calling any extractor.
//
//	image/*                                                        -> OCR
//	text/plain                                                     -> raw bytes
//	application/pdf                                                -> page text
//	application/vnd.openxmlformats-officedocument.wordprocessingml.document -> raw text
//
// # Usage
//
//	bridge := extract.New(st, extract.Options{OCR: ocr, PDF: extract.FitzPDF{}, Word: extract.DocxReader{}})
//	f, err := extract.FileFromPath("notes.pdf")
//	res := bridge.Ingest(ctx, f)
package extract
