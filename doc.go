// Package goseal provides:
//
// - Entities that move exactly once from mutable to permanently immutable (Complete / Builder)
// - A self-describing tagged wire protocol rendered interchangeably as JSON or XML
// - Polymorphic reconstruction through a process-wide type Registry
// - A stable error model via Issues (path, code, message)
// - Streaming reads with duplicate-key/depth/size enforcement
//
// Design policy:
// - Keep only public APIs in the root package; put token-level machinery under internal/ and source/.
// - Field collections live under field/, the Deck pattern under deck/, the CLI under cmd/goseal.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	goseal.MustRegister(bookType, readBook)
//	b, err := NewBookBuilder().SetTitle("Dune").Create()
//	text, err := goseal.Serialize(goseal.FormatXML, b)
//	back, err := goseal.Deserialize(text) // JSON or XML, sniffed
//
// Every document is a node carrying a type_hint followed either by
// primitive_value / primitive_value_base64 or by the entity's own fields.
package goseal
