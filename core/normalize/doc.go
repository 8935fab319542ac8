// Package normalize turns the raw text returned by a multimodal model into a
// parsed JSON document. Models frequently wrap their answer in prose, markdown
// code fences, or emit almost-JSON with trailing commas, bare keys, duplicated
// closing braces, or output cut off mid-stream. This package applies a fixed,
// ordered set of pure text rewrites followed by tiered parse attempts, and
// degrades to an [Result] that carries the original text and the last parse
// error when nothing succeeds.
//
// The main entry point is [Normalize]. A [Normalizer] built with [New] exposes
// the same pipeline plus [Normalizer.Repair], which returns the rewritten text
// without parsing it.
//
// # Known limitations
//
// The repair stages operate on raw text, not on parsed string boundaries. A
// string value that contains something looking like a code fence line, a brace
// run, a ", word:" sequence or a comma before a closing bracket can be rewritten
// along with the surrounding structure. [Normalizer.Normalize] stops repairing
// once the text is valid JSON, so this only hits input that still needs the
// stage that does the damage. For example {note: "at 10, Q3: late"} has its
// string split by key quoting and is reported unparseable, while the valid
// {"note": "at 10, Q3: late"} is returned as is. [Normalizer.Repair] always
// runs every stage and rewrites valid input too. Tests pin both behaviors.
package normalize
