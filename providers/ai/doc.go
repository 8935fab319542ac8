// Package ai defines the provider-agnostic request and response types used
// to talk to multimodal inference backends. A [ChatRequest] carries a prompt
// and documents as [ContentPart] values; a [ChatResponse] carries the model's
// text unchanged. Backends implement [Provider], and optionally
// [FileUploader] when they can take documents by reference.
package ai
