// Package errors implements the SemQuery error taxonomy.
//
// Every error that crosses a component boundary is classified with one of
// five kinds, mirroring the pipeline stages that can fail:
//
//   - validation: bad or missing required input on a request
//   - extraction: LM completion output that cannot be decoded into the
//     required schema
//   - config: template or ontology metadata missing or malformed
//   - execution: the downstream store rejected compiled query text
//   - classification: the category/item corpus is malformed
//
// Errors are created with the Wrap* helpers, which attach the originating
// component and operation and format messages consistently:
//
//	return errors.WrapExtraction(err, "SlotExtractor", "Extract",
//	    "decode completion output")
//
// Execution errors additionally carry the compiled query text and branch tag
// (WrapExecution) so the offending text is available for diagnosis without
// callers re-threading it.
//
// At the HTTP boundary, ToPayload converts any error into the structured
// {kind, message} pair returned to clients. Per-item failures inside a batch
// classification are recovered locally and never surface through this
// package; everything else aborts the current request.
package errors
