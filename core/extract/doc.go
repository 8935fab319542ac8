// Package extract turns a PDF and a prompt into a normalized document.
//
// An [Extractor] validates the upload, attaches the PDF to a request either
// inline or as an uploaded file reference, sends it through a
// [client.Client] and passes the model's text to a [normalize.Normalizer]:
//
//	extractor := extract.New(c, extract.WithMode(extract.ModeAuto))
//	extraction, err := extractor.Extract(ctx, extract.Request{
//		Document: extract.Document{Name: "report.pdf", Data: data},
//	})
//	if err != nil {
//		return err // validation, upload or transport failure
//	}
//	if !extraction.Result.Parsed() {
//		fmt.Println(extraction.Result.LastError(), extraction.Result.Raw)
//	}
//
// A response that cannot be parsed is not an error: it comes back as an
// unparseable Result carrying the original text.
package extract
