// Package gemini implements [ai.Provider] and [ai.FileUploader] for Google's
// Gemini generative language API.
//
// [New] takes an explicit [Config]; the API key is never read from the
// environment here. SendMessage posts to models/{model}:generateContent with
// documents sent as inlineData, or as fileData when they were uploaded with
// [GeminiProvider.UploadFile]. Uploads use the Files API resumable protocol
// and block until the file is ACTIVE.
package gemini
