// Package httpclient is the outbound HTTP transport shared by the sidecar
// diarization backend and the webhook notifier.
//
// Every request carries the build's User-Agent. Non-2xx responses are
// returned as *Error values classified by status, and ToAppError maps them
// onto the application error codes:
//
//	client, err := httpclient.New(httpclient.Config{BaseURL: "http://localhost:8388"})
//	resp, err := client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/health"})
//	if err != nil {
//	    return httpclient.ToAppError("pyannote", err)
//	}
package httpclient
