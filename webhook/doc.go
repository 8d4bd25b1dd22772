// Package webhook notifies an external endpoint that a recording has been
// processed. The notifier is a provider.Sink, so it composes with
// provider.WithSinkLogging:
//
//	n, err := webhook.New(webhook.Config{URL: "http://localhost:5678/webhook/audio"})
//	sink := provider.WithSinkLogging[webhook.Notification](logger.Get("webhook"))(n)
//	err = sink.Send(ctx, webhook.NotificationFor("/data/call.wav"))
package webhook
