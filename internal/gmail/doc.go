// Package gmail provides a client for interacting with the Gmail API.
//
// This package offers:
//   - Email operations (send, draft, read, search, modify, trash)
//   - Label management including get-or-create semantics
//   - Filter management with reusable filter templates
//   - Attachment listing, retrieval and download
//
// All requests authenticate through the credential manager in the auth
// package, so access tokens are refreshed transparently and a revoked
// grant surfaces as an auth.AuthError.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := gmail.NewClient(ctx, manager)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Send an email
//	msg := &gmail.Message{
//	    To:      []string{"recipient@example.com"},
//	    Subject: "Hello",
//	    Body:    "This is a test email",
//	}
//	msgID, err := client.SendMessage(ctx, msg, "")
//	if err != nil {
//	    log.Fatal(err)
//	}
package gmail
